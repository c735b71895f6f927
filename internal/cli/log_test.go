package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger_FiltersByLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("paced fetch") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("paced fetch") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("paced fetch") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress_DoneReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	newProgress(logger).done("Built graph with 4 nodes and 3 links")

	out := buf.String()
	if !strings.Contains(out, "Built graph with 4 nodes and 3 links") {
		t.Errorf("output = %q, want the message", out)
	}
	if !strings.Contains(out, "(") || !strings.Contains(out, "s)") {
		t.Errorf("output = %q, want an elapsed duration suffix", out)
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext must return the attached logger")
	}

	// A bare context falls back to the package default.
	if got := loggerFromContext(context.Background()); got == nil {
		t.Error("loggerFromContext must never return nil")
	}
}

package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer against the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_RendersMessage(t *testing.T) {
	out := &syncBuffer{}
	s := newSpinnerWithContext(context.Background(), "Fetching 1A1zP1eP")
	s.out = out

	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Fetching 1A1zP1eP") {
		t.Errorf("output = %q, want the message rendered", out.String())
	}
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "waiting")
	s.out = &syncBuffer{}

	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinner_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "waiting on governor")
	s.out = &syncBuffer{}
	s.Start()

	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after context cancellation")
	}
}

func TestSpinner_LineShowsElapsedWait(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Fetching")
	s.out = &syncBuffer{}

	if got := s.line(); got != "Fetching" {
		t.Errorf("line = %q, no elapsed suffix expected yet", got)
	}

	s.start = time.Now().Add(-6 * time.Second)
	if got := s.line(); got != "Fetching (6s)" {
		t.Errorf("line = %q, want the wait shown after a second", got)
	}
}

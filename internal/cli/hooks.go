package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chainlens/chainlens/pkg/observability"
)

// logHTTPHooks emits a debug line for every upstream call event.
type logHTTPHooks struct {
	logger *log.Logger
}

func (h logHTTPHooks) OnWait(_ context.Context, reason string, d time.Duration) {
	h.logger.Debug("waiting before request", "reason", reason, "duration", d)
}

func (h logHTTPHooks) OnRequest(_ context.Context, method, url string) {
	h.logger.Debug("upstream request", "method", method, "url", url)
}

func (h logHTTPHooks) OnResponse(_ context.Context, method, url string, statusCode int, duration time.Duration) {
	h.logger.Debug("upstream response", "method", method, "url", url, "status", statusCode, "duration", duration)
}

func (h logHTTPHooks) OnError(_ context.Context, method, url string, err error) {
	h.logger.Debug("upstream error", "method", method, "url", url, "error", err)
}

// logCacheHooks emits a debug line for every page cache event.
type logCacheHooks struct {
	logger *log.Logger
}

func (h logCacheHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h logCacheHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h logCacheHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache set", "key", key, "bytes", size)
}

// registerHooks attaches log-backed observability hooks when debug
// logging is enabled. At higher levels the no-op defaults stay in place
// so the fetch path pays nothing.
func (c *CLI) registerHooks() {
	if c.Logger.GetLevel() > log.DebugLevel {
		return
	}
	observability.SetHTTPHooks(logHTTPHooks{logger: c.Logger})
	observability.SetCacheHooks(logCacheHooks{logger: c.Logger})
}

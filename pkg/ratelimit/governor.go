// Package ratelimit paces outbound calls to the upstream ledger API.
//
// The ledger API enforces a strict request budget, so every caller in the
// process funnels through one [Governor]. The governor is an explicitly
// owned object injected into each call site, never an ambient singleton;
// tests construct their own instances with a fake clock.
package ratelimit

import (
	"sync"
	"time"
)

// Default pacing values, used when a Config field is zero.
const (
	DefaultMinDelay     = 6 * time.Second
	DefaultMaxPerWindow = 10
	DefaultWindowLength = time.Minute
)

// Config holds the externally tunable pacing budget.
type Config struct {
	// MinDelay is the minimum spacing between successive requests.
	MinDelay time.Duration
	// MaxPerWindow bounds the number of requests admitted in any
	// trailing window.
	MaxPerWindow int
	// Window is the length of the trailing window (normally one minute).
	Window time.Duration
}

func (c Config) withDefaults() Config {
	if c.MinDelay <= 0 {
		c.MinDelay = DefaultMinDelay
	}
	if c.MaxPerWindow <= 0 {
		c.MaxPerWindow = DefaultMaxPerWindow
	}
	if c.Window <= 0 {
		c.Window = DefaultWindowLength
	}
	return c
}

// Governor admits requests no faster than the configured budget.
//
// All state is guarded by one mutex, so concurrent callers serialize
// behind the same shared pacing state. Waits are plain suspensions:
// mid-wait cancellation is deliberately unsupported, the request
// timeout elsewhere bounds total call latency.
type Governor struct {
	mu     sync.Mutex
	cfg    Config
	last   time.Time   // admission time of the most recent request
	window []time.Time // admission times within the trailing window, oldest first

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Governor with the given pacing budget.
// Zero config fields fall back to the package defaults.
func New(cfg Config) *Governor {
	return &Governor{
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// NewWithClock creates a Governor with an injected clock and sleep
// function. Tests use this to observe waits without real time passing.
func NewWithClock(cfg Config, now func() time.Time, sleep func(time.Duration)) *Governor {
	return &Governor{
		cfg:   cfg.withDefaults(),
		now:   now,
		sleep: sleep,
	}
}

// Acquire blocks until the next request may be issued, then records the
// admission. It returns the admission time.
//
// The next allowed instant is the later of:
//   - last admission + MinDelay
//   - oldest admission in a full window + Window
//
// The mutex is held across the wait, so independent callers queue up in
// lock order and the budget applies globally.
func (g *Governor) Acquire() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	earliest := now

	if !g.last.IsZero() {
		if t := g.last.Add(g.cfg.MinDelay); t.After(earliest) {
			earliest = t
		}
	}

	g.prune(now)
	if len(g.window) >= g.cfg.MaxPerWindow {
		if t := g.window[0].Add(g.cfg.Window); t.After(earliest) {
			earliest = t
		}
	}

	if d := earliest.Sub(now); d > 0 {
		g.sleep(d)
	}

	now = g.now()
	g.prune(now)
	g.last = now
	g.window = append(g.window, now)
	return now
}

// Pending returns the number of admissions currently inside the
// trailing window.
func (g *Governor) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prune(g.now())
	return len(g.window)
}

// Reset clears all pacing state. Used by tests.
func (g *Governor) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = time.Time{}
	g.window = nil
}

// prune drops admissions that have aged out of the trailing window.
// Callers must hold g.mu.
func (g *Governor) prune(now time.Time) {
	cutoff := now.Add(-g.cfg.Window)
	i := 0
	for i < len(g.window) && !g.window[i].After(cutoff) {
		i++
	}
	if i > 0 {
		g.window = append(g.window[:0], g.window[i:]...)
	}
}

// Package calllog records every attempt against the upstream ledger API.
//
// The log is a fixed-capacity ring buffer: the newest entry sits at index
// zero and the oldest entry is evicted once the capacity is exceeded. It
// exists for observability only; nothing in the fetch path reads it back.
package calllog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of entries retained by a Log.
const DefaultCapacity = 100

// Entry describes a single fetch attempt, successful or not.
// Retries are recorded as separate entries.
type Entry struct {
	ID         string `json:"id"`
	Timestamp  int64  `json:"timestamp"` // attempt start, Unix milliseconds
	Method     string `json:"method"`
	URL        string `json:"url"`
	Status     int    `json:"status,omitempty"`
	StatusText string `json:"statusText,omitempty"`
	Error      string `json:"error,omitempty"`
	Duration   int64  `json:"duration,omitempty"` // milliseconds
}

// Log is a bounded, concurrency-safe ring buffer of [Entry].
//
// Appends may come from any goroutine issuing fetches; reads come from
// UI collaborators. Reads return an independent snapshot so concurrent
// mutation cannot corrupt a caller's view.
type Log struct {
	mu       sync.Mutex
	buf      []Entry
	head     int // index of the newest entry when count > 0
	count    int
	capacity int
}

// New creates a Log holding at most capacity entries.
// A non-positive capacity falls back to [DefaultCapacity].
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		buf:      make([]Entry, capacity),
		capacity: capacity,
	}
}

// Record inserts e at the front of the log, evicting the oldest entry if
// the buffer is full. A missing ID is assigned and a missing timestamp is
// stamped with the current time. The stored entry is returned.
func (l *Log) Record(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.head = (l.head - 1 + l.capacity) % l.capacity
	l.buf[l.head] = e
	if l.count < l.capacity {
		l.count++
	}
	return e
}

// Snapshot returns a copy of the log, newest first.
func (l *Log) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, l.count)
	for i := 0; i < l.count; i++ {
		out[i] = l.buf[(l.head+i)%l.capacity]
	}
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Capacity returns the fixed buffer capacity.
func (l *Log) Capacity() int { return l.capacity }

// Clear empties the buffer.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.head = 0
	l.count = 0
}

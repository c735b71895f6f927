package calllog

import (
	"fmt"
	"sync"
	"testing"
)

func TestLog_RecordAssignsIDAndTimestamp(t *testing.T) {
	l := New(10)

	stored := l.Record(Entry{Method: "GET", URL: "https://blockchain.info/rawaddr/x"})

	if stored.ID == "" {
		t.Error("expected an assigned ID")
	}
	if stored.Timestamp == 0 {
		t.Error("expected an assigned timestamp")
	}
}

func TestLog_NewestFirst(t *testing.T) {
	l := New(10)

	for i := 0; i < 3; i++ {
		l.Record(Entry{URL: fmt.Sprintf("call-%d", i)})
	}

	snap := l.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len = %d, want 3", len(snap))
	}
	if snap[0].URL != "call-2" || snap[2].URL != "call-0" {
		t.Errorf("snapshot not newest-first: %v", []string{snap[0].URL, snap[1].URL, snap[2].URL})
	}
}

func TestLog_EvictsOldestAtCapacity(t *testing.T) {
	l := New(100)

	for i := 0; i < 105; i++ {
		l.Record(Entry{URL: fmt.Sprintf("call-%d", i)})
	}

	snap := l.Snapshot()
	if len(snap) != 100 {
		t.Fatalf("len = %d, want 100", len(snap))
	}
	if snap[0].URL != "call-104" {
		t.Errorf("newest entry = %s, want call-104", snap[0].URL)
	}
	if snap[99].URL != "call-5" {
		t.Errorf("oldest retained entry = %s, want call-5", snap[99].URL)
	}
}

func TestLog_SnapshotIsIndependentCopy(t *testing.T) {
	l := New(5)
	l.Record(Entry{URL: "original"})

	snap := l.Snapshot()
	snap[0].URL = "mutated"

	if l.Snapshot()[0].URL != "original" {
		t.Error("mutating a snapshot must not affect the log")
	}
}

func TestLog_Clear(t *testing.T) {
	l := New(5)
	l.Record(Entry{URL: "a"})
	l.Record(Entry{URL: "b"})

	l.Clear()

	if l.Len() != 0 {
		t.Errorf("Len after Clear = %d", l.Len())
	}
	if len(l.Snapshot()) != 0 {
		t.Error("Snapshot after Clear should be empty")
	}
}

func TestLog_ConcurrentWriters(t *testing.T) {
	l := New(50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				l.Record(Entry{URL: fmt.Sprintf("w%d-%d", n, j)})
			}
		}(i)
	}
	wg.Wait()

	if l.Len() != 50 {
		t.Errorf("Len = %d, want capacity 50", l.Len())
	}
}

func TestNew_DefaultCapacity(t *testing.T) {
	if New(0).Capacity() != DefaultCapacity {
		t.Error("expected default capacity for non-positive input")
	}
}

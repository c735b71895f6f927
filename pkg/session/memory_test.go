package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.RootAddress != sess.RootAddress {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryStore_MissingSession(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for missing session", got)
	}
}

func TestMemoryStore_ExpiredSessionIsGone(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("addr", time.Nanosecond)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Error("expired session must read as missing")
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("addr", time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}

	got, _ := store.Get(ctx, sess.ID)
	got.RootAddress = "mutated"

	again, _ := store.Get(ctx, sess.ID)
	if again.RootAddress != "addr" {
		t.Error("mutating a returned session must not affect the store")
	}
}

func TestMemoryStore_Cleanup(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	live := New("live", time.Hour)
	dead := New("dead", time.Nanosecond)
	store.Set(ctx, live)
	store.Set(ctx, dead)
	time.Sleep(5 * time.Millisecond)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want only the live session", store.Len())
	}
}

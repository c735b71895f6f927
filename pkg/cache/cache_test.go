package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCache_RoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), want hit", ok, err)
	}
	if string(data) != "payload" {
		t.Errorf("data = %q", data)
	}
}

func TestFileCache_MissForUnknownKey(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, ok, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected a miss")
	}
}

func TestFileCache_ExpiredEntryIsMiss(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("stale"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected expired entry to be a miss")
	}
}

func TestFileCache_Delete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expected a miss after delete")
	}

	// Deleting again is not an error.
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestNullCache_NeverStores(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("null cache must always miss")
	}
}

func TestPageKey(t *testing.T) {
	got := PageKey("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", 50, 100)
	want := "page:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa:50:100"
	if got != want {
		t.Errorf("PageKey = %q, want %q", got, want)
	}

	if PageKey("a", 1, 0) == PageKey("a", 1, 1) {
		t.Error("offset must affect the key")
	}
}

package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreIncrement(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := store.Increment(ctx, "client:1", time.Minute)
		if err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
		if got != want {
			t.Errorf("expected count %d, got %d", want, got)
		}
	}

	// Separate keys have separate budgets
	got, err := store.Increment(ctx, "client:2", time.Minute)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if got != 1 {
		t.Errorf("expected fresh counter for new key, got %d", got)
	}
}

func TestMemoryStoreWindowExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	if _, err := store.Increment(ctx, "k", 10*time.Millisecond); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	got, err := store.Increment(ctx, "k", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if got != 1 {
		t.Errorf("expected counter reset after window, got %d", got)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	store.Increment(ctx, "k", time.Minute)
	store.Increment(ctx, "k", time.Minute)

	if err := store.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	got, err := store.Increment(ctx, "k", time.Minute)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if got != 1 {
		t.Errorf("expected count 1 after reset, got %d", got)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	store.Increment(ctx, "old", time.Millisecond)
	store.Increment(ctx, "fresh", time.Hour)
	time.Sleep(5 * time.Millisecond)

	store.sweep()

	store.mu.Lock()
	_, oldExists := store.counters["old"]
	_, freshExists := store.counters["fresh"]
	store.mu.Unlock()

	if oldExists {
		t.Error("expired counter survived sweep")
	}
	if !freshExists {
		t.Error("live counter removed by sweep")
	}
}

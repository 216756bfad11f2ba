package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRistrettoCache_GetSet(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	cache := newTestRistrettoCache(t, clock, &Config{Mode: ModeSimple})
	ctx := context.Background()

	if err := cache.Set(ctx, "teams-stl", []byte(`{"id":"stl"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get(ctx, "teams-stl")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Value) != `{"id":"stl"}` {
		t.Errorf("Get returned %q", got.Value)
	}
	if !got.Fresh || got.Stale {
		t.Errorf("expected fresh lookup, got %+v", got)
	}
	if got.Source != "simple" {
		t.Errorf("Source = %q, want simple", got.Source)
	}
	if got.NeedsRefresh {
		t.Error("simple cache never asks for refresh")
	}

	_, err = cache.Get(ctx, "nonexistent-key")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get nonexistent key returned %v, want ErrNotFound", err)
	}
}

func TestRistrettoCache_ExpiresExactlyAtTTL(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	cache := newTestRistrettoCache(t, clock, &Config{Mode: ModeSimple, TTLMS: 100})
	ctx := context.Background()

	if err := cache.Set(ctx, "games-1", []byte(`{"score":3}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(99 * time.Millisecond)
	if _, err := cache.Get(ctx, "games-1"); err != nil {
		t.Fatalf("Get before TTL failed: %v", err)
	}

	clock.Advance(time.Millisecond)
	if _, err := cache.Get(ctx, "games-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get at TTL returned %v, want ErrNotFound", err)
	}

	// Expired values stay reachable for fallback reads.
	peeked, err := cache.Peek(ctx, "games-1")
	if err != nil {
		t.Fatalf("Peek after TTL failed: %v", err)
	}
	if !peeked.Stale || peeked.Fresh {
		t.Errorf("expected stale peek, got %+v", peeked)
	}
	if string(peeked.Value) != `{"score":3}` {
		t.Errorf("Peek returned %q", peeked.Value)
	}
}

func TestRistrettoCache_WithTTLOverride(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	cache := newTestRistrettoCache(t, clock, &Config{Mode: ModeSimple})
	ctx := context.Background()

	if err := cache.Set(ctx, "players-7", []byte(`{}`), WithTTL(time.Second)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	clock.Advance(2 * time.Second)

	if _, err := cache.Get(ctx, "players-7"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get returned %v, want ErrNotFound", err)
	}
}

func TestRistrettoCache_DeleteAndClear(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	cache := newTestRistrettoCache(t, clock, &Config{Mode: ModeSimple})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := cache.Set(ctx, fmt.Sprintf("teams-%d", i), []byte(`{}`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := cache.Delete(ctx, "teams-0"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Peek(ctx, "teams-0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Peek after Delete returned %v, want ErrNotFound", err)
	}
	if err := cache.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key returned %v", err)
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	for i := 1; i < 3; i++ {
		if _, err := cache.Peek(ctx, fmt.Sprintf("teams-%d", i)); !errors.Is(err, ErrNotFound) {
			t.Errorf("Peek after Clear returned %v, want ErrNotFound", err)
		}
	}
}

func TestRistrettoCache_Stats(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	cache := newTestRistrettoCache(t, clock, &Config{Mode: ModeSimple})
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte(`{}`))
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "missing")
	_, _ = cache.Peek(ctx, "k")

	stats := cache.Stats()
	if stats.Mode != ModeSimple {
		t.Errorf("Mode = %q, want simple", stats.Mode)
	}
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
}

func TestRistrettoCache_ValueIsolation(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	cache := newTestRistrettoCache(t, clock, &Config{Mode: ModeSimple})
	ctx := context.Background()

	value := []byte("original")
	_ = cache.Set(ctx, "k", value)
	value[0] = 'X'

	got, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Value) != "original" {
		t.Errorf("cached value mutated through caller slice: %q", got.Value)
	}
}

func TestRistrettoCache_OperationsAfterClose(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	cache := newTestRistrettoCache(t, clock, &Config{Mode: ModeSimple})
	ctx := context.Background()

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
	if _, err := cache.Peek(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Peek after Close = %v, want ErrClosed", err)
	}
	if err := cache.Set(ctx, "k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
	if err := cache.Delete(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Delete after Close = %v, want ErrClosed", err)
	}
	if err := cache.Clear(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Clear after Close = %v, want ErrClosed", err)
	}
}

func TestRistrettoCache_CanceledContext(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	cache := newTestRistrettoCache(t, clock, &Config{Mode: ModeSimple})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get with canceled ctx = %v, want context.Canceled", err)
	}
	if err := cache.Set(ctx, "k", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Set with canceled ctx = %v, want context.Canceled", err)
	}
}

func TestRistrettoCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	cache := newTestRistrettoCache(t, clock, &Config{Mode: ModeSimple})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("teams-%d", n%5)
			for j := 0; j < 50; j++ {
				_ = cache.Set(ctx, key, []byte(`{}`))
				_, _ = cache.Get(ctx, key)
				_, _ = cache.Peek(ctx, key)
			}
		}(i)
	}
	wg.Wait()
}

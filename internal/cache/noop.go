package cache

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// noopCache is a no-op cache implementation that stores nothing.
// It is used when caching is disabled.
// All write operations succeed but do nothing.
// All read operations return ErrNotFound.
type noopCache struct {
	log    zerolog.Logger
	misses atomic.Uint64
	closed atomic.Bool
}

// newNoopCache creates a new no-op cache instance.
func newNoopCache(o options) *noopCache {
	log := o.log("noop")
	log.Debug().Str("note", "caching is disabled").Msg("noop cache created")
	return &noopCache{
		log: log,
	}
}

// Get always returns ErrNotFound since noopCache stores nothing.
// Returns ErrClosed if the cache has been closed.
func (c *noopCache) Get(_ context.Context, key string) (*Lookup, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	c.misses.Add(1)
	c.log.Debug().
		Str("key", key).
		Bool("hit", false).
		Msg("cache get")
	return nil, ErrNotFound
}

// Peek always returns ErrNotFound.
func (c *noopCache) Peek(_ context.Context, _ string) (*Lookup, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return nil, ErrNotFound
}

// Set is a no-op that always returns nil.
// Returns ErrClosed if the cache has been closed.
func (c *noopCache) Set(_ context.Context, key string, value []byte, _ ...SetOption) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.log.Debug().
		Str("key", key).
		Int("size", len(value)).
		Msg("cache set")
	return nil
}

// Delete is a no-op that always returns nil.
// Returns ErrClosed if the cache has been closed.
func (c *noopCache) Delete(_ context.Context, _ string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Clear is a no-op that always returns nil.
func (c *noopCache) Clear(_ context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Close marks the cache as closed. It is idempotent.
func (c *noopCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.log.Info().Msg("noop cache closed")
	return nil
}

// Stats reports misses only; the noopCache never stores anything.
func (c *noopCache) Stats() Stats {
	return Stats{Mode: ModeDisabled, Misses: c.misses.Load()}
}

// Compile-time interface check.
var _ Cache = (*noopCache)(nil)

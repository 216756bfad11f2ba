package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog"
)

const sourceSimple = "simple"

// ristrettoCache implements Cache using Ristretto as the backend.
// Entries expire exactly at their TTL for Get. Ristretto keeps them for a
// further retention period so Peek can still return them for fallback reads.
type ristrettoCache struct {
	cache     *ristretto.Cache[string, *Entry]
	now       func() time.Time
	log       zerolog.Logger
	ttl       time.Duration
	retention time.Duration
	hits      atomic.Uint64
	misses    atomic.Uint64
	closed    atomic.Bool
	mu        sync.RWMutex
}

// Ensure ristrettoCache implements Cache.
var _ Cache = (*ristrettoCache)(nil)

// newRistrettoCache creates a new Ristretto cache with the given configuration.
func newRistrettoCache(cfg *Config, o options) (*ristrettoCache, error) {
	log := o.log("ristretto")
	rcfg := cfg.GetRistretto()

	cache, err := ristretto.NewCache(&ristretto.Config[string, *Entry]{
		NumCounters:        rcfg.NumCounters,
		MaxCost:            rcfg.MaxCost,
		BufferItems:        rcfg.BufferItems,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create ristretto cache")
		return nil, err
	}

	log.Info().
		Int64("num_counters", rcfg.NumCounters).
		Int64("max_cost", rcfg.MaxCost).
		Int64("buffer_items", rcfg.BufferItems).
		Dur("ttl", cfg.GetTTL()).
		Msg("ristretto cache created")

	return &ristrettoCache{
		cache:     cache,
		now:       o.now,
		log:       log,
		ttl:       cfg.GetTTL(),
		retention: cfg.GetRetention(),
	}, nil
}

// Get returns the entry while it is inside its TTL.
func (r *ristrettoCache) Get(ctx context.Context, key string) (*Lookup, error) {
	entry, err := r.load(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := r.now()
	if entry == nil || entry.Freshness(now) != Fresh {
		r.misses.Add(1)
		r.log.Debug().
			Str("key", key).
			Bool("hit", false).
			Msg("cache get")
		return nil, ErrNotFound
	}

	r.hits.Add(1)
	r.log.Debug().
		Str("key", key).
		Bool("hit", true).
		Int("size", len(entry.Value)).
		Msg("cache get")
	return entry.lookup(now, sourceSimple), nil
}

// Peek returns any retained entry, including expired ones.
func (r *ristrettoCache) Peek(ctx context.Context, key string) (*Lookup, error) {
	entry, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return entry.lookup(r.now(), sourceSimple), nil
}

func (r *ristrettoCache) load(ctx context.Context, key string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed.Load() {
		return nil, ErrClosed
	}

	entry, found := r.cache.Get(key)
	if !found {
		return nil, ErrNotFound
	}
	return entry, nil
}

// Set stores value. Priority has no effect on this backend.
func (r *ristrettoCache) Set(ctx context.Context, key string, value []byte, opts ...SetOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed.Load() {
		return ErrClosed
	}

	o := applySetOptions(r.ttl, opts)
	entry := newEntry(value, r.now(), o.ttl, 0)

	// Cost is the byte length of the value
	cost := max(int64(len(value)), 1)
	buffered := r.cache.SetWithTTL(key, entry, cost, o.ttl+r.retention)
	// Wait makes the write visible to the next Get
	r.cache.Wait()

	// The admission policy runs after the buffer, so a buffered write can
	// still be rejected. GetTTL leaves hit counters untouched.
	if _, stored := r.cache.GetTTL(key); !buffered || !stored {
		r.log.Warn().
			Str("key", key).
			Int("size", len(value)).
			Bool("dropped", !buffered).
			Msg("cache set rejected")
		return nil
	}

	r.log.Debug().
		Str("key", key).
		Int("size", len(value)).
		Dur("ttl", o.ttl).
		Msg("cache set")

	return nil
}

// Delete removes a key from the cache.
func (r *ristrettoCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed.Load() {
		return ErrClosed
	}

	r.cache.Del(key)
	r.cache.Wait()

	r.log.Debug().
		Str("key", key).
		Msg("cache delete")

	return nil
}

// Clear drops every entry.
func (r *ristrettoCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed.Load() {
		return ErrClosed
	}

	r.cache.Clear()
	r.log.Info().Msg("cache cleared")
	return nil
}

// Close releases resources associated with the cache.
// After Close is called, all operations will return ErrClosed.
// Close is idempotent.
func (r *ristrettoCache) Close() error {
	if r.closed.Load() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return nil
	}

	r.closed.Store(true)

	// Wait for all pending writes to complete
	r.cache.Wait()
	r.cache.Close()

	r.log.Info().Msg("ristretto cache closed")

	return nil
}

// Stats returns current cache statistics.
func (r *ristrettoCache) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		Mode:   ModeSimple,
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
	}
	if r.closed.Load() {
		return stats
	}

	metrics := r.cache.Metrics
	stats.KeyCount = metrics.KeysAdded() - metrics.KeysEvicted()
	stats.BytesUsed = metrics.CostAdded() - metrics.CostEvicted()
	stats.Evictions = metrics.KeysEvicted()

	return stats
}

// Package cache provides the payload cache used by the fetch coordinator.
//
// Three backends sit behind the Cache interface:
//   - Simple mode (Ristretto): exact-TTL local cache, no stale serving
//   - Tiered mode (hot/warm/cold LRU tiers): stale-while-revalidate with
//     deterministic promotion and demotion between tiers
//   - Disabled mode (Noop): stores nothing
//
// All implementations are safe for concurrent use. The backend is chosen once,
// when the cache is constructed.
//
// Basic usage:
//
//	c, err := cache.New(ctx, &cache.Config{Mode: cache.ModeTiered})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	err = c.Set(ctx, "teams-stl", payload, cache.WithPriority(cache.PriorityHigh))
//
//	lookup, err := c.Get(ctx, "teams-stl")
//	if errors.Is(err, cache.ErrNotFound) {
//		// miss, or past every servable window
//	}
package cache

import "context"

// Cache defines the interface for cache operations.
// All implementations must be safe for concurrent use.
type Cache interface {
	// Get returns a servable value: fresh, or stale but inside the stale window
	// for backends that serve stale data. Returns ErrNotFound otherwise.
	Get(ctx context.Context, key string) (*Lookup, error)

	// Set stores a value, replacing any previous entry for the key.
	Set(ctx context.Context, key string, value []byte, opts ...SetOption) error

	// Peek returns whatever the cache still retains for the key, however old,
	// without touching recency or hit statistics. It feeds fallback paths.
	Peek(ctx context.Context, key string) (*Lookup, error)

	// Delete removes a key from the cache.
	// Returns nil if the key does not exist (idempotent).
	Delete(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Stats returns current cache statistics.
	Stats() Stats

	// Close releases resources associated with the cache.
	// After Close is called, all operations will return ErrClosed.
	// Close is idempotent.
	Close() error
}

// Stats provides cache statistics for observability.
type Stats struct {
	Mode Mode `json:"mode"`

	// Tiers is empty for untiered backends.
	Tiers []TierStats `json:"tiers,omitempty"`

	// Hits counts Get calls that returned a value, fresh or stale.
	Hits uint64 `json:"hits"`

	// StaleHits counts the subset of Hits served from the stale window.
	StaleHits uint64 `json:"stale_hits"`

	// Misses counts Get calls that returned ErrNotFound.
	Misses uint64 `json:"misses"`

	// KeyCount is the current number of keys in the cache.
	KeyCount uint64 `json:"key_count"`

	// BytesUsed is the approximate memory used by cached values.
	BytesUsed uint64 `json:"bytes_used"`

	// Evictions is the number of keys evicted due to capacity limits.
	Evictions uint64 `json:"evictions"`

	Promotions uint64 `json:"promotions"`
	Demotions  uint64 `json:"demotions"`
}

// TierStats describes one tier of a tiered cache.
type TierStats struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Size     int    `json:"size"`
}

// HitRate returns hits as a percentage of lookups, 0 when there were none.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

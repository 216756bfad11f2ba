package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
)

// tieredCache keeps entries in a chain of LRU tiers ordered hottest first.
//
// Placement: PriorityHigh enters the first tier, PriorityLow the last and
// PriorityNormal the second. Rewriting an existing key keeps its tier.
// When a tier is full its least recently used entry is demoted one tier; the
// last tier evicts. Every servable Get in a lower tier counts a hit, and
// promoteAfter hits move the entry up one tier.
//
// A single mutex guards all tiers because promotion and demotion move entries
// across them.
type tieredCache struct {
	now              func() time.Time
	log              zerolog.Logger
	tiers            []*tier
	ttl              time.Duration
	staleWindow      time.Duration
	refreshThreshold float64
	promoteAfter     int
	stats            Stats
	closed           bool
	mu               sync.Mutex
}

type tier struct {
	items    *lru.Cache
	name     string
	capacity int
}

type tieredItem struct {
	entry *Entry
	hits  int
}

var _ Cache = (*tieredCache)(nil)

func newTieredCache(cfg *Config, o options) (*tieredCache, error) {
	log := o.log("tiered")

	tierCfgs := cfg.GetTiers()
	tiers := make([]*tier, 0, len(tierCfgs))
	for _, tc := range tierCfgs {
		// Room is always made before Add, so the LRU never evicts on its own.
		items, err := lru.New(tc.Capacity)
		if err != nil {
			return nil, fmt.Errorf("cache: create tier %q: %w", tc.Name, err)
		}
		tiers = append(tiers, &tier{items: items, name: tc.Name, capacity: tc.Capacity})
	}

	c := &tieredCache{
		now:              o.now,
		log:              log,
		tiers:            tiers,
		ttl:              cfg.GetTTL(),
		staleWindow:      cfg.GetStaleWindow(),
		refreshThreshold: cfg.GetRefreshThreshold(),
		promoteAfter:     cfg.GetPromoteAfter(),
		stats:            Stats{Mode: ModeTiered},
	}

	log.Info().
		Int("tiers", len(tiers)).
		Dur("ttl", c.ttl).
		Dur("stale_window", c.staleWindow).
		Float64("refresh_threshold", c.refreshThreshold).
		Int("promote_after", c.promoteAfter).
		Msg("tiered cache created")

	return c, nil
}

// Get returns fresh or stale-but-usable entries. Expired entries miss but stay
// available to Peek until capacity pushes them out.
func (c *tieredCache) Get(ctx context.Context, key string) (*Lookup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	idx, item := c.locate(key)
	now := c.now()
	if item == nil || item.entry.Freshness(now) == Expired {
		c.stats.Misses++
		c.log.Debug().
			Str("key", key).
			Bool("hit", false).
			Msg("cache get")
		return nil, ErrNotFound
	}

	source := c.tiers[idx].name
	c.tiers[idx].items.Get(key)
	c.stats.Hits++

	lookup := item.entry.lookup(now, source)
	if lookup.Fresh {
		lookup.NeedsRefresh = item.entry.NeedsRefresh(now, c.refreshThreshold)
	} else {
		c.stats.StaleHits++
		lookup.NeedsRefresh = true
	}

	if idx > 0 {
		item.hits++
		if item.hits >= c.promoteAfter {
			c.promote(idx, key, item)
		}
	}

	c.log.Debug().
		Str("key", key).
		Bool("hit", true).
		Str("tier", source).
		Bool("stale", lookup.Stale).
		Bool("needs_refresh", lookup.NeedsRefresh).
		Msg("cache get")

	return lookup, nil
}

// Peek returns any retained entry without touching recency or stats.
func (c *tieredCache) Peek(ctx context.Context, key string) (*Lookup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	idx, item := c.locate(key)
	if item == nil {
		return nil, ErrNotFound
	}
	return item.entry.lookup(c.now(), c.tiers[idx].name), nil
}

// Set stores value in the tier chosen by its priority, or in place when the
// key already exists.
func (c *tieredCache) Set(ctx context.Context, key string, value []byte, opts ...SetOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o := applySetOptions(c.ttl, opts)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	entry := newEntry(value, c.now(), o.ttl, c.staleWindow)

	if idx, existing := c.locate(key); existing != nil {
		existing.entry = entry
		c.tiers[idx].items.Add(key, existing)
		c.log.Debug().
			Str("key", key).
			Str("tier", c.tiers[idx].name).
			Int("size", len(value)).
			Msg("cache set")
		return nil
	}

	idx := c.placement(o.priority)
	c.insert(idx, key, &tieredItem{entry: entry})

	c.log.Debug().
		Str("key", key).
		Str("tier", c.tiers[idx].name).
		Int("size", len(value)).
		Dur("ttl", o.ttl).
		Msg("cache set")

	return nil
}

// Delete removes a key from whichever tier holds it.
func (c *tieredCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	for _, t := range c.tiers {
		t.items.Remove(key)
	}
	c.log.Debug().
		Str("key", key).
		Msg("cache delete")
	return nil
}

// Clear drops every entry from every tier.
func (c *tieredCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	for _, t := range c.tiers {
		t.items.Purge()
	}
	c.log.Info().Msg("cache cleared")
	return nil
}

// Close releases every tier. Close is idempotent.
func (c *tieredCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	for _, t := range c.tiers {
		t.items.Purge()
	}
	c.log.Info().Msg("tiered cache closed")
	return nil
}

// Stats returns current cache statistics.
func (c *tieredCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Tiers = make([]TierStats, 0, len(c.tiers))
	stats.KeyCount = 0
	stats.BytesUsed = 0
	for _, t := range c.tiers {
		size := t.items.Len()
		stats.Tiers = append(stats.Tiers, TierStats{Name: t.name, Capacity: t.capacity, Size: size})
		stats.KeyCount += uint64(size) //nolint:gosec // Len is never negative
		for _, k := range t.items.Keys() {
			if v, ok := t.items.Peek(k); ok {
				stats.BytesUsed += uint64(len(v.(*tieredItem).entry.Value))
			}
		}
	}
	return stats
}

// locate finds key without changing recency. Callers hold c.mu.
func (c *tieredCache) locate(key string) (int, *tieredItem) {
	for i, t := range c.tiers {
		if v, ok := t.items.Peek(key); ok {
			return i, v.(*tieredItem)
		}
	}
	return -1, nil
}

func (c *tieredCache) placement(p Priority) int {
	last := len(c.tiers) - 1
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return last
	default:
		return min(1, last)
	}
}

// promote moves an item from tier idx to idx-1. Callers hold c.mu.
func (c *tieredCache) promote(idx int, key string, item *tieredItem) {
	c.tiers[idx].items.Remove(key)
	item.hits = 0
	c.stats.Promotions++
	c.log.Debug().
		Str("key", key).
		Str("from", c.tiers[idx].name).
		Str("to", c.tiers[idx-1].name).
		Msg("cache promote")
	c.insert(idx-1, key, item)
}

// insert adds an item to tier idx, cascading least recently used entries down
// the chain while tiers are full. Callers hold c.mu.
func (c *tieredCache) insert(idx int, key string, item *tieredItem) {
	for idx < len(c.tiers) {
		t := c.tiers[idx]

		var (
			oldKey, oldVal any
			overflow       bool
		)
		if t.items.Len() >= t.capacity {
			oldKey, oldVal, overflow = t.items.RemoveOldest()
		}
		t.items.Add(key, item)
		if !overflow {
			return
		}

		key = oldKey.(string)
		item = oldVal.(*tieredItem)
		item.hits = 0
		idx++

		if idx < len(c.tiers) {
			c.stats.Demotions++
			c.log.Debug().
				Str("key", key).
				Str("from", t.name).
				Str("to", c.tiers[idx].name).
				Msg("cache demote")
			continue
		}

		c.stats.Evictions++
		c.log.Debug().
			Str("key", key).
			Str("from", t.name).
			Msg("cache evict")
	}
}

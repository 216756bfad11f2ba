package cache

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// testClock is a manually advanced clock for freshness tests.
type testClock struct {
	now time.Time
	mu  sync.Mutex
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestLogger creates a test logger at the given level, returning
// the buffer (for inspecting output) and the logger pointer.
func newTestLogger(level zerolog.Level) (*bytes.Buffer, *zerolog.Logger) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(level)
	return &buf, &logger
}

func newTestTieredCache(t *testing.T, clock *testClock, cfg *Config) *tieredCache {
	t.Helper()
	nop := zerolog.Nop()
	c, err := newTieredCache(cfg, options{now: clock.Now, logger: &nop})
	if err != nil {
		t.Fatalf("newTieredCache failed: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := c.Close(); closeErr != nil {
			t.Errorf("Close() error = %v", closeErr)
		}
	})
	return c
}

func newTestRistrettoCache(t *testing.T, clock *testClock, cfg *Config) *ristrettoCache {
	t.Helper()
	nop := zerolog.Nop()
	if cfg.Ristretto == (RistrettoConfig{}) {
		cfg.Ristretto = RistrettoConfig{
			NumCounters: 100_000,
			MaxCost:     10 << 20, // 10 MB
			BufferItems: 64,
		}
	}
	c, err := newRistrettoCache(cfg, options{now: clock.Now, logger: &nop})
	if err != nil {
		t.Fatalf("failed to create ristretto cache: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := c.Close(); closeErr != nil {
			t.Errorf("Close() error = %v", closeErr)
		}
	})
	return c
}

// tierOf returns the name of the tier holding key, or "" if absent.
func (c *tieredCache) tierOf(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, item := c.locate(key)
	if item == nil {
		return ""
	}
	return c.tiers[idx].name
}

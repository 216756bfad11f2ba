package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntryFreshness(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := newEntry([]byte(`{"a":1}`), start, 5*time.Minute, 25*time.Minute)

	assert.Equal(t, Fresh, entry.Freshness(start))
	assert.Equal(t, Fresh, entry.Freshness(start.Add(5*time.Minute-time.Nanosecond)))
	assert.Equal(t, Stale, entry.Freshness(start.Add(5*time.Minute)))
	assert.Equal(t, Stale, entry.Freshness(start.Add(30*time.Minute-time.Nanosecond)))
	assert.Equal(t, Expired, entry.Freshness(start.Add(30*time.Minute)))
}

func TestEntryNeedsRefresh(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := newEntry(nil, start, 100*time.Second, 0)

	assert.False(t, entry.NeedsRefresh(start.Add(69*time.Second), 0.7))
	assert.True(t, entry.NeedsRefresh(start.Add(70*time.Second), 0.7))
	assert.True(t, entry.NeedsRefresh(start.Add(200*time.Second), 0.7))
}

func TestEntryCopiesValue(t *testing.T) {
	t.Parallel()

	value := []byte("abc")
	entry := newEntry(value, time.Now(), time.Minute, 0)
	value[0] = 'x'
	assert.Equal(t, "abc", string(entry.Value))

	lookup := entry.lookup(time.Now(), "hot")
	lookup.Value[0] = 'y'
	assert.Equal(t, "abc", string(entry.Value))
}

func TestApplySetOptions(t *testing.T) {
	t.Parallel()

	o := applySetOptions(time.Minute, nil)
	assert.Equal(t, time.Minute, o.ttl)
	assert.Equal(t, PriorityNormal, o.priority)

	o = applySetOptions(time.Minute, []SetOption{WithTTL(time.Second), WithPriority(PriorityHigh)})
	assert.Equal(t, time.Second, o.ttl)
	assert.Equal(t, PriorityHigh, o.priority)

	o = applySetOptions(time.Minute, []SetOption{WithTTL(-time.Second)})
	assert.Equal(t, time.Minute, o.ttl)
}

func TestFreshnessString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fresh", Fresh.String())
	assert.Equal(t, "stale", Stale.String())
	assert.Equal(t, "expired", Expired.String())
}

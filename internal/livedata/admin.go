package livedata

import (
	"context"

	"github.com/blaze-intelligence/livedata/internal/cache"
	"github.com/blaze-intelligence/livedata/internal/health"
	"github.com/blaze-intelligence/livedata/internal/ratelimit"
)

// PerformanceStats is a snapshot of request counters and derived rates.
// Rates are percentages of Total.
type PerformanceStats struct {
	CircuitBreakers     []health.Snapshot `json:"circuit_breakers"`
	RateLimit           ratelimit.Usage   `json:"rate_limit"`
	Total               uint64            `json:"total_requests"`
	Successful          uint64            `json:"successful_requests"`
	Failed              uint64            `json:"failed_requests"`
	Cached              uint64            `json:"cached_responses"`
	CircuitBreakerTrips uint64            `json:"circuit_breaker_trips"`
	SuccessRate         float64           `json:"success_rate"`
	CacheHitRate        float64           `json:"cache_hit_rate"`
	PendingRequests     int               `json:"pending_requests"`
}

// GetPerformanceStats returns request counters, rates, the in-flight count and
// every breaker's state.
func (c *Client) GetPerformanceStats() PerformanceStats {
	s := c.coord.Stats()
	return PerformanceStats{
		CircuitBreakers:     c.tracker.Snapshots(),
		RateLimit:           c.api.limiter.GetUsage(),
		Total:               s.Total,
		Successful:          s.Successful,
		Failed:              s.Failed,
		Cached:              s.Cached,
		CircuitBreakerTrips: s.CircuitBreakerTrips,
		SuccessRate:         s.SuccessRate(),
		CacheHitRate:        s.CacheHitRate(),
		PendingRequests:     c.coord.PendingCount(),
	}
}

// ResetCircuitBreaker forces the named breaker back to CLOSED. It returns false
// when no breaker has that name.
func (c *Client) ResetCircuitBreaker(name string) bool {
	return c.tracker.Reset(name)
}

// ResetAllCircuitBreakers forces every breaker back to CLOSED.
func (c *Client) ResetAllCircuitBreakers() {
	c.tracker.ResetAll()
}

// ClearCache drops every cached payload.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// GetCacheStats returns the cache's statistics.
func (c *Client) GetCacheStats() cache.Stats {
	return c.cache.Stats()
}

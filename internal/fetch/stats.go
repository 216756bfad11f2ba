package fetch

import "sync/atomic"

// Stats holds the coordinator's monotonic counters.
type Stats struct {
	total               atomic.Uint64
	successful          atomic.Uint64
	failed              atomic.Uint64
	cached              atomic.Uint64
	circuitBreakerTrips atomic.Uint64
}

// StatsSnapshot is an immutable copy of Stats.
//
// Every call increments Total. Calls answered from cache increment Cached;
// calls that ran a fetch increment Successful or Failed. Calls that joined an
// in-flight fetch only count toward Total, so
// Cached+Successful+Failed <= Total.
type StatsSnapshot struct {
	Total               uint64 `json:"total_requests"`
	Successful          uint64 `json:"successful_requests"`
	Failed              uint64 `json:"failed_requests"`
	Cached              uint64 `json:"cached_responses"`
	CircuitBreakerTrips uint64 `json:"circuit_breaker_trips"`
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Total:               s.total.Load(),
		Successful:          s.successful.Load(),
		Failed:              s.failed.Load(),
		Cached:              s.cached.Load(),
		CircuitBreakerTrips: s.circuitBreakerTrips.Load(),
	}
}

// SuccessRate is Successful as a percentage of Total, 0 when Total is 0.
func (s StatsSnapshot) SuccessRate() float64 {
	return percent(s.Successful, s.Total)
}

// CacheHitRate is Cached as a percentage of Total, 0 when Total is 0.
func (s StatsSnapshot) CacheHitRate() float64 {
	return percent(s.Cached, s.Total)
}

func percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

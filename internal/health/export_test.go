package health

import "github.com/rs/zerolog"

// NewTestBreaker builds a breaker named "test-endpoint" with a no-op logger.
func NewTestBreaker(threshold, openMS, probes int) *CircuitBreaker {
	logger := zerolog.Nop()
	return NewCircuitBreaker("test-endpoint", CircuitBreakerConfig{
		FailureThreshold: threshold,
		OpenDurationMS:   openMS,
		HalfOpenProbes:   probes,
	}, &logger)
}

// HasCircuits returns whether the circuits map is initialized (for testing).
func (t *Tracker) HasCircuits() bool {
	return t.circuits != nil
}

// IsHealthyStatus exports isHealthyStatus for testing.
var IsHealthyStatus = isHealthyStatus

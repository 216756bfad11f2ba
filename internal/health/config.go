// Package health provides per-endpoint circuit breaking and health evaluation
// for the live-data client.
//
// The package implements:
//   - Circuit breaker state machine (CLOSED -> OPEN -> HALF-OPEN -> CLOSED)
//   - A lazy registry of breakers keyed by endpoint (Tracker)
//   - An HTTP probe against the API health endpoint
//   - Majority-based overall health evaluation
//
// A breaker stops calls to an endpoint that keeps failing, giving it time to
// recover before probe calls are let through again.
package health

import "time"

// Default configuration values.
const (
	DefaultFailureThreshold = 5     // consecutive failures to open circuit
	DefaultOpenDurationMS   = 60000 // 60 seconds before half-open
	DefaultHalfOpenProbes   = 3     // successful probes needed to close
	DefaultProbeTimeoutMS   = 5000

	DefaultProbePath = "/healthz"
)

// CircuitBreakerConfig defines circuit breaker behavior.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening the circuit.
	// Default: 5
	FailureThreshold int `yaml:"failure_threshold" toml:"failure_threshold"`

	// OpenDurationMS is the duration in milliseconds the circuit stays open before
	// transitioning to half-open state. Default: 60000 (60 seconds)
	OpenDurationMS int `yaml:"open_duration_ms" toml:"open_duration_ms"`

	// HalfOpenProbes is the number of consecutive successes required in half-open
	// state to close the circuit. Any failure reopens it. Default: 3
	HalfOpenProbes int `yaml:"half_open_probes" toml:"half_open_probes"`
}

// GetFailureThreshold returns the configured failure threshold or default 5.
func (c *CircuitBreakerConfig) GetFailureThreshold() int {
	if c.FailureThreshold <= 0 {
		return DefaultFailureThreshold
	}
	return c.FailureThreshold
}

// GetOpenDuration returns the open duration as time.Duration.
// Returns default 60s if not set or negative.
func (c *CircuitBreakerConfig) GetOpenDuration() time.Duration {
	if c.OpenDurationMS <= 0 {
		return time.Duration(DefaultOpenDurationMS) * time.Millisecond
	}
	return time.Duration(c.OpenDurationMS) * time.Millisecond
}

// GetHalfOpenProbes returns the configured half-open probes or default 3.
func (c *CircuitBreakerConfig) GetHalfOpenProbes() int {
	if c.HalfOpenProbes <= 0 {
		return DefaultHalfOpenProbes
	}
	return c.HalfOpenProbes
}

// ProbeConfig defines the API health probe.
type ProbeConfig struct {
	Path      string `yaml:"path" toml:"path"`
	TimeoutMS int    `yaml:"timeout_ms" toml:"timeout_ms"`
}

// GetPath returns the probe path or "/healthz".
func (c *ProbeConfig) GetPath() string {
	if c.Path == "" {
		return DefaultProbePath
	}
	return c.Path
}

// GetTimeout returns the probe timeout, default 5s.
func (c *ProbeConfig) GetTimeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return time.Duration(DefaultProbeTimeoutMS) * time.Millisecond
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Config combines circuit breaker and probe configuration.
type Config struct {
	Probe          ProbeConfig          `yaml:"probe" toml:"probe"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker" toml:"circuit_breaker"`
}

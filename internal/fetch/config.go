// Package fetch coordinates cached, deduplicated and circuit-protected
// fetches of JSON payloads.
package fetch

import "time"

// Default configuration values.
const (
	DefaultMaxAttempts      = 3
	DefaultBaseDelayMS      = 500
	DefaultFetchTimeoutMS   = 30000
	DefaultPendingTimeoutMS = 30000
	DefaultSweepIntervalMS  = 10000
)

// Config controls retries and in-flight request bookkeeping.
type Config struct {
	// MaxAttempts is the number of fetch attempts per logical call. Default: 3
	MaxAttempts int `yaml:"max_attempts" toml:"max_attempts"`

	// BaseDelayMS is the linear backoff unit; attempt n waits n*BaseDelay
	// before attempt n+1. Default: 500
	BaseDelayMS int `yaml:"base_delay_ms" toml:"base_delay_ms"`

	// FetchTimeoutMS bounds one logical call including retries. Default: 30000
	FetchTimeoutMS int `yaml:"fetch_timeout_ms" toml:"fetch_timeout_ms"`

	// PendingTimeoutMS is the age after which the sweep drops an in-flight
	// entry so new callers start a fresh request. Default: 30000
	PendingTimeoutMS int `yaml:"pending_timeout_ms" toml:"pending_timeout_ms"`

	// SweepIntervalMS is how often the sweep runs. Default: 10000
	SweepIntervalMS int `yaml:"sweep_interval_ms" toml:"sweep_interval_ms"`
}

// GetMaxAttempts returns the attempt count, default 3.
func (c *Config) GetMaxAttempts() int {
	if c.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return c.MaxAttempts
}

// GetBaseDelay returns the backoff unit, default 500ms.
func (c *Config) GetBaseDelay() time.Duration {
	return msOrDefault(c.BaseDelayMS, DefaultBaseDelayMS)
}

// GetFetchTimeout returns the per-call timeout, default 30s.
func (c *Config) GetFetchTimeout() time.Duration {
	return msOrDefault(c.FetchTimeoutMS, DefaultFetchTimeoutMS)
}

// GetPendingTimeout returns the in-flight expiry, default 30s.
func (c *Config) GetPendingTimeout() time.Duration {
	return msOrDefault(c.PendingTimeoutMS, DefaultPendingTimeoutMS)
}

// GetSweepInterval returns the sweep period, default 10s.
func (c *Config) GetSweepInterval() time.Duration {
	return msOrDefault(c.SweepIntervalMS, DefaultSweepIntervalMS)
}

func msOrDefault(ms, def int) time.Duration {
	if ms <= 0 {
		ms = def
	}
	return time.Duration(ms) * time.Millisecond
}

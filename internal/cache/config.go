package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Mode represents the cache operating mode.
type Mode string

const (
	// ModeSimple uses a local Ristretto cache with exact TTL expiry.
	ModeSimple Mode = "simple"

	// ModeTiered uses hot/warm/cold LRU tiers with stale-while-revalidate (default).
	ModeTiered Mode = "tiered"

	// ModeDisabled uses noop cache (caching disabled).
	// All operations return immediately without storing data.
	ModeDisabled Mode = "disabled"
)

// Default configuration values.
const (
	DefaultTTL              = 5 * time.Minute
	DefaultStaleWindow      = 25 * time.Minute
	DefaultRetention        = 30 * time.Minute
	DefaultRefreshThreshold = 0.7
	DefaultPromoteAfter     = 2
)

// Config defines cache configuration.
// Use Validate() to check for configuration errors before creating a cache.
type Config struct {
	Mode Mode `yaml:"mode" toml:"mode"`

	// Tiers lists tiers from hottest to coldest. Default: hot 100, warm 500, cold 2000.
	Tiers []TierConfig `yaml:"tiers" toml:"tiers"`

	Ristretto RistrettoConfig `yaml:"ristretto" toml:"ristretto"`

	// TTLMS is how long an entry stays fresh. Default: 300000 (5 minutes)
	TTLMS int `yaml:"ttl_ms" toml:"ttl_ms"`

	// StaleWindowMS is how long past its TTL a tiered entry may still be
	// served as stale. Default: 1500000 (25 minutes)
	StaleWindowMS int `yaml:"stale_window_ms" toml:"stale_window_ms"`

	// RetentionMS is how long past its TTL a simple-mode entry is kept for
	// fallback reads via Peek. Default: 1800000 (30 minutes)
	RetentionMS int `yaml:"retention_ms" toml:"retention_ms"`

	// RefreshThreshold is the fraction of the TTL after which a fresh hit asks
	// for a background refresh. Default: 0.7
	RefreshThreshold float64 `yaml:"refresh_threshold" toml:"refresh_threshold"`

	// PromoteAfter is how many hits in a lower tier move an entry up one tier.
	// Default: 2
	PromoteAfter int `yaml:"promote_after" toml:"promote_after"`
}

// TierConfig configures one tier of the tiered cache.
type TierConfig struct {
	Name     string `yaml:"name" toml:"name"`
	Capacity int    `yaml:"capacity" toml:"capacity"`
}

// RistrettoConfig configures the Ristretto local cache.
type RistrettoConfig struct {
	// NumCounters is the number of 4-bit access counters.
	// Recommended: 10x expected max items for optimal admission policy.
	NumCounters int64 `yaml:"num_counters" toml:"num_counters"`

	// MaxCost is the maximum cost the cache can hold, measured in bytes of
	// cached payloads. Example: 100 << 20 for 100 MB.
	MaxCost int64 `yaml:"max_cost" toml:"max_cost"`

	// BufferItems is the number of keys per Get buffer. Recommended: 64.
	BufferItems int64 `yaml:"buffer_items" toml:"buffer_items"`
}

// GetMode returns the configured mode, or ModeTiered when unset.
func (c *Config) GetMode() Mode {
	if c.Mode == "" {
		return ModeTiered
	}
	return c.Mode
}

// GetTTL returns the entry TTL, default 5 minutes.
func (c *Config) GetTTL() time.Duration {
	if c.TTLMS <= 0 {
		return DefaultTTL
	}
	return time.Duration(c.TTLMS) * time.Millisecond
}

// GetStaleWindow returns the stale window, default 25 minutes.
func (c *Config) GetStaleWindow() time.Duration {
	if c.StaleWindowMS <= 0 {
		return DefaultStaleWindow
	}
	return time.Duration(c.StaleWindowMS) * time.Millisecond
}

// GetRetention returns the simple-mode fallback retention, default 30 minutes.
func (c *Config) GetRetention() time.Duration {
	if c.RetentionMS <= 0 {
		return DefaultRetention
	}
	return time.Duration(c.RetentionMS) * time.Millisecond
}

// GetRefreshThreshold returns the refresh threshold, default 0.7.
func (c *Config) GetRefreshThreshold() float64 {
	if c.RefreshThreshold <= 0 || c.RefreshThreshold > 1 {
		return DefaultRefreshThreshold
	}
	return c.RefreshThreshold
}

// GetPromoteAfter returns the promotion hit count, default 2.
func (c *Config) GetPromoteAfter() int {
	if c.PromoteAfter <= 0 {
		return DefaultPromoteAfter
	}
	return c.PromoteAfter
}

// GetTiers returns the configured tiers or DefaultTiers().
func (c *Config) GetTiers() []TierConfig {
	if len(c.Tiers) == 0 {
		return DefaultTiers()
	}
	return c.Tiers
}

// GetRistretto returns the Ristretto config with zero fields defaulted.
func (c *Config) GetRistretto() RistrettoConfig {
	defaults := DefaultRistrettoConfig()
	cfg := c.Ristretto
	if cfg.NumCounters == 0 {
		cfg.NumCounters = defaults.NumCounters
	}
	if cfg.MaxCost == 0 {
		cfg.MaxCost = defaults.MaxCost
	}
	if cfg.BufferItems == 0 {
		cfg.BufferItems = defaults.BufferItems
	}
	return cfg
}

// Validate checks the configuration for errors.
// Returns nil if the configuration is valid.
func (c *Config) Validate() error {
	if c.RefreshThreshold < 0 || c.RefreshThreshold > 1 {
		return fmt.Errorf("cache: refresh_threshold must be within [0, 1], got %v", c.RefreshThreshold)
	}

	switch c.GetMode() {
	case ModeSimple:
		r := c.GetRistretto()
		if r.MaxCost <= 0 {
			return errors.New("cache: ristretto.max_cost must be positive")
		}
		if r.NumCounters <= 0 {
			return errors.New("cache: ristretto.num_counters must be positive")
		}
	case ModeTiered:
		return validateTiers(c.GetTiers())
	case ModeDisabled:
		// No validation needed for disabled mode
	default:
		return fmt.Errorf("cache: unknown mode %q", c.Mode)
	}
	return nil
}

func validateTiers(tiers []TierConfig) error {
	for i, tier := range tiers {
		if tier.Name == "" {
			return fmt.Errorf("cache: tiers[%d].name is required", i)
		}
		if tier.Capacity <= 0 {
			return fmt.Errorf("cache: tier %q capacity must be positive", tier.Name)
		}
	}
	names := lo.Map(tiers, func(t TierConfig, _ int) string { return t.Name })
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return fmt.Errorf("cache: duplicate tier name %q", dups[0])
	}
	return nil
}

// DefaultTiers returns the hot/warm/cold tier layout.
func DefaultTiers() []TierConfig {
	return []TierConfig{
		{Name: "hot", Capacity: 100},
		{Name: "warm", Capacity: 500},
		{Name: "cold", Capacity: 2000},
	}
}

// DefaultRistrettoConfig returns a RistrettoConfig with sensible defaults.
// NumCounters: 1,000,000 (for ~100K items).
// MaxCost: 100 MB.
// BufferItems: 64.
func DefaultRistrettoConfig() RistrettoConfig {
	return RistrettoConfig{
		NumCounters: 1_000_000,
		MaxCost:     100 << 20, // 100 MB.
		BufferItems: 64,
	}
}

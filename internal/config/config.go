// Package config provides configuration loading, validation and hot reload for
// the livedata client.
package config

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/blaze-intelligence/livedata/internal/cache"
	"github.com/blaze-intelligence/livedata/internal/fetch"
	"github.com/blaze-intelligence/livedata/internal/health"
	"github.com/blaze-intelligence/livedata/internal/livedata"
)

// RuntimeConfig gives access to the current configuration under hot reload.
// Components that outlive a reload should hold a RuntimeConfig and call Get
// per operation instead of keeping a *Config.
type RuntimeConfig interface {
	Get() *Config
}

// Log level constants.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Log format constants.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatText    = "text"
	FormatPretty  = "pretty"
)

// Config is the complete livedata configuration.
type Config struct {
	Client  livedata.Config `yaml:"client" toml:"client"`
	Logging LoggingConfig   `yaml:"logging" toml:"logging"`
	Cache   cache.Config    `yaml:"cache" toml:"cache"`
	Health  health.Config   `yaml:"health" toml:"health"`
	Fetch   fetch.Config    `yaml:"fetch" toml:"fetch"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // json, console, text, pretty
	Output string `yaml:"output" toml:"output"` // stdout, stderr, or file path
	Pretty bool   `yaml:"pretty" toml:"pretty"` // enable colored console output
}

// ParseLevel converts the level string to a zerolog.Level.
// Unknown levels map to zerolog.InfoLevel.
func (l *LoggingConfig) ParseLevel() zerolog.Level {
	switch strings.ToLower(l.Level) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// IsPretty reports whether console output was requested explicitly.
func (l *LoggingConfig) IsPretty() bool {
	if l.Pretty {
		return true
	}
	switch strings.ToLower(l.Format) {
	case FormatConsole, FormatText, FormatPretty:
		return true
	default:
		return false
	}
}

// GetOutputOption returns the configured output, or None for stdout.
func (l *LoggingConfig) GetOutputOption() mo.Option[string] {
	if l.Output == "" || l.Output == "stdout" {
		return mo.None[string]()
	}
	return mo.Some(l.Output)
}

// Default returns the configuration written by "config init".
func Default() *Config {
	return &Config{
		Client: livedata.Config{
			DevBaseURL:         livedata.DefaultDevBaseURL,
			ProdBaseURL:        livedata.DefaultProdBaseURL,
			TimeoutMS:          livedata.DefaultTimeoutMS,
			PrefetchPerSecond:  livedata.DefaultPrefetchPerSecond,
			StatsLogIntervalMS: livedata.DefaultStatsLogIntervalMS,
			Routes:             lo.Assign(livedata.DefaultRoutes),
		},
		Logging: LoggingConfig{
			Level:  LevelInfo,
			Format: FormatJSON,
			Output: "stdout",
		},
		Cache: cache.Config{
			Mode:             cache.ModeTiered,
			TTLMS:            int(cache.DefaultTTL.Milliseconds()),
			StaleWindowMS:    int(cache.DefaultStaleWindow.Milliseconds()),
			RetentionMS:      int(cache.DefaultRetention.Milliseconds()),
			RefreshThreshold: cache.DefaultRefreshThreshold,
			PromoteAfter:     cache.DefaultPromoteAfter,
			Tiers:            cache.DefaultTiers(),
			Ristretto:        cache.DefaultRistrettoConfig(),
		},
		Health: health.Config{
			CircuitBreaker: health.CircuitBreakerConfig{
				FailureThreshold: health.DefaultFailureThreshold,
				OpenDurationMS:   health.DefaultOpenDurationMS,
				HalfOpenProbes:   health.DefaultHalfOpenProbes,
			},
			Probe: health.ProbeConfig{
				Path:      health.DefaultProbePath,
				TimeoutMS: health.DefaultProbeTimeoutMS,
			},
		},
		Fetch: fetch.Config{
			MaxAttempts:      fetch.DefaultMaxAttempts,
			BaseDelayMS:      fetch.DefaultBaseDelayMS,
			FetchTimeoutMS:   fetch.DefaultFetchTimeoutMS,
			PendingTimeoutMS: fetch.DefaultPendingTimeoutMS,
			SweepIntervalMS:  fetch.DefaultSweepIntervalMS,
		},
	}
}

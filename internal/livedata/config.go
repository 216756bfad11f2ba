// Package livedata is the sports-data client: domain lookups served through the
// fetch coordinator, plus health, statistics and administrative operations.
package livedata

import (
	"strings"
	"time"

	"github.com/samber/mo"
)

// Default configuration values.
const (
	DefaultDevBaseURL         = "http://localhost:8787"
	DefaultProdBaseURL        = "https://api.blaze-intelligence.com"
	DefaultTimeoutMS          = 10000
	DefaultPrefetchPerSecond  = 20
	DefaultStatsLogIntervalMS = 60000
)

// Data domains served by the client.
const (
	DomainTeam      = "team"
	DomainPlayer    = "player"
	DomainGame      = "game"
	DomainStandings = "standings"
	DomainDashboard = "dashboard"
)

// DashboardSummaryID is the discriminator of the dashboard summary payload.
const DashboardSummaryID = "summary"

// DefaultRoutes maps each domain to its API path. "{id}" is replaced with the
// escaped discriminator.
var DefaultRoutes = map[string]string{
	DomainTeam:      "/api/teams/{id}",
	DomainPlayer:    "/api/players/{id}",
	DomainGame:      "/api/games/{id}",
	DomainStandings: "/api/standings/{id}",
	DomainDashboard: "/api/dashboard/{id}",
}

// Config describes how the client reaches the API.
type Config struct {
	// Routes overrides or extends DefaultRoutes.
	Routes map[string]string `yaml:"routes" toml:"routes"`

	// BaseURL, when set, is used as is.
	BaseURL string `yaml:"base_url" toml:"base_url"`

	// Host is the hostname the base URL heuristic inspects when BaseURL is
	// empty. Empty means the machine hostname.
	Host string `yaml:"host" toml:"host"`

	// DevBaseURL is chosen for local hosts. Default: http://localhost:8787
	DevBaseURL string `yaml:"dev_base_url" toml:"dev_base_url"`

	// ProdBaseURL is chosen for every other host.
	// Default: https://api.blaze-intelligence.com
	ProdBaseURL string `yaml:"prod_base_url" toml:"prod_base_url"`

	// TimeoutMS bounds a single HTTP request. Default: 10000
	TimeoutMS int `yaml:"timeout_ms" toml:"timeout_ms"`

	// RequestsPerSecond caps outbound API requests. 0 means unlimited.
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`

	// PrefetchPerSecond caps prefetches per domain. Default: 20
	PrefetchPerSecond int `yaml:"prefetch_per_second" toml:"prefetch_per_second"`

	// StatsLogIntervalMS is the period of the statistics log line.
	// Default: 60000. Negative disables it.
	StatsLogIntervalMS int `yaml:"stats_log_interval_ms" toml:"stats_log_interval_ms"`
}

// GetBaseURL returns the explicit base URL, if any.
func (c *Config) GetBaseURL() mo.Option[string] {
	if c.BaseURL == "" {
		return mo.None[string]()
	}
	return mo.Some(strings.TrimRight(c.BaseURL, "/"))
}

// GetDevBaseURL returns the development base URL.
func (c *Config) GetDevBaseURL() string {
	if c.DevBaseURL == "" {
		return DefaultDevBaseURL
	}
	return strings.TrimRight(c.DevBaseURL, "/")
}

// GetProdBaseURL returns the production base URL.
func (c *Config) GetProdBaseURL() string {
	if c.ProdBaseURL == "" {
		return DefaultProdBaseURL
	}
	return strings.TrimRight(c.ProdBaseURL, "/")
}

// GetTimeout returns the HTTP request timeout, default 10s.
func (c *Config) GetTimeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return time.Duration(DefaultTimeoutMS) * time.Millisecond
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// GetPrefetchPerSecond returns the per-domain prefetch rate, default 20.
func (c *Config) GetPrefetchPerSecond() int {
	if c.PrefetchPerSecond <= 0 {
		return DefaultPrefetchPerSecond
	}
	return c.PrefetchPerSecond
}

// GetStatsLogInterval returns the stats log period. None disables the log.
func (c *Config) GetStatsLogInterval() mo.Option[time.Duration] {
	switch {
	case c.StatsLogIntervalMS < 0:
		return mo.None[time.Duration]()
	case c.StatsLogIntervalMS == 0:
		return mo.Some(time.Duration(DefaultStatsLogIntervalMS) * time.Millisecond)
	default:
		return mo.Some(time.Duration(c.StatsLogIntervalMS) * time.Millisecond)
	}
}

// Route returns the path template for domain. Unknown domains map to
// "/api/{domain}/{id}".
func (c *Config) Route(domain string) string {
	if r, ok := c.Routes[domain]; ok && r != "" {
		return r
	}
	if r, ok := DefaultRoutes[domain]; ok {
		return r
	}
	return "/api/" + domain + "/{id}"
}

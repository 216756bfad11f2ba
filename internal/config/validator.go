package config

import (
	"net/url"
	"strings"
)

// Valid logging levels.
var validLogLevels = map[string]bool{
	"":         true, // Empty defaults to info
	LevelDebug: true,
	LevelInfo:  true,
	LevelWarn:  true,
	LevelError: true,
}

// Valid logging formats.
var validLogFormats = map[string]bool{
	"":            true, // Empty defaults to json
	FormatJSON:    true,
	FormatConsole: true,
	FormatText:    true, // Alias for console
	FormatPretty:  true,
}

// Validate checks the configuration for errors.
// It returns a ValidationError listing every problem found, or nil.
func (c *Config) Validate() error {
	errs := &ValidationError{}

	validateClient(c, errs)
	validateCache(c, errs)
	validateHealth(c, errs)
	validateFetch(c, errs)
	validateLogging(c, errs)

	return errs.orNil()
}

func validateClient(c *Config, errs *ValidationError) {
	urls := []struct{ field, raw string }{
		{"client.base_url", c.Client.BaseURL},
		{"client.dev_base_url", c.Client.DevBaseURL},
		{"client.prod_base_url", c.Client.ProdBaseURL},
	}
	for _, u := range urls {
		if u.raw != "" {
			validateBaseURL(u.field, u.raw, errs)
		}
	}

	if c.Client.TimeoutMS < 0 {
		errs.Add("client.timeout_ms must be >= 0")
	}
	if c.Client.RequestsPerSecond < 0 {
		errs.Add("client.requests_per_second must be >= 0")
	}
	if c.Client.PrefetchPerSecond < 0 {
		errs.Add("client.prefetch_per_second must be >= 0")
	}

	for domain, route := range c.Client.Routes {
		switch {
		case domain == "" || strings.Contains(domain, "-"):
			errs.Addf("client.routes key %q must be non-empty and must not contain '-'", domain)
		case !strings.HasPrefix(route, "/"):
			errs.Addf("client.routes[%s] must start with '/' (got %q)", domain, route)
		case !strings.Contains(route, "{id}"):
			errs.Addf("client.routes[%s] must contain {id} (got %q)", domain, route)
		}
	}
}

func validateBaseURL(field, raw string, errs *ValidationError) {
	u, err := url.Parse(raw)
	if err != nil {
		errs.Addf("%s is not a valid URL (got %q)", field, raw)
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		errs.Addf("%s must use http or https (got %q)", field, raw)
	}
	if u.Host == "" {
		errs.Addf("%s must include a host (got %q)", field, raw)
	}
}

func validateCache(c *Config, errs *ValidationError) {
	if err := c.Cache.Validate(); err != nil {
		errs.Add(err.Error())
	}
	if c.Cache.TTLMS < 0 {
		errs.Add("cache.ttl_ms must be >= 0")
	}
	if c.Cache.StaleWindowMS < 0 {
		errs.Add("cache.stale_window_ms must be >= 0")
	}
	if c.Cache.RetentionMS < 0 {
		errs.Add("cache.retention_ms must be >= 0")
	}
}

func validateHealth(c *Config, errs *ValidationError) {
	cb := c.Health.CircuitBreaker
	if cb.FailureThreshold < 0 {
		errs.Add("health.circuit_breaker.failure_threshold must be >= 0")
	}
	if cb.OpenDurationMS < 0 {
		errs.Add("health.circuit_breaker.open_duration_ms must be >= 0")
	}
	if cb.HalfOpenProbes < 0 {
		errs.Add("health.circuit_breaker.half_open_probes must be >= 0")
	}

	if p := c.Health.Probe.Path; p != "" && !strings.HasPrefix(p, "/") {
		errs.Addf("health.probe.path must start with '/' (got %q)", p)
	}
	if c.Health.Probe.TimeoutMS < 0 {
		errs.Add("health.probe.timeout_ms must be >= 0")
	}
}

func validateFetch(c *Config, errs *ValidationError) {
	f := c.Fetch
	if f.MaxAttempts < 0 {
		errs.Add("fetch.max_attempts must be >= 0")
	}
	if f.BaseDelayMS < 0 {
		errs.Add("fetch.base_delay_ms must be >= 0")
	}
	if f.FetchTimeoutMS < 0 {
		errs.Add("fetch.fetch_timeout_ms must be >= 0")
	}
	if f.PendingTimeoutMS < 0 {
		errs.Add("fetch.pending_timeout_ms must be >= 0")
	}
	if f.SweepIntervalMS < 0 {
		errs.Add("fetch.sweep_interval_ms must be >= 0")
	}
}

func validateLogging(c *Config, errs *ValidationError) {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs.Addf("logging.level is invalid (got %q, valid: debug, info, warn, error)",
			c.Logging.Level)
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		errs.Addf("logging.format is invalid (got %q, valid: json, console, text, pretty)",
			c.Logging.Format)
	}
}

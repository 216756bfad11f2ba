package livedata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/blaze-intelligence/livedata/internal/cache"
	"github.com/blaze-intelligence/livedata/internal/health"
)

// HealthStatus is the API health endpoint's answer. It is always populated;
// failures are reported through Healthy and Error.
type HealthStatus struct {
	CheckedAt  time.Time `json:"checked_at"`
	URL        string    `json:"url"`
	Status     string    `json:"status,omitempty"`
	Service    string    `json:"service,omitempty"`
	Version    string    `json:"version,omitempty"`
	Error      string    `json:"error,omitempty"`
	LatencyMS  int64     `json:"latency_ms"`
	StatusCode int       `json:"status_code,omitempty"`
	Healthy    bool      `json:"healthy"`
}

// CheckResult is the outcome of one diagnostic check.
type CheckResult struct {
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
	Healthy bool   `json:"healthy"`
}

// BreakerCheck reports circuit breaker state. It passes when no breaker is open.
type BreakerCheck struct {
	Open     []string          `json:"open,omitempty"`
	Breakers []health.Snapshot `json:"breakers"`
	Healthy  bool              `json:"healthy"`
}

// HealthReport aggregates the caching, API and circuit breaker checks.
type HealthReport struct {
	Timestamp       time.Time      `json:"timestamp"`
	Overall         health.Overall `json:"overall"`
	API             HealthStatus   `json:"api"`
	CircuitBreakers BreakerCheck   `json:"circuit_breakers"`
	Caching         CheckResult    `json:"caching"`
}

// GetHealthStatus probes the API health endpoint. It never fails.
func (c *Client) GetHealthStatus(ctx context.Context) HealthStatus {
	status := HealthStatus{
		CheckedAt: time.Now(),
		URL:       c.probe.URL(),
	}

	res, err := c.probe.Check(ctx)
	if res != nil {
		status.Status = res.Status
		status.Service = res.Service
		status.Version = res.Version
		status.StatusCode = res.StatusCode
		status.LatencyMS = res.Latency.Milliseconds()
	}
	if err != nil {
		status.Error = err.Error()
		c.log.Warn().
			Str("url", status.URL).
			Err(err).
			Msg("api health check failed")
		return status
	}

	status.Healthy = true
	return status
}

// RunHealthCheck runs the three diagnostic checks. Overall is healthy when all
// pass, degraded when two pass and unhealthy otherwise.
func (c *Client) RunHealthCheck(ctx context.Context) HealthReport {
	report := HealthReport{
		Timestamp:       time.Now(),
		Caching:         c.checkCache(ctx),
		API:             c.GetHealthStatus(ctx),
		CircuitBreakers: c.checkBreakers(),
	}
	report.Overall = health.Evaluate(report.Caching.Healthy, report.API.Healthy, report.CircuitBreakers.Healthy)

	c.log.Info().
		Str("overall", string(report.Overall)).
		Bool("caching", report.Caching.Healthy).
		Bool("api", report.API.Healthy).
		Bool("circuit_breakers", report.CircuitBreakers.Healthy).
		Msg("health check completed")

	return report
}

// checkCache round-trips a synthetic entry through the cache.
func (c *Client) checkCache(ctx context.Context) CheckResult {
	id := uuid.NewString()
	key := "healthcheck-" + id
	want := []byte(fmt.Sprintf(`{"probe":%q}`, id))

	if err := c.cache.Set(ctx, key, want, cache.WithPriority(cache.PriorityLow)); err != nil {
		return CheckResult{Error: fmt.Sprintf("write: %v", err)}
	}
	defer func() {
		if err := c.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
			c.log.Debug().Str("key", key).Err(err).Msg("health check cleanup failed")
		}
	}()

	got, err := c.cache.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		return CheckResult{Error: "read: written entry not found"}
	case err != nil:
		return CheckResult{Error: fmt.Sprintf("read: %v", err)}
	case !bytes.Equal(got.Value, want):
		return CheckResult{Error: "read: value mismatch"}
	}
	return CheckResult{Healthy: true, Detail: string(c.cache.Stats().Mode)}
}

func (c *Client) checkBreakers() BreakerCheck {
	open := lo.Keys(lo.PickByValues(c.tracker.AllStates(), []health.State{health.StateOpen}))
	sort.Strings(open)
	return BreakerCheck{
		Open:     open,
		Breakers: c.tracker.Snapshots(),
		Healthy:  len(open) == 0,
	}
}

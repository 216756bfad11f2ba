package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const maxProbeBody = 64 << 10

// ProbeResult is what the API health endpoint reported.
type ProbeResult struct {
	Status     string        `json:"status,omitempty"`
	Service    string        `json:"service,omitempty"`
	Version    string        `json:"version,omitempty"`
	Timestamp  string        `json:"timestamp,omitempty"`
	Latency    time.Duration `json:"latency"`
	StatusCode int           `json:"status_code"`
}

// HTTPHealthCheck probes the API health endpoint with a GET request.
// The endpoint is healthy when it answers 2xx and its JSON "status" field is
// absent or one of healthy, ok, up, pass.
type HTTPHealthCheck struct {
	client *http.Client
	url    string
}

// NewHTTPHealthCheck creates an HTTP health check for url.
func NewHTTPHealthCheck(url string, client *http.Client) *HTTPHealthCheck {
	if client == nil {
		client = &http.Client{Timeout: time.Duration(DefaultProbeTimeoutMS) * time.Millisecond}
	}
	return &HTTPHealthCheck{url: url, client: client}
}

// URL returns the probed URL.
func (h *HTTPHealthCheck) URL() string {
	return h.url
}

// Check performs the probe. A non-nil result is returned whenever the server
// answered, even if the answer was unhealthy.
func (h *HTTPHealthCheck) Check(ctx context.Context) (*ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health check request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck // body fully read below
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	result := &ProbeResult{
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
	if err != nil {
		return result, fmt.Errorf("read health body: %w", err)
	}

	if gjson.ValidBytes(body) {
		fields := gjson.GetManyBytes(body, "status", "service", "version", "timestamp")
		result.Status = fields[0].String()
		result.Service = fields[1].String()
		result.Version = fields[2].String()
		result.Timestamp = fields[3].String()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, fmt.Errorf("%w: unhealthy status code %d", ErrProbeFailed, resp.StatusCode)
	}
	if !isHealthyStatus(result.Status) {
		return result, fmt.Errorf("%w: reported status %q", ErrProbeFailed, result.Status)
	}
	return result, nil
}

func isHealthyStatus(status string) bool {
	switch strings.ToLower(status) {
	case "", "healthy", "ok", "up", "pass":
		return true
	default:
		return false
	}
}

package livedata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blaze-intelligence/livedata/internal/fetch"
	"github.com/blaze-intelligence/livedata/internal/ratelimit"
)

const maxResponseBody = 8 << 20

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	URL        string
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("livedata: GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("livedata: GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// httpFetcher issues rate-limited GET requests against the API.
type httpFetcher struct {
	client  *http.Client
	limiter ratelimit.RateLimiter
	log     *zerolog.Logger
	baseURL string
}

func newHTTPFetcher(baseURL string, client *http.Client, rps float64, log *zerolog.Logger) *httpFetcher {
	return &httpFetcher{
		client:  client,
		limiter: ratelimit.NewTokenBucketLimiter(rps),
		log:     log,
		baseURL: baseURL,
	}
}

// url builds the request URL for a route template and discriminator.
func (f *httpFetcher) url(route, id string) string {
	return f.baseURL + strings.ReplaceAll(route, "{id}", url.PathEscape(id))
}

// fetcher returns a fetch.Fetcher that GETs target.
func (f *httpFetcher) fetcher(target string) fetch.Fetcher {
	return func(ctx context.Context) ([]byte, error) {
		return f.get(ctx, target)
	}
}

func (f *httpFetcher) get(ctx context.Context, target string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("livedata: rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("livedata: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("livedata: GET %s: %w", target, err)
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck // body fully read below
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("livedata: read %s: %w", target, err)
	}

	f.logger(ctx).Debug().
		Str("url", target).
		Int("status", resp.StatusCode).
		Int("size", len(body)).
		Msg("api response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	return body, nil
}

// logger prefers the per-call logger carried by ctx.
func (f *httpFetcher) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != zerolog.DefaultContextLogger && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return f.log
}

func snippet(body []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

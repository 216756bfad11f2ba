package livedata_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaze-intelligence/livedata/internal/cache"
	"github.com/blaze-intelligence/livedata/internal/fetch"
	"github.com/blaze-intelligence/livedata/internal/health"
	"github.com/blaze-intelligence/livedata/internal/livedata"
	"github.com/blaze-intelligence/livedata/internal/logging"
)

// fakeAPI serves JSON for every path and counts requests per path.
type fakeAPI struct {
	srv     *httptest.Server
	hits    map[string]*atomic.Int32
	failing atomic.Bool
	healthy atomic.Bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{hits: map[string]*atomic.Int32{
		"/api/teams/stl":         {},
		"/api/players/7":         {},
		"/api/games/42":          {},
		"/api/standings/nl":      {},
		"/api/dashboard/summary": {},
		"/api/venues/busch":      {},
		"/api/teams/a%2Fb":       {},
	}}
	api.healthy.Store(true)

	api.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/healthz" {
			if !api.healthy.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"down"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"healthy","service":"blaze-api","version":"2.1.0"}`))
			return
		}

		if c, ok := api.hits[r.URL.EscapedPath()]; ok {
			c.Add(1)
		}
		if api.failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`upstream unavailable`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"path": r.URL.EscapedPath()})
	}))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) count(path string) int32 {
	return a.hits[path].Load()
}

func newTestClient(t *testing.T, api *fakeAPI, mutate func(*livedata.Options)) *livedata.Client {
	t.Helper()
	nop := zerolog.Nop()
	opts := livedata.Options{
		Config:      livedata.Config{BaseURL: api.srv.URL, StatsLogIntervalMS: -1},
		CacheConfig: &cache.Config{Mode: cache.ModeTiered},
		Fetch:       fetch.Config{MaxAttempts: 1, BaseDelayMS: 1},
		Health: health.Config{
			CircuitBreaker: health.CircuitBreakerConfig{FailureThreshold: 2, OpenDurationMS: 200},
		},
		Logger: &nop,
	}
	if mutate != nil {
		mutate(&opts)
	}

	client, err := livedata.New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestDomainMethodsUseRoutes(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	client := newTestClient(t, api, nil)
	ctx := context.Background()

	tests := []struct {
		call func() (*fetch.Result, error)
		name string
		path string
	}{
		{name: "team", path: "/api/teams/stl", call: func() (*fetch.Result, error) { return client.GetTeam(ctx, "stl") }},
		{name: "player", path: "/api/players/7", call: func() (*fetch.Result, error) { return client.GetPlayer(ctx, "7") }},
		{name: "game", path: "/api/games/42", call: func() (*fetch.Result, error) { return client.GetGame(ctx, "42") }},
		{name: "standings", path: "/api/standings/nl", call: func() (*fetch.Result, error) { return client.GetStandings(ctx, "nl") }},
		{name: "dashboard", path: "/api/dashboard/summary", call: func() (*fetch.Result, error) { return client.GetDashboardSummary(ctx) }},
		{name: "generic", path: "/api/venues/busch", call: func() (*fetch.Result, error) { return client.Get(ctx, "venues", "busch") }},
		{name: "escaped id", path: "/api/teams/a%2Fb", call: func() (*fetch.Result, error) { return client.GetTeam(ctx, "a/b") }},
	}

	for _, tt := range tests {
		res, err := tt.call()
		require.NoError(t, err, tt.name)
		assert.JSONEq(t, `{"path":"`+tt.path+`"}`, string(res.Data), tt.name)
		assert.False(t, res.FromCache, tt.name)
		assert.Equal(t, int32(1), api.count(tt.path), tt.name)
	}
}

func TestSecondCallServedFromCache(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	client := newTestClient(t, api, nil)
	ctx := context.Background()

	_, err := client.GetTeam(ctx, "stl")
	require.NoError(t, err)

	res, err := client.GetTeam(ctx, "stl")
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.True(t, res.Fresh)
	assert.Equal(t, int32(1), api.count("/api/teams/stl"))

	merged, err := res.JSON()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"path":"/api/teams/stl","fromCache":true,"fresh":true,"stale":false,"cacheSource":"warm"}`,
		string(merged))
}

func TestDashboardCachedInHotTier(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	client := newTestClient(t, api, nil)
	ctx := context.Background()

	_, err := client.GetDashboardSummary(ctx)
	require.NoError(t, err)

	res, err := client.GetDashboardSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hot", res.CacheSource)
}

func TestNon2xxIsStatusError(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	api.failing.Store(true)
	client := newTestClient(t, api, nil)

	_, err := client.GetGame(context.Background(), "42")
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrExhaustedFallback)

	var statusErr *livedata.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream unavailable", statusErr.Body)
}

func TestBreakerOpensPerDomain(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	api.failing.Store(true)
	client := newTestClient(t, api, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.GetTeam(ctx, "stl")
		require.Error(t, err)
	}

	_, err := client.GetTeam(ctx, "stl")
	require.ErrorIs(t, err, health.ErrCircuitOpen)
	assert.Equal(t, int32(2), api.count("/api/teams/stl"))

	stats := client.GetPerformanceStats()
	assert.Equal(t, uint64(1), stats.CircuitBreakerTrips)
	require.Len(t, stats.CircuitBreakers, 1)
	assert.Equal(t, livedata.DomainTeam, stats.CircuitBreakers[0].Name)
	assert.Equal(t, "open", stats.CircuitBreakers[0].State)

	assert.True(t, client.ResetCircuitBreaker(livedata.DomainTeam))
	assert.False(t, client.ResetCircuitBreaker("unknown"))

	api.failing.Store(false)
	res, err := client.GetTeam(ctx, "stl")
	require.NoError(t, err)
	assert.True(t, res.Fresh)
}

func TestPerformanceStatsRates(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	client := newTestClient(t, api, nil)
	ctx := context.Background()

	empty := client.GetPerformanceStats()
	assert.Zero(t, empty.SuccessRate)
	assert.Zero(t, empty.CacheHitRate)

	for i := 0; i < 4; i++ {
		_, err := client.GetPlayer(ctx, "7")
		require.NoError(t, err)
	}

	stats := client.GetPerformanceStats()
	assert.Equal(t, uint64(4), stats.Total)
	assert.Equal(t, uint64(1), stats.Successful)
	assert.Equal(t, uint64(3), stats.Cached)
	assert.InDelta(t, 25.0, stats.SuccessRate, 0.001)
	assert.InDelta(t, 75.0, stats.CacheHitRate, 0.001)
	assert.Zero(t, stats.PendingRequests)
	assert.True(t, stats.RateLimit.Unlimited)
}

func TestPerformanceStatsReportRateLimit(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	client := newTestClient(t, api, func(o *livedata.Options) {
		o.Config.RequestsPerSecond = 5
	})

	_, err := client.GetTeam(context.Background(), "stl")
	require.NoError(t, err)

	usage := client.GetPerformanceStats().RateLimit
	assert.False(t, usage.Unlimited)
	assert.InDelta(t, 5.0, usage.RequestsPerSecond, 0.001)
	assert.Equal(t, 5, usage.Burst)
	assert.LessOrEqual(t, usage.Available, 4)
}

func TestClearCacheForcesRefetch(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	client := newTestClient(t, api, nil)
	ctx := context.Background()

	_, err := client.GetStandings(ctx, "nl")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), client.GetCacheStats().KeyCount)

	require.NoError(t, client.ClearCache(ctx))
	assert.Zero(t, client.GetCacheStats().KeyCount)

	res, err := client.GetStandings(ctx, "nl")
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, int32(2), api.count("/api/standings/nl"))
}

func TestGetRejectsInvalidKey(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	client := newTestClient(t, api, nil)

	_, err := client.Get(context.Background(), "box-score", "1")
	require.ErrorIs(t, err, fetch.ErrInvalidKey)

	_, err = client.GetTeam(context.Background(), "")
	require.ErrorIs(t, err, fetch.ErrInvalidKey)
}

func TestRequestRateLimit(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	client := newTestClient(t, api, func(o *livedata.Options) {
		o.Config.RequestsPerSecond = 20
		o.CacheConfig = &cache.Config{Mode: cache.ModeDisabled}
	})
	ctx := context.Background()

	start := time.Now()
	// Burst is 20; the next 5 requests wait for tokens at 20/s.
	for i := 0; i < 25; i++ {
		_, err := client.GetTeam(ctx, "stl")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestSharedCacheLeftOpen(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)

	shared, err := cache.New(context.Background(), &cache.Config{Mode: cache.ModeSimple})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shared.Close() })

	client := newTestClient(t, api, func(o *livedata.Options) { o.Cache = shared })
	_, err = client.GetTeam(context.Background(), "stl")
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	lookup, err := shared.Get(context.Background(), "team-stl")
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"/api/teams/stl"}`, string(lookup.Value))
}

func TestCloseStopsStatsLoop(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	client := newTestClient(t, api, func(o *livedata.Options) { o.Config.StatsLogIntervalMS = 5 })

	time.Sleep(20 * time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- client.Close() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}

	_, err := client.GetTeam(context.Background(), "stl")
	require.ErrorIs(t, err, livedata.ErrClosed)
}

func TestGetLogsCallID(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t)
	client := newTestClient(t, api, nil)

	var buf bytes.Buffer
	ctx := logging.WithCallID(context.Background(), zerolog.New(&buf), "call-42")

	_, err := client.GetTeam(ctx, "stl")
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var sawResponse, sawFetch bool
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		assert.Equal(t, "call-42", entry["call_id"])
		switch entry["message"] {
		case "api response":
			sawResponse = true
		case "fetch succeeded":
			sawFetch = true
		}
	}
	assert.True(t, sawResponse, "expected the HTTP fetcher to log with the call ID")
	assert.True(t, sawFetch, "expected the coordinator to log with the call ID")
}

package livedata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/blaze-intelligence/livedata/internal/cache"
	"github.com/blaze-intelligence/livedata/internal/fetch"
	"github.com/blaze-intelligence/livedata/internal/health"
)

// ErrClosed is returned by lookups on a closed Client.
var ErrClosed = errors.New("livedata: client closed")

// Options configures New.
type Options struct {
	// Cache is used as is when set and left open by Close. When nil, New
	// creates one from CacheConfig and Close closes it.
	Cache       cache.Cache
	CacheConfig *cache.Config

	// Tracker is used as is when set; otherwise one is built from Health.
	Tracker *health.Tracker

	HTTPClient *http.Client
	Logger     *zerolog.Logger
	Health     health.Config
	Fetch      fetch.Config
	Config     Config
}

// Client serves sports-data lookups through a cache, deduplicating concurrent
// requests and protecting each domain's endpoint with a circuit breaker.
type Client struct {
	cache     cache.Cache
	tracker   *health.Tracker
	coord     *fetch.Coordinator
	api       *httpFetcher
	probe     *health.HTTPHealthCheck
	cancel    context.CancelFunc
	log       zerolog.Logger
	baseURL   string
	cfg       Config
	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    atomic.Bool
	ownsCache bool
}

// New builds a Client and starts its background maintenance: the stale
// pending-request sweep and the periodic stats log. Call Close to stop them.
func New(ctx context.Context, opts Options) (*Client, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "livedata").Logger()
	}

	c := &Client{
		cache:   opts.Cache,
		tracker: opts.Tracker,
		log:     log,
		cfg:     opts.Config,
	}

	if c.cache == nil {
		cacheCfg := opts.CacheConfig
		if cacheCfg == nil {
			cacheCfg = &cache.Config{}
		}
		created, err := cache.New(ctx, cacheCfg, cache.WithLogger(opts.Logger))
		if err != nil {
			return nil, fmt.Errorf("livedata: create cache: %w", err)
		}
		c.cache = created
		c.ownsCache = true
	}
	if c.tracker == nil {
		c.tracker = health.NewTracker(opts.Health.CircuitBreaker, opts.Logger)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.cfg.GetTimeout()}
	}

	c.baseURL = ResolveBaseURL(&c.cfg)
	c.api = newHTTPFetcher(c.baseURL, httpClient, c.cfg.RequestsPerSecond, &c.log)
	c.probe = health.NewHTTPHealthCheck(
		c.baseURL+opts.Health.Probe.GetPath(),
		&http.Client{Transport: httpClient.Transport, Timeout: opts.Health.Probe.GetTimeout()},
	)

	c.coord = fetch.NewCoordinator(c.cache, c.tracker, opts.Fetch, opts.Logger)
	c.coord.Start()

	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	if interval, ok := c.cfg.GetStatsLogInterval().Get(); ok {
		c.wg.Add(1)
		go c.statsLoop(loopCtx, interval)
	}

	c.log.Info().
		Str("base_url", c.baseURL).
		Str("cache_mode", string(c.cache.Stats().Mode)).
		Msg("live data client ready")

	return c, nil
}

// BaseURL returns the API base URL in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetTeam returns the team payload for id.
func (c *Client) GetTeam(ctx context.Context, id string) (*fetch.Result, error) {
	return c.Get(ctx, DomainTeam, id)
}

// GetPlayer returns the player payload for id.
func (c *Client) GetPlayer(ctx context.Context, id string) (*fetch.Result, error) {
	return c.Get(ctx, DomainPlayer, id)
}

// GetGame returns the game payload for id.
func (c *Client) GetGame(ctx context.Context, id string) (*fetch.Result, error) {
	return c.Get(ctx, DomainGame, id)
}

// GetStandings returns the standings payload for a league.
func (c *Client) GetStandings(ctx context.Context, league string) (*fetch.Result, error) {
	return c.Get(ctx, DomainStandings, league)
}

// GetDashboardSummary returns the aggregate dashboard payload. It is cached
// with high priority.
func (c *Client) GetDashboardSummary(ctx context.Context) (*fetch.Result, error) {
	return c.Get(ctx, DomainDashboard, DashboardSummaryID, fetch.WithPriority(cache.PriorityHigh))
}

// Get returns the payload for any domain and discriminator. The cache key is
// "{domain}-{id}" and the fetch is a GET of the domain's route.
func (c *Client) Get(ctx context.Context, domain, id string, opts ...fetch.FetchOption) (*fetch.Result, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	key := fetch.NewKey(domain, id)
	if err := key.Validate(); err != nil {
		return nil, err
	}
	target := c.api.url(c.cfg.Route(domain), id)
	return c.coord.Fetch(ctx, key, c.api.fetcher(target), opts...)
}

// Close stops background maintenance and closes the cache if the client
// created it. Close is idempotent.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.cancel()
		c.wg.Wait()
		c.coord.Stop()
		if c.ownsCache {
			err = c.cache.Close()
		}
		c.log.Info().Msg("live data client closed")
	})
	return err
}

func (c *Client) statsLoop(ctx context.Context, interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.logStats()
		}
	}
}

func (c *Client) logStats() {
	perf := c.GetPerformanceStats()
	cs := c.cache.Stats()
	c.log.Info().
		Uint64("total", perf.Total).
		Uint64("successful", perf.Successful).
		Uint64("failed", perf.Failed).
		Uint64("cached", perf.Cached).
		Uint64("circuit_breaker_trips", perf.CircuitBreakerTrips).
		Float64("success_rate", perf.SuccessRate).
		Float64("cache_hit_rate", perf.CacheHitRate).
		Int("pending", perf.PendingRequests).
		Uint64("cache_keys", cs.KeyCount).
		Msg("live data stats")
}

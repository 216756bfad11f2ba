package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/blaze-intelligence/livedata/internal/cache"
	"github.com/blaze-intelligence/livedata/internal/health"
)

// Fetcher produces a JSON payload.
type Fetcher func(ctx context.Context) ([]byte, error)

// FetchOption configures a single Fetch call.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	ttl      time.Duration
	priority cache.Priority
}

// WithPriority sets the cache placement priority for a fetched payload.
func WithPriority(p cache.Priority) FetchOption {
	return func(o *fetchOptions) {
		o.priority = p
	}
}

// WithTTL overrides the cache TTL for a fetched payload.
func WithTTL(ttl time.Duration) FetchOption {
	return func(o *fetchOptions) {
		o.ttl = ttl
	}
}

type pendingRequest struct {
	startedAt time.Time
	// demanded is set once a caller waits on the flight. Guarded by
	// Coordinator.mu.
	demanded bool
}

// Coordinator answers fetches from cache when it can and otherwise runs one
// breaker-guarded, retried fetch per key no matter how many callers ask.
//
// A key is in pending exactly while its singleflight call is registered in
// group; both are changed together under mu.
type Coordinator struct {
	ctx       context.Context
	cache     cache.Cache
	tracker   *health.Tracker
	pending   map[string]*pendingRequest
	cancel    context.CancelFunc
	log       zerolog.Logger
	group     singleflight.Group
	stats     Stats
	cfg       Config
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
	mu        sync.Mutex
	stopped   bool
}

// NewCoordinator creates a Coordinator. Call Start to run the pending sweep.
func NewCoordinator(c cache.Cache, tracker *health.Tracker, cfg Config, logger *zerolog.Logger) *Coordinator {
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "fetch").Logger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:     ctx,
		cache:   c,
		tracker: tracker,
		pending: make(map[string]*pendingRequest),
		cancel:  cancel,
		log:     log,
		cfg:     cfg,
	}
}

// Fetch returns the payload for key.
//
// Order of resolution: join an in-flight fetch for the key; serve a cached
// value (triggering a background refresh when the cache asks for one); run
// fetcher through the key's breaker with retries; on failure serve any cached
// value as stale; otherwise return *ExhaustedFallbackError.
//
// Successful and Failed count flights that at least one caller waited on, so
// a background refresh joined by a caller is counted once.
func (c *Coordinator) Fetch(ctx context.Context, key Key, fetcher Fetcher, opts ...FetchOption) (*Result, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.stats.total.Add(1)

	if ch, ok := c.join(ctx, key, fetcher, o); ok {
		return c.wait(ctx, ch)
	}

	if res, ok := c.fromCache(ctx, key, fetcher, o); ok {
		c.stats.cached.Add(1)
		return res, nil
	}

	c.mu.Lock()
	ch := c.launchLocked(ctx, key, fetcher, o, true)
	c.mu.Unlock()
	return c.wait(ctx, ch)
}

// Start launches the pending-request sweep. It is idempotent.
func (c *Coordinator) Start() {
	c.startOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.stopped {
			return
		}
		c.wg.Add(1)
		go c.sweepLoop()
	})
}

// Stop cancels in-flight work, stops the sweep and waits for background
// refreshes. It is idempotent.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		c.mu.Unlock()

		c.cancel()
		c.wg.Wait()
		c.log.Debug().Msg("fetch coordinator stopped")
	})
}

// Stats returns a snapshot of the coordinator counters.
func (c *Coordinator) Stats() StatsSnapshot {
	return c.stats.Snapshot()
}

// PendingCount returns the number of in-flight keys, background refreshes
// included.
func (c *Coordinator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// logger returns the caller's context logger tagged with the component, or
// the coordinator logger when ctx carries none.
func (c *Coordinator) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l == zerolog.DefaultContextLogger || l.GetLevel() == zerolog.Disabled {
		return &c.log
	}
	tagged := l.With().Str("component", "fetch").Logger()
	return &tagged
}

func (c *Coordinator) fromCache(ctx context.Context, key Key, fetcher Fetcher, o fetchOptions) (*Result, bool) {
	lookup, err := c.cache.Get(ctx, key.String())
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.logger(ctx).Warn().Str("key", key.String()).Err(err).Msg("cache read failed, fetching")
		}
		return nil, false
	}

	if lookup.NeedsRefresh {
		c.refresh(ctx, key, fetcher, o)
	}

	return &Result{
		FetchedAt:   lookup.StoredAt,
		CacheSource: lookup.Source,
		Data:        lookup.Value,
		FromCache:   true,
		Fresh:       lookup.Fresh,
		Stale:       lookup.Stale,
	}, true
}

// join attaches the caller to key's in-flight call, if there is one.
func (c *Coordinator) join(ctx context.Context, key Key, fetcher Fetcher, o fetchOptions) (<-chan singleflight.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[key.String()]; !ok {
		return nil, false
	}
	return c.launchLocked(ctx, key, fetcher, o, true), true
}

// launchLocked joins key's in-flight call or starts a new one. demand marks
// the flight as awaited by a caller. c.mu must be held.
func (c *Coordinator) launchLocked(ctx context.Context, key Key, fetcher Fetcher, o fetchOptions, demand bool) <-chan singleflight.Result {
	id := key.String()
	req, ok := c.pending[id]
	if !ok {
		req = &pendingRequest{startedAt: time.Now()}
		c.pending[id] = req
	}
	req.demanded = req.demanded || demand
	return c.group.DoChan(id, c.flight(ctx, key, fetcher, o, req))
}

// flight returns the singleflight body for key. The fetch runs on a context
// detached from the caller, bounded by the fetch timeout and by Stop.
func (c *Coordinator) flight(parent context.Context, key Key, fetcher Fetcher, o fetchOptions, req *pendingRequest) func() (any, error) {
	return func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.cfg.GetFetchTimeout())
		defer cancel()
		stop := context.AfterFunc(c.ctx, cancel)
		defer stop()

		breaker := c.tracker.GetOrCreateCircuit(key.Endpoint())
		var data []byte
		cause := breaker.Execute(func() error {
			var fetchErr error
			data, fetchErr = c.retry(ctx, key, fetcher)
			return fetchErr
		})

		// The cache is written before the key leaves pending, so a caller
		// that no longer sees the flight finds its value.
		res, err := c.resolve(ctx, key, data, cause, o)
		c.settle(key.String(), req, cause)
		return res, err
	}
}

// resolve stores a fetched payload or falls back to any retained value.
// Cache access ignores ctx cancellation: a flight that timed out must still
// be able to serve its stale fallback.
func (c *Coordinator) resolve(ctx context.Context, key Key, data []byte, cause error, o fetchOptions) (*Result, error) {
	id := key.String()
	log := c.logger(ctx)
	cacheCtx := context.WithoutCancel(ctx)

	if cause == nil {
		setOpts := []cache.SetOption{cache.WithPriority(o.priority)}
		if o.ttl > 0 {
			setOpts = append(setOpts, cache.WithTTL(o.ttl))
		}
		if err := c.cache.Set(cacheCtx, id, data, setOpts...); err != nil {
			log.Warn().Str("key", id).Err(err).Msg("cache write failed")
		}
		log.Debug().Str("key", id).Int("size", len(data)).Msg("fetch succeeded")
		return &Result{FetchedAt: time.Now(), Data: data, Fresh: true}, nil
	}

	log.Warn().
		Str("key", id).
		Str("endpoint", key.Endpoint()).
		Bool("circuit_open", errors.Is(cause, health.ErrCircuitOpen)).
		Err(cause).
		Msg("fetch failed")

	lookup, err := c.cache.Peek(cacheCtx, id)
	if err != nil {
		return nil, &ExhaustedFallbackError{Key: key, Err: cause}
	}

	log.Info().
		Str("key", id).
		Time("stored_at", lookup.StoredAt).
		Msg("serving stale fallback")
	return &Result{
		FetchedAt:   lookup.StoredAt,
		CacheSource: lookup.Source,
		Error:       cause.Error(),
		Data:        lookup.Value,
		FromCache:   true,
		Stale:       true,
	}, nil
}

// settle removes a finished flight from pending and counts its outcome if a
// caller waited on it.
func (c *Coordinator) settle(id string, req *pendingRequest, cause error) {
	c.mu.Lock()
	demanded := req.demanded
	if c.pending[id] == req {
		delete(c.pending, id)
		c.group.Forget(id)
	}
	c.mu.Unlock()

	if !demanded {
		return
	}
	if cause == nil {
		c.stats.successful.Add(1)
		return
	}
	c.stats.failed.Add(1)
	if errors.Is(cause, health.ErrCircuitOpen) {
		c.stats.circuitBreakerTrips.Add(1)
	}
}

// refresh starts a fire-and-forget refetch of key unless one is in flight.
func (c *Coordinator) refresh(ctx context.Context, key Key, fetcher Fetcher, o fetchOptions) {
	id := key.String()

	c.mu.Lock()
	if _, busy := c.pending[id]; busy || c.stopped {
		c.mu.Unlock()
		return
	}
	ch := c.launchLocked(ctx, key, fetcher, o, false)
	c.wg.Add(1)
	c.mu.Unlock()

	log := c.logger(ctx)
	go func() {
		defer c.wg.Done()

		r := <-ch
		if r.Err != nil {
			log.Warn().Str("key", id).Err(r.Err).Msg("background refresh failed")
			return
		}
		if res := r.Val.(*Result); res.Error != "" {
			log.Warn().Str("key", id).Str("error", res.Error).Msg("background refresh failed")
			return
		}
		log.Debug().Str("key", id).Msg("background refresh completed")
	}()
}

func (c *Coordinator) wait(ctx context.Context, ch <-chan singleflight.Result) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Result).clone(), nil
	}
}

func (c *Coordinator) sweepLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.GetSweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep drops in-flight entries older than the pending timeout and forgets
// their singleflight calls so the next caller starts a new fetch.
func (c *Coordinator) sweep() int {
	cutoff := time.Now().Add(-c.cfg.GetPendingTimeout())

	c.mu.Lock()
	var expired []string
	for id, req := range c.pending {
		if req.startedAt.Before(cutoff) {
			delete(c.pending, id)
			c.group.Forget(id)
			expired = append(expired, id)
		}
	}
	c.mu.Unlock()

	if len(expired) > 0 {
		c.log.Warn().
			Strs("keys", expired).
			Dur("max_age", c.cfg.GetPendingTimeout()).
			Msg("dropped stale pending requests")
	}
	return len(expired)
}

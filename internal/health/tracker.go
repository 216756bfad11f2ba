package health

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Tracker manages per-endpoint circuit breakers.
// Breakers are created lazily on first use and live until the tracker is
// discarded or an administrative reset replaces them.
type Tracker struct {
	circuits map[string]*CircuitBreaker
	logger   *zerolog.Logger
	config   CircuitBreakerConfig
	mu       sync.RWMutex
}

// NewTracker creates a new Tracker with the given configuration.
func NewTracker(cfg CircuitBreakerConfig, logger *zerolog.Logger) *Tracker {
	return &Tracker{
		circuits: make(map[string]*CircuitBreaker),
		config:   cfg,
		logger:   logger,
	}
}

// GetOrCreateCircuit returns the circuit breaker for an endpoint, creating it if necessary.
func (t *Tracker) GetOrCreateCircuit(endpoint string) *CircuitBreaker {
	t.mu.RLock()
	cb, exists := t.circuits[endpoint]
	t.mu.RUnlock()

	if exists {
		return cb
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Double-check after acquiring write lock
	if cb, exists = t.circuits[endpoint]; exists {
		return cb
	}

	cb = NewCircuitBreaker(endpoint, t.config, t.logger)
	t.circuits[endpoint] = cb

	if t.logger != nil {
		t.logger.Debug().
			Str("endpoint", endpoint).
			Msg("created circuit breaker")
	}

	return cb
}

// IsHealthyFunc returns a closure reporting whether an endpoint accepts calls.
// CLOSED and HALF-OPEN count as healthy; only OPEN is unhealthy.
func (t *Tracker) IsHealthyFunc(endpoint string) func() bool {
	return func() bool {
		return t.GetState(endpoint) != StateOpen
	}
}

// GetState returns the current state of an endpoint's circuit breaker.
// Returns StateClosed if no circuit exists for the endpoint.
func (t *Tracker) GetState(endpoint string) State {
	t.mu.RLock()
	cb, exists := t.circuits[endpoint]
	t.mu.RUnlock()

	if !exists {
		return StateClosed
	}
	return cb.State()
}

// AllStates returns a snapshot of all endpoint circuit states.
func (t *Tracker) AllStates() map[string]State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	states := make(map[string]State, len(t.circuits))
	for name, cb := range t.circuits {
		states[name] = cb.State()
	}
	return states
}

// Snapshots returns a snapshot of every breaker, sorted by endpoint name.
func (t *Tracker) Snapshots() []Snapshot {
	t.mu.RLock()
	breakers := lo.Values(t.circuits)
	t.mu.RUnlock()

	snaps := lo.Map(breakers, func(cb *CircuitBreaker, _ int) Snapshot {
		return cb.Snapshot()
	})
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name < snaps[j].Name })
	return snaps
}

// Reset replaces an endpoint's breaker with a fresh CLOSED one.
// Returns false if the endpoint has no breaker yet.
func (t *Tracker) Reset(endpoint string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.circuits[endpoint]; !exists {
		return false
	}
	t.circuits[endpoint] = NewCircuitBreaker(endpoint, t.config, t.logger)

	if t.logger != nil {
		t.logger.Info().
			Str("endpoint", endpoint).
			Msg("circuit breaker reset")
	}
	return true
}

// ResetAll replaces every breaker with a fresh CLOSED one.
func (t *Tracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for name := range t.circuits {
		t.circuits[name] = NewCircuitBreaker(name, t.config, t.logger)
	}

	if t.logger != nil {
		t.logger.Info().
			Int("count", len(t.circuits)).
			Msg("all circuit breakers reset")
	}
}

package health

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// State represents the circuit breaker state.
type State = gobreaker.State

// Circuit breaker state constants.
const (
	StateClosed   = gobreaker.StateClosed
	StateOpen     = gobreaker.StateOpen
	StateHalfOpen = gobreaker.StateHalfOpen
)

var errOperationPanicked = errors.New("health: guarded operation panicked")

// CircuitBreaker wraps sony/gobreaker TwoStepCircuitBreaker for one API endpoint.
type CircuitBreaker struct {
	cb          *gobreaker.TwoStepCircuitBreaker[struct{}]
	name        string
	lastFailure atomic.Int64
}

// Snapshot is a point-in-time view of a breaker, safe to hand to callers.
type Snapshot struct {
	LastFailure          time.Time `json:"last_failure,omitzero"`
	Name                 string    `json:"name"`
	State                string    `json:"state"`
	ConsecutiveFailures  uint32    `json:"consecutive_failures"`
	ConsecutiveSuccesses uint32    `json:"consecutive_successes"`
	TotalFailures        uint32    `json:"total_failures"`
}

// NewCircuitBreaker creates a new CircuitBreaker with the given configuration.
//
// Settings map onto gobreaker as follows: FailureThreshold consecutive failures
// trip the breaker, OpenDuration is the gobreaker timeout, and HalfOpenProbes is
// MaxRequests, which gobreaker also uses as the number of consecutive half-open
// successes that close the circuit.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, logger *zerolog.Logger) *CircuitBreaker {
	halfOpenProbes := cfg.GetHalfOpenProbes()
	failureThreshold := cfg.GetFailureThreshold()

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(halfOpenProbes), //nolint:gosec // getter never returns a negative value
		Timeout:     cfg.GetOpenDuration(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failureThreshold) //nolint:gosec // getter never returns a negative value
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger == nil {
				return
			}
			event := logger.Info()
			if to == gobreaker.StateOpen {
				event = logger.Warn()
			}
			event.
				Str("endpoint", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &CircuitBreaker{
		cb:   gobreaker.NewTwoStepCircuitBreaker[struct{}](settings),
		name: name,
	}
}

// Allow checks if a request is allowed through the circuit breaker.
// The returned done func must be called exactly once with the outcome.
func (c *CircuitBreaker) Allow() (done func(err error), err error) {
	d, err := c.cb.Allow()
	if err != nil {
		return nil, &CircuitOpenError{Endpoint: c.name, State: c.cb.State()}
	}
	return func(opErr error) {
		if opErr != nil && !errors.Is(opErr, context.Canceled) {
			c.lastFailure.Store(time.Now().UnixNano())
		}
		d(opErr)
	}, nil
}

// Execute runs op through the breaker. While the circuit rejects calls, op is
// not invoked and a *CircuitOpenError is returned.
func (c *CircuitBreaker) Execute(op func() error) error {
	done, err := c.Allow()
	if err != nil {
		return err
	}

	opErr := errOperationPanicked
	defer func() { done(opErr) }()

	opErr = op()
	return opErr
}

// State returns the current circuit breaker state.
func (c *CircuitBreaker) State() State {
	return c.cb.State()
}

// Name returns the circuit breaker's name.
func (c *CircuitBreaker) Name() string {
	return c.name
}

// Snapshot returns the breaker's state and counters.
func (c *CircuitBreaker) Snapshot() Snapshot {
	counts := c.cb.Counts()
	snap := Snapshot{
		Name:                 c.name,
		State:                c.cb.State().String(),
		ConsecutiveFailures:  counts.ConsecutiveFailures,
		ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
		TotalFailures:        counts.TotalFailures,
	}
	if ns := c.lastFailure.Load(); ns != 0 {
		snap.LastFailure = time.Unix(0, ns)
	}
	return snap
}

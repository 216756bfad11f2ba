package health

import (
	"errors"
	"fmt"
)

// Sentinel errors for health tracking.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open and rejecting requests.
	ErrCircuitOpen = errors.New("health: circuit breaker is open")

	// ErrProbeFailed is returned when the API health probe does not report healthy.
	ErrProbeFailed = errors.New("health: probe failed")
)

// CircuitOpenError reports a call rejected by an endpoint's breaker.
// It matches ErrCircuitOpen with errors.Is.
type CircuitOpenError struct {
	Endpoint string
	State    State
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("health: circuit breaker for %q is %s", e.Endpoint, e.State)
}

// Unwrap returns ErrCircuitOpen.
func (e *CircuitOpenError) Unwrap() error {
	return ErrCircuitOpen
}

package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors for fetch coordination.
var (
	// ErrInvalidKey is returned for keys that cannot be rendered unambiguously.
	ErrInvalidKey = errors.New("fetch: invalid key")

	// ErrInvalidPayload is returned when a fetcher's bytes are not valid JSON.
	ErrInvalidPayload = errors.New("fetch: payload is not valid JSON")

	// ErrFetcherPanic is returned when a fetcher panics.
	ErrFetcherPanic = errors.New("fetch: fetcher panicked")

	// ErrExhaustedFallback is returned when a fetch failed and no cached value
	// of any age exists for the key.
	ErrExhaustedFallback = errors.New("fetch: no data and no fallback")
)

// TransientFetchError is returned after every retry attempt failed.
type TransientFetchError struct {
	Err      error
	Attempts int
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("fetch: failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// ExhaustedFallbackError is returned to callers when a fetch failed and there
// was nothing cached to fall back to. It matches ErrExhaustedFallback and the
// underlying cause with errors.Is.
type ExhaustedFallbackError struct {
	Err error
	Key Key
}

func (e *ExhaustedFallbackError) Error() string {
	return fmt.Sprintf("fetch: %s: no fallback available: %v", e.Key, e.Err)
}

func (e *ExhaustedFallbackError) Unwrap() []error {
	return []error{ErrExhaustedFallback, e.Err}
}

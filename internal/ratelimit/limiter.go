// Package ratelimit throttles outbound API requests.
//
//	limiter := ratelimit.NewTokenBucketLimiter(20) // 20 requests per second
//	if err := limiter.Wait(ctx); err != nil {
//		return err
//	}
package ratelimit

import (
	"context"
	"errors"
)

// Common errors returned by rate limiters.
var (
	// ErrRateLimitExceeded is returned when a rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("ratelimit: rate limit exceeded")

	// ErrContextCancelled is returned when the context is canceled during a blocking operation.
	ErrContextCancelled = errors.New("ratelimit: context canceled")
)

// Usage is a point-in-time view of a limiter.
type Usage struct {
	// RequestsPerSecond is the sustained rate. Zero when Unlimited.
	RequestsPerSecond float64 `json:"requests_per_second"`

	// Burst is how many requests may be issued back to back.
	Burst int `json:"burst"`

	// Available is the number of requests that may start now without waiting.
	Available int `json:"available"`

	Unlimited bool `json:"unlimited"`
}

// RateLimiter limits request starts. Implementations are safe for concurrent use.
type RateLimiter interface {
	// Allow reports whether a request may start now, consuming capacity if so.
	Allow(ctx context.Context) bool

	// Wait blocks until a request may start or ctx is done, in which case it
	// returns ErrContextCancelled.
	Wait(ctx context.Context) error

	// SetLimit replaces the rate. rps <= 0 means unlimited.
	SetLimit(rps float64)

	// GetUsage returns the current usage.
	GetUsage() Usage
}

package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter implements RateLimiter with golang.org/x/time/rate.
// The bucket holds one second's worth of requests, so a quiet client can
// issue a burst of rps requests before being smoothed to the sustained rate.
type TokenBucketLimiter struct {
	limiter *rate.Limiter
	rps     float64
	mu      sync.RWMutex
}

// NewTokenBucketLimiter creates a limiter admitting rps requests per second.
// Zero or negative rps is unlimited.
func NewTokenBucketLimiter(rps float64) *TokenBucketLimiter {
	l := &TokenBucketLimiter{}
	l.SetLimit(rps)
	return l
}

func newRateLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), burstFor(rps))
}

func burstFor(rps float64) int {
	return max(1, int(rps))
}

// Allow reports whether a request may start now. It never blocks.
func (l *TokenBucketLimiter) Allow(_ context.Context) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.limiter.Allow()
}

// Wait blocks until a request may start.
// Returns ErrContextCancelled if the context is canceled while waiting.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	l.mu.RLock()
	limiter := l.limiter
	l.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ErrContextCancelled
		}
		// Wait fails without blocking when the deadline is too close.
		return ErrRateLimitExceeded
	}
	return nil
}

// SetLimit replaces the limiter with a fresh bucket at rps.
// Waiters already blocked keep the previous bucket.
func (l *TokenBucketLimiter) SetLimit(rps float64) {
	if rps < 0 {
		rps = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiter = newRateLimiter(rps)
	l.rps = rps
}

// GetUsage returns the current usage.
func (l *TokenBucketLimiter) GetUsage() Usage {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.rps == 0 {
		return Usage{Unlimited: true}
	}

	burst := burstFor(l.rps)
	return Usage{
		RequestsPerSecond: l.rps,
		Burst:             burst,
		Available:         clampUsage(int(l.limiter.Tokens()), burst),
	}
}

func clampUsage(remaining, limit int) int {
	if remaining < 0 {
		return 0
	}
	if remaining > limit {
		return limit
	}
	return remaining
}

var _ RateLimiter = (*TokenBucketLimiter)(nil)

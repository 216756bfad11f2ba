package ro

import (
	"time"

	"github.com/samber/ro"
	roratelimit "github.com/samber/ro/plugins/ratelimit/native"
)

// DefaultLimitInterval is the window used when Limit is given a zero interval.
const DefaultLimitInterval = time.Second

// Limit admits at most count items per interval for each key returned by
// keyGetter. Items over the limit are dropped from the stream, not delayed.
//
// Example:
//
//	// At most 20 prefetches per second for each data domain
//	limited := Limit(targets, 20, time.Second, func(t Target) string {
//	    return t.Domain
//	})
func Limit[T any](
	source ro.Observable[T],
	count int64,
	interval time.Duration,
	keyGetter func(T) string,
) ro.Observable[T] {
	return ro.Pipe1(source, NewLimitOperator(count, interval, keyGetter))
}

// NewLimitOperator returns the keyed limiter as a reusable operator.
// A non-positive count disables limiting.
func NewLimitOperator[T any](
	count int64,
	interval time.Duration,
	keyGetter func(T) string,
) func(ro.Observable[T]) ro.Observable[T] {
	if count <= 0 {
		return func(source ro.Observable[T]) ro.Observable[T] { return source }
	}
	if interval <= 0 {
		interval = DefaultLimitInterval
	}
	return roratelimit.NewRateLimiter[T](count, interval, keyGetter)
}

package ratelimit_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blaze-intelligence/livedata/internal/ratelimit"
)

func TestNewTokenBucketLimiterUnlimited(t *testing.T) {
	t.Parallel()

	for _, rps := range []float64{0, -5} {
		limiter := ratelimit.NewTokenBucketLimiter(rps)
		ctx := context.Background()

		for i := 0; i < 1000; i++ {
			if !limiter.Allow(ctx) {
				t.Fatalf("rps=%v: request %d denied by unlimited limiter", rps, i)
			}
		}

		usage := limiter.GetUsage()
		if !usage.Unlimited {
			t.Errorf("rps=%v: expected Unlimited usage, got %+v", rps, usage)
		}
	}
}

func TestTokenBucketLimiterBurstThenDeny(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewTokenBucketLimiter(5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if !limiter.Allow(ctx) {
			t.Fatalf("request %d denied within burst", i)
		}
	}
	if limiter.Allow(ctx) {
		t.Error("expected request beyond burst to be denied")
	}

	usage := limiter.GetUsage()
	if usage.Burst != 5 {
		t.Errorf("Burst = %d, want 5", usage.Burst)
	}
	if usage.Available != 0 {
		t.Errorf("Available = %d, want 0", usage.Available)
	}
}

func TestTokenBucketLimiterWaitPaces(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewTokenBucketLimiter(20)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 25; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	// 20 from the bucket, 5 more at 50ms each.
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("25 waits at 20 rps took %v, want >= 200ms", elapsed)
	}
}

func TestTokenBucketLimiterWaitCanceled(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewTokenBucketLimiter(1)
	if !limiter.Allow(context.Background()) {
		t.Fatal("first request denied")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Wait(ctx)
	if !errors.Is(err, ratelimit.ErrContextCancelled) {
		t.Errorf("Wait error = %v, want ErrContextCancelled", err)
	}
}

func TestTokenBucketLimiterWaitDeadlineTooClose(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewTokenBucketLimiter(0.5)
	if !limiter.Allow(context.Background()) {
		t.Fatal("first request denied")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	if !errors.Is(err, ratelimit.ErrRateLimitExceeded) {
		t.Errorf("Wait error = %v, want ErrRateLimitExceeded", err)
	}
}

func TestTokenBucketLimiterSetLimit(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewTokenBucketLimiter(1)
	ctx := context.Background()
	limiter.Allow(ctx)
	if limiter.Allow(ctx) {
		t.Fatal("expected second request denied at 1 rps")
	}

	limiter.SetLimit(0)
	if !limiter.Allow(ctx) {
		t.Error("expected request allowed after SetLimit(0)")
	}

	limiter.SetLimit(3)
	usage := limiter.GetUsage()
	if usage.RequestsPerSecond != 3 || usage.Burst != 3 || usage.Available != 3 {
		t.Errorf("usage after SetLimit(3) = %+v", usage)
	}
}

func TestTokenBucketLimiterConcurrentAllow(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewTokenBucketLimiter(10)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow(ctx) {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	// Refill during the loop can admit at most a few more.
	if got := allowed.Load(); got < 10 || got > 12 {
		t.Errorf("allowed %d concurrent requests, want about 10", got)
	}
}

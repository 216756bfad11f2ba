package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// retry runs fetcher up to GetMaxAttempts times, waiting attempt*BaseDelay
// between attempts. It stops early when ctx is done.
func (c *Coordinator) retry(ctx context.Context, key Key, fetcher Fetcher) ([]byte, error) {
	maxAttempts := c.cfg.GetMaxAttempts()
	baseDelay := c.cfg.GetBaseDelay()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		data, err := attemptFetch(ctx, fetcher)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		delay := baseDelay * time.Duration(attempt)
		c.logger(ctx).Debug().
			Str("key", key.String()).
			Int("attempt", attempt).
			Dur("delay", delay).
			Err(err).
			Msg("fetch attempt failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &TransientFetchError{Attempts: attempt, Err: errors.Join(lastErr, ctx.Err())}
		case <-timer.C:
		}
	}

	return nil, &TransientFetchError{Attempts: maxAttempts, Err: lastErr}
}

func attemptFetch(ctx context.Context, fetcher Fetcher) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("%w: %v", ErrFetcherPanic, r)
		}
	}()

	data, err = fetcher(ctx)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidPayload
	}
	return data, nil
}

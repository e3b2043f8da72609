package thor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"syscall"
	"time"

	"github.com/goran-ethernal/ThorIndexor/pkg/config"
)

// jitterFraction spreads retries of concurrent callers over +/-25% of the backoff.
const jitterFraction = 0.25

// shouldRetry classifies a failed request. Transport failures, per-attempt timeouts, 429 and 5xx
// answers are transient. Anything the node answered deliberately, or sent malformed, is not.
func shouldRetry(err error) bool {
	var httpErr *HTTPError

	switch {
	case err == nil, errors.Is(err, ErrInvalidResponse), errors.Is(err, context.Canceled):
		return false
	case errors.As(err, &httpErr):
		return httpErr.Retryable()
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// backoff returns the pause before the given attempt. The first attempt never waits,
// the second waits InitialBackoff and every later one multiplies it, capped at MaxBackoff.
func backoff(attempt int, cfg *config.RetryConfig) time.Duration {
	if attempt <= 1 {
		return 0
	}

	wait := float64(cfg.InitialBackoff.Duration)
	for range attempt - 2 {
		wait *= cfg.BackoffMultiplier
		if wait >= float64(cfg.MaxBackoff.Duration) {
			break
		}
	}
	wait = min(wait, float64(cfg.MaxBackoff.Duration))

	wait += wait * jitterFraction * (2*rand.Float64() - 1)

	return time.Duration(max(wait, 0))
}

// withRetry runs fn until it succeeds, fails permanently, runs out of attempts or ctx ends.
// A nil config runs fn exactly once.
func withRetry(ctx context.Context, cfg *config.RetryConfig, operation string, fn func() error) error {
	if cfg == nil {
		return fn()
	}

	started := time.Now()
	var err error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if wait := backoff(attempt, cfg); wait > 0 {
			RetryInc(operation)

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: context cancelled while backing off after attempt %d: %w",
					operation, attempt-1, errors.Join(ctx.Err(), err))
			case <-timer.C:
			}
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: context cancelled before attempt %d: %w", operation, attempt, ctxErr)
		}

		if err = fn(); err == nil {
			return nil
		}

		if !shouldRetry(err) {
			return fmt.Errorf("%s: non-retryable error on attempt %d/%d: %w", operation, attempt, cfg.MaxAttempts, err)
		}
	}

	return fmt.Errorf("%s: all %d attempts failed in %v: %w",
		operation, cfg.MaxAttempts, time.Since(started).Round(time.Millisecond), err)
}

package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/logger"
)

// maxAttempts bounds the retry loop for provider calls. Transient
// failures (rate limits, timeouts, 5xx) are retried; everything else
// surfaces immediately.
const maxAttempts = 3

// defaultRetryDelay scales the backoff between attempts.
const defaultRetryDelay = time.Second

// withRetry runs fn up to maxAttempts times, backing off between
// attempts with exponential delay plus jitter. Only errors marked
// domain.ErrTransient are retried. Context cancellation abandons the
// loop immediately rather than waiting out the current backoff.
func withRetry(ctx context.Context, baseDelay time.Duration, op string, fn func() error) error {
	if baseDelay <= 0 {
		baseDelay = defaultRetryDelay
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			// Exponential backoff with jitter to avoid thundering herd.
			base := time.Duration((attempt-1)*(attempt-1)) * baseDelay
			jitter := time.Duration(rand.Int64N(int64(base/2 + 1)))
			backoff := base + jitter
			logger.Warn("Retrying %s (attempt %d/%d) after %s: %v", op, attempt, maxAttempts, backoff, lastErr)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrTransient) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

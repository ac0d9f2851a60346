package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *Logger
}

// Do executes fn with exponential back-off, doubling BaseDelay after every
// failed attempt. It stops early when ctx is cancelled.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func(ctx context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = r.BaseDelay << (attempts - 1)

	tries := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		tries++
		return struct{}{}, fn(ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			if r.Logger != nil {
				r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
					operationName, tries, attempts, err, next)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("%s failed after %d attempts: %w", operationName, tries, err)
	}
	return nil
}

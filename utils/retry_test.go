package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewNopLogger()}

	calls := 0
	err := r.Do(context.Background(), "ping", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: NewNopLogger()}
	boom := errors.New("boom")

	calls := 0
	err := r.Do(context.Background(), "ping", func(context.Context) error {
		calls++
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestRetryStopsOnCancel(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour, Logger: NewNopLogger()}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := r.Do(ctx, "ping", func(context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

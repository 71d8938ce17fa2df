package errors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastRetry() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestRetry_SucceedsAfterTransientError(t *testing.T) {
	// Given: a call that fails twice with a retryable upstream error
	attempts := 0
	fn := func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", UpstreamError("connection reset", nil)
		}
		return "ok", nil
	}

	// When: retrying with two retries
	got, err := RetryWithResult(context.Background(), fastRetry(), fn)

	// Then: the third attempt wins
	assert.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, attempts)
}

func TestRetry_FailsAfterMaxRetries(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastRetry(), func() error {
		attempts++
		return StatusError(502, "http://upstream")
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Equal(t, 3, attempts)
	assert.Equal(t, ErrCodeUpstreamStatus, GetCode(err))
}

func TestRetry_StopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastRetry(), func() error {
		attempts++
		return StatusError(404, "http://upstream")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.NotContains(t, err.Error(), "retries")
}

func TestRetry_NilPredicateRetriesEverything(t *testing.T) {
	cfg := fastRetry()
	cfg.ShouldRetry = nil

	attempts := 0
	_ = Retry(context.Background(), cfg, func() error {
		attempts++
		return errors.New("plain")
	})
	assert.Equal(t, 3, attempts)
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Retry(ctx, fastRetry(), func() error {
		attempts++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)
}

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tgmedia/pkg/config"
	errs "tgmedia/pkg/errors"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{9, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 50; i++ {
		delay := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, delay, 140*time.Millisecond)
		assert.LessOrEqual(t, delay, 260*time.Millisecond)
	}
}

func fastConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
	}
}

func TestDoRetriesNetworkErrors(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errs.Wrap(errs.ErrorTypeNetwork, "dial", errors.New("reset"))
		}
		return nil
	}, fastConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	cause := errs.Wrap(errs.ErrorTypeNetwork, "dial", errors.New("reset"))
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return cause
	}, fastConfig(3))

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, attempts)
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", errs.NotFound("chat", nil)},
		{"auth", errs.Wrap(errs.ErrorTypeAuth, "session expired", nil)},
		{"unclassified", errors.New("plain")},
		{"cancelled", context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Do(context.Background(), func(ctx context.Context) error {
				attempts++
				return tt.err
			}, fastConfig(5))

			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, attempts)
		})
	}
}

func TestDoHonoursRetryAfter(t *testing.T) {
	var delays []time.Duration
	cfg := fastConfig(1)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		delays = append(delays, delay)
	}

	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts <= 2 {
			return errs.RateLimited(20*time.Millisecond, nil)
		}
		return nil
	}, cfg)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "rate limit waits must not consume attempts")
	require.Len(t, delays, 2)
	for _, d := range delays {
		assert.Equal(t, 20*time.Millisecond, d)
	}
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{
		MaxAttempts: 10,
		Backoff:     &ConstantBackoff{Delay: time.Hour},
		OnRetry: func(int, error, time.Duration) {
			cancel()
		},
	}

	err := Do(ctx, func(ctx context.Context) error {
		return errs.Wrap(errs.ErrorTypeNetwork, "timeout", nil)
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	result, err := DoWithResult(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errs.Wrap(errs.ErrorTypeNetwork, "eof", nil)
		}
		return "page", nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, "page", result)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Multiplier:  3,
	}, nil)

	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Logger)
	assert.Equal(t, 3*time.Second, cfg.Backoff.NextDelay(2))

	t.Run("multiplier of one is constant", func(t *testing.T) {
		cfg := FromConfig(config.RetryConfig{MaxAttempts: 2, BaseDelay: 2 * time.Second, Multiplier: 1}, nil)

		require.IsType(t, &ConstantBackoff{}, cfg.Backoff)
		for attempt := 1; attempt <= 4; attempt++ {
			assert.Equal(t, 2*time.Second, cfg.Backoff.NextDelay(attempt))
		}
	})
}

func TestWait(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Minute), context.Canceled)
}

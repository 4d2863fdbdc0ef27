package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tgmedia/pkg/config"
	errs "tgmedia/pkg/errors"
	"tgmedia/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying
type Operation func(ctx context.Context) error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func(ctx context.Context) (T, error)

// Config holds retry configuration
type Config struct {
	// MaxAttempts bounds attempts that failed for reasons other than rate
	// limiting (0 means unlimited). Rate limit waits never consume attempts.
	MaxAttempts int
	Backoff     BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before each wait
	OnRetry func(attempt int, err error, delay time.Duration)
	Logger  logger.Logger
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     DefaultExponentialBackoff(),
		RetryIf:     DefaultRetryIf,
		Logger:      logger.NewNopLogger(),
	}
}

// FromConfig builds a retry configuration from the application settings.
// A multiplier of 1 or less retries at a constant base delay.
func FromConfig(cfg config.RetryConfig, log logger.Logger) *Config {
	if log == nil {
		log = logger.NewNopLogger()
	}

	var backoff BackoffStrategy = &ExponentialBackoff{
		BaseDelay:    cfg.BaseDelay,
		MaxDelay:     cfg.MaxDelay,
		Multiplier:   cfg.Multiplier,
		JitterFactor: cfg.JitterFactor,
	}
	if cfg.Multiplier <= 1 {
		backoff = &ConstantBackoff{Delay: cfg.BaseDelay}
	}

	return &Config{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     backoff,
		RetryIf:     DefaultRetryIf,
		Logger:      log,
	}
}

// DefaultRetryIf retries network and rate limit failures only
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var classified *errs.Error
	if errors.As(err, &classified) {
		return errs.IsRetryable(classified.Type)
	}
	return false
}

// Do executes an operation with retry logic. A rate limit error waits at
// least as long as the server asked for.
func Do(ctx context.Context, op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}

	attempt := 0
	for {
		err := op(ctx)
		if err == nil {
			if attempt > 0 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt + 1,
				})
			}
			return nil
		}

		if !retryIf(err) {
			return err
		}

		wait, rateLimited := errs.RetryAfter(err)
		if !rateLimited {
			attempt++
			if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
				log.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
					"attempts":   attempt,
					"last_error": err.Error(),
				})
				return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, err)
			}
		}

		delay := time.Duration(0)
		if cfg.Backoff != nil {
			delay = cfg.Backoff.NextDelay(max(attempt, 1))
		}
		if rateLimited && wait > delay {
			delay = wait
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}
		if rateLimited {
			logger.LogRateLimit(log, "retry", delay)
		} else {
			log.WarnWithFields("retrying operation", map[string]interface{}{
				"attempt":      attempt,
				"error":        err.Error(),
				"delay_ms":     delay.Milliseconds(),
				"max_attempts": cfg.MaxAttempts,
			})
		}

		if err := Wait(ctx, delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](ctx context.Context, op OperationWithResult[T], cfg *Config) (T, error) {
	var result T
	err := Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	}, cfg)
	return result, err
}

package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sinacrawler/pkg/config"
	errs "sinacrawler/pkg/errors"
	"sinacrawler/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying
type Operation func() error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func() (T, error)

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts (0 means unlimited)
	MaxAttempts int
	// Backoff selects the delay curve for the error that just occurred
	Backoff func(err error) BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, err error, delay time.Duration)
	Logger  logger.Logger
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig() *Config {
	etb := NewErrorTypeBackoff(time.Second, 30*time.Second)
	return &Config{
		MaxAttempts: 3,
		Backoff:     etb.For,
		RetryIf:     DefaultRetryIf,
		Logger:      logger.GetLogger(),
	}
}

// FromConfig builds a retry configuration from the application config.
// A disabled retry section yields a single attempt.
func FromConfig(cfg config.RetryConfig, log logger.Logger) *Config {
	if !cfg.Enabled {
		return &Config{MaxAttempts: 1, RetryIf: DefaultRetryIf, Logger: log}
	}

	etb := NewErrorTypeBackoff(cfg.BaseDelay, cfg.MaxDelay)
	return &Config{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     etb.For,
		RetryIf:     DefaultRetryIf,
		Logger:      log,
	}
}

// DefaultRetryIf retries typed errors whose type is retryable and any untyped
// error that is not a context cancellation
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		return errs.IsRetryable(apiErr.Type)
	}

	return true
}

// Do executes an operation with retry logic
func Do(ctx context.Context, op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		if cfg.MaxAttempts > 0 && attempt > cfg.MaxAttempts {
			if cfg.Logger != nil {
				cfg.Logger.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
					"attempts":   attempt - 1,
					"last_error": lastErr.Error(),
				})
			}
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
		}

		err := op()
		if err == nil {
			if attempt > 1 && cfg.Logger != nil {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}
		lastErr = err

		retryIf := cfg.RetryIf
		if retryIf == nil {
			retryIf = DefaultRetryIf
		}
		if !retryIf(err) {
			return err
		}
		// No point sleeping when this was the last allowed attempt
		if cfg.MaxAttempts > 0 && attempt == cfg.MaxAttempts {
			continue
		}

		var delay time.Duration
		if cfg.Backoff != nil {
			if strategy := cfg.Backoff(err); strategy != nil {
				delay = strategy.NextDelay(attempt)
			}
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		if cfg.Logger != nil {
			cfg.Logger.WarnWithFields("retrying operation", map[string]interface{}{
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

	err := Do(ctx, func() error {
		var opErr error
		result, opErr = op()
		return opErr
	}, cfg)

	return result, err
}

package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	errs "sinacrawler/pkg/errors"
)

// BackoffStrategy computes the delay before the given retry attempt (1-based)
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff implements exponential backoff with jitter
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	// JitterFactor adds randomness to avoid thundering herd (0.0 to 1.0)
	JitterFactor float64
}

// DefaultExponentialBackoff returns a backoff with sensible defaults
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:    1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// NextDelay calculates the next delay with exponential backoff and jitter
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt-1))
	if eb.MaxDelay > 0 && delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}

	if eb.JitterFactor > 0 {
		jitter := delay * eb.JitterFactor
		delay += (rand.Float64() * 2 * jitter) - jitter
	}

	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// ConstantBackoff implements constant delay backoff
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns a constant delay
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// ErrorTypeBackoff picks a backoff curve by the type of the failed attempt's error
type ErrorTypeBackoff struct {
	Network     BackoffStrategy
	RateLimit   BackoffStrategy
	ServerError BackoffStrategy
	Default     BackoffStrategy
}

// NewErrorTypeBackoff scales every curve from the configured base and max delay.
// Rate limiting backs off from a base ten times longer.
func NewErrorTypeBackoff(base, max time.Duration) *ErrorTypeBackoff {
	return &ErrorTypeBackoff{
		Network: &ExponentialBackoff{
			BaseDelay:    base,
			MaxDelay:     max,
			Multiplier:   2.0,
			JitterFactor: 0.2,
		},
		RateLimit: &ExponentialBackoff{
			BaseDelay:    10 * base,
			MaxDelay:     10 * max,
			Multiplier:   1.5,
			JitterFactor: 0.3,
		},
		ServerError: &ExponentialBackoff{
			BaseDelay:    2 * base,
			MaxDelay:     max,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		Default: &ExponentialBackoff{
			BaseDelay:    base,
			MaxDelay:     max,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
	}
}

// For returns the strategy that applies to err
func (etb *ErrorTypeBackoff) For(err error) BackoffStrategy {
	switch {
	case errs.IsType(err, errs.ErrorTypeNetwork):
		return etb.Network
	case errs.IsType(err, errs.ErrorTypeRateLimit):
		return etb.RateLimit
	case errs.IsType(err, errs.ErrorTypeServerError):
		return etb.ServerError
	default:
		return etb.Default
	}
}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

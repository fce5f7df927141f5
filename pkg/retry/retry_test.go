package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sinacrawler/pkg/config"
	errs "sinacrawler/pkg/errors"
	"sinacrawler/pkg/logger"
)

func constant(d time.Duration) func(error) BackoffStrategy {
	return func(error) BackoffStrategy { return &ConstantBackoff{Delay: d} }
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0,
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
		{6, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 50; i++ {
		delay := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, delay, 140*time.Millisecond)
		assert.LessOrEqual(t, delay, 260*time.Millisecond)
	}
}

func TestErrorTypeBackoffSelection(t *testing.T) {
	etb := NewErrorTypeBackoff(time.Second, 10*time.Second)

	assert.Same(t, etb.Network, etb.For(errs.New(errs.ErrorTypeNetwork, "reset")))
	assert.Same(t, etb.RateLimit, etb.For(errs.New(errs.ErrorTypeRateLimit, "429")))
	assert.Same(t, etb.ServerError, etb.For(errs.New(errs.ErrorTypeServerError, "502")))
	assert.Same(t, etb.Default, etb.For(errors.New("plain")))
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	var retried []int

	err := Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errs.New(errs.ErrorTypeNetwork, "connection reset")
		}
		return nil
	}, &Config{
		MaxAttempts: 5,
		Backoff:     constant(time.Millisecond),
		RetryIf:     DefaultRetryIf,
		OnRetry:     func(attempt int, err error, delay time.Duration) { retried = append(retried, attempt) },
		Logger:      logger.NewNopLogger(),
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	attempts := 0
	tl := logger.NewTestLogger()

	err := Do(context.Background(), func() error {
		attempts++
		return errs.New(errs.ErrorTypeServerError, "bad gateway")
	}, &Config{MaxAttempts: 3, Backoff: constant(time.Millisecond), Logger: tl})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
	assert.True(t, errs.IsType(err, errs.ErrorTypeServerError))
	assert.True(t, tl.HasMessage("max retry attempts exceeded"))
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 2)
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	attempts := 0
	parseErr := errs.New(errs.ErrorTypeParsing, "unexpected body")

	err := Do(context.Background(), func() error {
		attempts++
		return parseErr
	}, &Config{MaxAttempts: 5, Backoff: constant(time.Millisecond), Logger: logger.NewNopLogger()})

	assert.Equal(t, 1, attempts)
	assert.Same(t, parseErr, err)
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := Do(ctx, func() error {
		attempts++
		cancel()
		return errs.New(errs.ErrorTypeNetwork, "timeout")
	}, &Config{MaxAttempts: 5, Backoff: constant(time.Hour), Logger: logger.NewNopLogger()})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0

	body, err := DoWithResult(context.Background(), func() ([]byte, error) {
		attempts++
		if attempts == 1 {
			return nil, errs.New(errs.ErrorTypeRateLimit, "slow down")
		}
		return []byte("ok"), nil
	}, &Config{MaxAttempts: 2, Backoff: constant(time.Millisecond), Logger: logger.NewNopLogger()})

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.False(t, DefaultRetryIf(errs.New(errs.ErrorTypeNotFound, "gone")))
	assert.True(t, DefaultRetryIf(errs.New(errs.ErrorTypeRateLimit, "429")))
	assert.True(t, DefaultRetryIf(errors.New("unknown")))
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.RetryConfig{Enabled: false, MaxAttempts: 5}, logger.NewNopLogger())
	assert.Equal(t, 1, cfg.MaxAttempts)

	cfg = FromConfig(config.RetryConfig{
		Enabled:     true,
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		MaxDelay:    time.Minute,
	}, logger.NewNopLogger())
	assert.Equal(t, 4, cfg.MaxAttempts)
	require.NotNil(t, cfg.Backoff)
	assert.NotNil(t, cfg.Backoff(errs.New(errs.ErrorTypeNetwork, "x")))
}

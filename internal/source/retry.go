package source

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts (default: 3)
	BaseDelay  time.Duration // Initial delay between retries (default: 100ms)
	MaxDelay   time.Duration // Maximum delay between retries (default: 5s)
	Multiplier float64       // Delay multiplier for exponential backoff (default: 2.0)
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
	}
}

// WithRetry calls fn until it succeeds, returns a non-retryable error, or
// the attempts are exhausted. Delays grow exponentially with jitter.
func WithRetry[T any](ctx context.Context, logger *zap.Logger, source string, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("source", source))

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				log.Debug("fetch succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return result, nil
		}

		lastErr = err

		if !shouldRetry(err) {
			log.Debug("non-retryable fetch error", zap.Error(err))
			return zero, err
		}

		if attempt < cfg.MaxRetries {
			delay := calculateDelay(attempt, cfg)
			log.Debug("fetch attempt failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err))

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}

	log.Warn("all fetch attempts failed", zap.Int("attempts", cfg.MaxRetries+1))

	var sourceErr *SourceError
	if errors.As(lastErr, &sourceErr) {
		sourceErr.Retryable = false
		return zero, lastErr
	}

	return zero, &SourceError{
		Source:    source,
		Operation: "fetch",
		Err:       lastErr,
		Retryable: false,
	}
}

// shouldRetry determines if an error should be retried
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return sourceErr.Retryable
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsRetryable()
	}

	var circuitErr *CircuitOpenError
	if errors.As(err, &circuitErr) {
		return false
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return false
	}

	return isRetryableError(err)
}

// calculateDelay computes the delay for the given attempt using exponential backoff with jitter
func calculateDelay(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt))

	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	// Range: [0.8, 1.2)
	jitter := 0.8 + rand.Float64()*0.4
	delay *= jitter

	return time.Duration(delay)
}

package graph

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig configures node retries.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// RetryableErrors decides whether an error is worth another attempt.
	// Nil retries every error.
	RetryableErrors func(error) bool
}

// DefaultRetryConfig retries three times with exponential backoff.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
}

func (c *RetryConfig) retryable(err error) bool {
	return c.RetryableErrors == nil || c.RetryableErrors(err)
}

// runWithRetry calls fn until it succeeds, the error is not retryable, or
// attempts run out.
func runWithRetry[S any](ctx context.Context, cfg *RetryConfig, fn func() (S, error)) (S, error) {
	if cfg == nil || cfg.MaxAttempts <= 1 {
		return fn()
	}

	var (
		zero    S
		lastErr error
	)
	delay := cfg.InitialDelay
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}
		lastErr = err
		if attempt == cfg.MaxAttempts || !cfg.retryable(err) {
			break
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		if cfg.BackoffFactor > 0 {
			delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		}
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return zero, lastErr
}

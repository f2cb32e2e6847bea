package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swapi_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 4, 6, 8, 10, 20},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// BaseDelay is multiplied by the attempt number to get the wait before
	// the next attempt.
	BaseDelay time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
	}
}

// Backoff returns the wait after the given 1-based failed attempt.
// Linear, no jitter.
func (rc RetryConfig) Backoff(attempt int) time.Duration {
	return rc.BaseDelay * time.Duration(attempt)
}

// retryWithBackoff runs fn until it succeeds, returns a non-retryable error,
// or MaxAttempts is reached. When the attempts run out on a retryable
// error the last UpstreamError is returned marked with ErrRetryExhausted.
func retryWithBackoff(ctx context.Context, config RetryConfig, fn func(attempt int) error) error {
	maxAttempts := max(config.MaxAttempts, 1)

	var lastErr error
	var errorClass ErrorClass

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			if attempt > 1 {
				log.Info().
					Str("error_class", string(errorClass)).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err

		var ue *UpstreamError
		if !errors.As(err, &ue) || !shouldRetry(ue.ErrorClass) {
			return err
		}
		errorClass = ue.ErrorClass

		if attempt >= maxAttempts {
			break
		}

		retriesTotal.WithLabelValues(string(errorClass)).Inc()
		backoff := config.Backoff(attempt)
		retryBackoffSeconds.WithLabelValues(string(errorClass)).Observe(backoff.Seconds())

		log.Warn().
			Str("error_class", string(errorClass)).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Rate limited, retrying after backoff")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Warn().
				Str("error_class", string(errorClass)).
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		case <-timer.C:
		}
	}

	retryExhaustedTotal.WithLabelValues(string(errorClass)).Inc()
	log.Warn().
		Str("error_class", string(errorClass)).
		Int("max_attempts", maxAttempts).
		Msg("Retry attempts exhausted")

	var ue *UpstreamError
	if errors.As(lastErr, &ue) {
		exhausted := *ue
		exhausted.Attempts = maxAttempts
		exhausted.Err = ErrRetryExhausted
		return &exhausted
	}
	return lastErr
}

package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when the upstream is still rate limiting
	// after the last attempt.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrMalformed is returned when a response body cannot be decoded.
	ErrMalformed = errors.New("malformed response")
)

// UpstreamError is a failed upstream retrieval.
type UpstreamError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Attempts   int
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is an upstream rate-limit signal.
func IsRateLimited(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.ErrorClass == ErrorClassRateLimit
}

// shouldRetry determines if an error class is retried. Only rate limiting
// is transient; everything else propagates on first occurrence.
func shouldRetry(errorClass ErrorClass) bool {
	return errorClass == ErrorClassRateLimit
}

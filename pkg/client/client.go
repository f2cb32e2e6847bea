// Package client provides the upstream fetch client: a single logical GET
// with transparent linear-backoff retries on rate limiting and admission
// control over the shared pool of upstream call slots.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/swapi-aggregator/pkg/logging"
	"github.com/Sternrassler/swapi-aggregator/pkg/ratelimit"
	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for upstream requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_requests_total",
		Help: "Total upstream requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swapi_request_duration_seconds",
		Help:    "Upstream fetch duration in seconds by endpoint, retries included",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors other than 429.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Response is the raw result of a successful fetch.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Config holds the client configuration.
type Config struct {
	// UserAgent header sent with every request.
	UserAgent string

	// Retry policy for rate-limited responses.
	Retry RetryConfig

	// RequestTimeout bounds a single HTTP attempt. Zero disables it.
	RequestTimeout time.Duration

	// Admission is the shared slot pool. Nil admits every call.
	Admission *ratelimit.Admission
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:      userAgent,
		Retry:          DefaultRetryConfig(),
		RequestTimeout: 30 * time.Second,
	}
}

// Client fetches upstream resources. It is stateless apart from its
// configuration and safe for concurrent use.
type Client struct {
	httpClient *http.Client
	admission  *ratelimit.Admission
	config     Config
	logger     zerolog.Logger
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry max attempts must be >= 1 (got %d)", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay < 0 {
		return nil, fmt.Errorf("retry base delay must not be negative")
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		admission:  cfg.Admission,
		config:     cfg,
		logger:     logging.NewLogger(logging.ComponentClient),
	}, nil
}

// Fetch performs one logical GET of url. Rate-limited attempts are retried
// with linear backoff; any other failure is returned as an *UpstreamError
// on first occurrence.
func (c *Client) Fetch(ctx context.Context, url string) (*Response, error) {
	endpoint := swapi.EndpointLabel(url)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	var out *Response
	err := retryWithBackoff(ctx, c.config.Retry, func(attempt int) error {
		resp, err := c.attempt(ctx, url, endpoint, attempt)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetJSON fetches url and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, url, err)
	}
	return nil
}

// attempt performs a single HTTP round trip while holding an admission slot.
func (c *Client) attempt(ctx context.Context, url, endpoint string, attempt int) (*Response, error) {
	if err := c.admission.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.admission.Release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("url", url).
		Int("attempt", attempt).
		Msg("Executing upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("url", url).Msg("HTTP request failed")
		return nil, &UpstreamError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read body",
			Err:        err,
		}
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		errClass := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Upstream request error")

		upErr := &UpstreamError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
			Attempts:   attempt,
		}
		if resp.StatusCode == http.StatusNotFound {
			upErr.Err = ErrNotFound
		}
		return nil, upErr
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

// classifyStatus categorizes an HTTP error status.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	default:
		return ErrorClassServer
	}
}

// Package execution calls the remote code-execution service that runs a
// learner's solution against test cases.
package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"
)

// ErrRateLimited is returned when the local rate limit rejects a run.
var ErrRateLimited = errors.New("execution: rate limit exceeded")

// StatusError is a non-2xx response from the execution service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("execution service returned status %d: %s", e.Code, e.Body)
}

// Config configures a Client.
type Config struct {
	BaseURL string

	// Timeout bounds a single HTTP attempt (default: 30s)
	Timeout time.Duration

	// MaxAttempts including the first (default: 3)
	MaxAttempts int

	// InitialDelay before the first retry (default: 500ms)
	InitialDelay time.Duration

	// MaxConcurrent runs in flight (default: 4)
	MaxConcurrent int

	// RatePerSecond allowed runs (default: 5)
	RatePerSecond int

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client runs code through the execution service with retry, circuit
// breaking, concurrency limiting and rate limiting.
type Client struct {
	baseURL        string
	http           *http.Client
	circuitBreaker circuitbreaker.CircuitBreaker[*Result]
	retrier        retry.Retry[*Result]
	bulkhead       bulkhead.Bulkhead[*Result]
	rateLimit      ratelimit.RateLimiter
	logger         *slog.Logger
	closeOnce      sync.Once
}

// NewClient creates a client for the service at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("execution: base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 500 * time.Millisecond
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = newHTTPClient(cfg.Timeout)
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
	}

	c.circuitBreaker = circuitbreaker.New[*Result](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			c.logger.Warn("execution circuit breaker state change",
				"from", from.String(),
				"to", to.String())
		},
	})

	c.retrier = retry.New[*Result](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      10 * cfg.InitialDelay,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isRetryable,
	})

	c.bulkhead = bulkhead.New[*Result](bulkhead.Config{
		MaxConcurrent: cfg.MaxConcurrent,
		MaxQueue:      cfg.MaxConcurrent * 2,
		QueueTimeout:  cfg.Timeout,
	})

	c.rateLimit = ratelimit.New(&ratelimit.Config{
		Rate:     cfg.RatePerSecond,
		Burst:    cfg.RatePerSecond * 3,
		Interval: time.Second,
	})

	return c, nil
}

// Run submits req and returns the service's result. A result whose Success
// is false is still a successful call: it carries the failing test cases.
func (c *Client) Run(ctx context.Context, req Request) (*Result, error) {
	if !c.rateLimit.Allow(ctx, "execute") {
		return nil, ErrRateLimited
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	attempt := func(ctx context.Context) (*Result, error) {
		return c.bulkhead.Execute(ctx, func(ctx context.Context) (*Result, error) {
			return c.post(ctx, body)
		})
	}

	start := time.Now()
	res, err := c.circuitBreaker.Execute(ctx, func(ctx context.Context) (*Result, error) {
		return c.retrier.Do(ctx, attempt)
	})
	if err != nil {
		c.logger.Warn("execution failed", "function", req.FunctionName, "error", err)
		return nil, err
	}

	c.logger.Debug("execution complete",
		"function", req.FunctionName,
		"passed", res.Passed(),
		"total", len(res.TestResults),
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call execution service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &res, nil
}

// Close releases the rate limiter. Later calls are no-ops.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.rateLimit.Close() })
	return err
}

// isRetryable retries network errors and 429/5xx responses.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

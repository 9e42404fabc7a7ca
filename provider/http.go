package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Hamza-spc/CountryCompare/errors"
	"github.com/Hamza-spc/CountryCompare/pkg/retry"
)

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps decoded responses. The full country catalog is well below it.
const maxBodySize = 16 << 20

// Recorder receives request outcomes. *metric.Metrics implements it.
type Recorder interface {
	RecordProviderRequest(provider, status string, duration time.Duration)
	RecordProviderRetry(provider string)
}

// Client performs JSON GET requests against one upstream provider, retrying
// transient failures with exponential backoff.
type Client struct {
	name     string
	http     *http.Client
	retry    retry.Config
	logger   *slog.Logger
	recorder Recorder
	limiter  *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithRetry sets the backoff policy. Retryable and OnRetry are owned by the client.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithRateLimit caps outgoing requests, retries included, at perSecond with
// the given burst. A non-positive rate leaves requests unthrottled. Each
// client built with the option gets its own limiter.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder reports request counts, latencies and retries.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// NewClient creates a client for the named provider.
func NewClient(name string, opts ...Option) *Client {
	c := &Client{
		name:   name,
		http:   &http.Client{Timeout: DefaultTimeout},
		retry:  retry.Provider(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("provider", name)

	c.retry.Retryable = errors.IsTransient
	c.retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.logger.Warn("Retrying provider request", "attempt", attempt, "delay", delay, "error", err)
		if c.recorder != nil {
			c.recorder.RecordProviderRetry(c.name)
		}
	}
	return c
}

// Name returns the provider name used in logs and metrics.
func (c *Client) Name() string {
	return c.name
}

// GetJSON fetches url and decodes the body into out.
//
// Network failures, 429 and 5xx responses are transient and retried. 404
// returns an invalid-class error wrapping errors.ErrCountryNotFound; other
// 4xx responses and undecodable bodies are invalid and not retried.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return retry.Do(ctx, c.retry, func() error {
		return c.get(ctx, url, out)
	})
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			// Waiting again cannot succeed once the deadline is too close.
			return retry.NonRetryable(errors.WrapTransient(err, c.name, "GetJSON", "wait for rate limit"))
		}
	}

	start := time.Now()
	status := "error"
	defer func() {
		if c.recorder != nil {
			c.recorder.RecordProviderRequest(c.name, status, time.Since(start))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WrapInvalid(err, c.name, "GetJSON", "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.WrapTransient(ctx.Err(), c.name, "GetJSON", "request cancelled")
		}
		return errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrProviderUnavailable, err),
			c.name, "GetJSON", "send request")
	}
	defer resp.Body.Close()

	status = fmt.Sprintf("%d", resp.StatusCode)

	if err := classifyStatus(resp.StatusCode, c.name); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return err
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			c.name, "GetJSON", "decode response")
	}
	return nil
}

func classifyStatus(code int, name string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.WrapInvalid(errors.ErrCountryNotFound, name, "GetJSON", "HTTP 404")
	case code == http.StatusTooManyRequests:
		return errors.WrapTransient(errors.ErrRateLimited, name, "GetJSON", "HTTP 429")
	case code >= 500:
		return errors.WrapTransient(errors.ErrProviderUnavailable, name, "GetJSON",
			fmt.Sprintf("HTTP %d", code))
	default:
		return errors.WrapInvalid(errors.ErrInvalidData, name, "GetJSON",
			fmt.Sprintf("HTTP %d", code))
	}
}

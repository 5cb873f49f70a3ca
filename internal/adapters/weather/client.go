// Package weather fetches hourly forecasts from Open-Meteo. Calls go through
// a circuit breaker and are retried with backoff on 429 and 5xx responses.
package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/cragcast/pkg/logger"
	"github.com/okian/cragcast/pkg/metrics"
	"github.com/sony/gobreaker/v2"
)

// Defaults for the client.
const (
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	defaultTimeout = 5 * time.Second
	userAgent      = "cragcast/1.0"
)

// RetryPolicy configures retries of failed upstream calls.
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, MinWait: 250 * time.Millisecond, MaxWait: 5 * time.Second}
}

// Client is an Open-Meteo forecast client.
type Client struct {
	baseURL  string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	retry    RetryPolicy
	pastDays int
	sleep    func(context.Context, time.Duration) error
	log      logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		if p.MaxRetries >= 0 {
			c.retry = p
		}
	}
}

// WithPastDays sets how many past days are fetched to seed precipitation.
func WithPastDays(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.pastDays = n
		}
	}
}

// WithBreaker replaces the circuit breaker.
func WithBreaker(cb *gobreaker.CircuitBreaker[*http.Response]) Option {
	return func(c *Client) {
		if cb != nil {
			c.breaker = cb
		}
	}
}

// WithSleepFunc overrides the wait between retries.
func WithSleepFunc(fn func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewBreaker returns the breaker settings used by default: it opens after
// five consecutive failures and probes again after thirty seconds.
func NewBreaker(name string) *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// NewClient creates an Open-Meteo client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		http:     &http.Client{Timeout: defaultTimeout},
		breaker:  NewBreaker("open-meteo"),
		retry:    DefaultRetryPolicy(),
		pastDays: 2,
		sleep:    sleepCtx,
		log:      logger.Get().Named("weather"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends req, retrying 429 and 5xx responses. The caller closes the body
// of a returned response.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	var lastResp *http.Response
	var lastErr error
	attempts := 1 + c.retry.MaxRetries
	for attempt := 0; attempt < attempts; attempt++ {
		start := time.Now()
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			r, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= http.StatusInternalServerError || r.StatusCode == http.StatusTooManyRequests {
				return r, fmt.Errorf("upstream returned %d", r.StatusCode)
			}
			return r, nil
		})
		latency := float64(time.Since(start).Milliseconds())

		if err == nil {
			metrics.RecordUpstreamRequest("success", latency)
			return resp, nil
		}
		if lastResp != nil {
			_ = lastResp.Body.Close()
		}
		lastResp, lastErr = resp, err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordUpstreamRequest("breaker_open", latency)
			break
		}
		metrics.RecordUpstreamRequest("failure", latency)
		if req.Context().Err() != nil {
			break
		}
		if attempt < attempts-1 {
			wait := c.backoff(attempt, resp)
			c.log.Warn(req.Context(), "retrying weather request",
				logger.Int("attempt", attempt+1), logger.Duration("wait", wait), logger.Error(err))
			if err := c.sleep(req.Context(), wait); err != nil {
				break
			}
		}
	}

	if lastResp != nil {
		_ = lastResp.Body.Close()
	}
	return nil, mapError(lastResp, lastErr)
}

// backoff honors Retry-After, otherwise uses jittered exponential backoff
// clamped to the policy bounds.
func (c *Client) backoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				return min(time.Duration(secs)*time.Second, c.retry.MaxWait)
			}
			if t, err := http.ParseTime(ra); err == nil {
				return max(c.retry.MinWait, min(time.Until(t), c.retry.MaxWait))
			}
		}
	}
	ceiling := math.Min(float64(c.retry.MinWait)*math.Pow(2, float64(attempt)), float64(c.retry.MaxWait))
	floor := float64(c.retry.MinWait)
	if ceiling <= floor {
		return c.retry.MinWait
	}
	return time.Duration(floor + rand.Float64()*(ceiling-floor)) //nolint:gosec // jitter
}

func mapError(resp *http.Response, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case resp != nil && resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

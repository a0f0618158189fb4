package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Client is a wrapper for HTTP client with rate limiting and bounded concurrency
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	BaseURL    string

	slots           chan struct{}
	maxRetries      int
	maxRetryTimeout time.Duration
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	BaseURL         string
	Timeout         time.Duration
	MaxConcurrent   int
	MinInterval     time.Duration
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new HTTP client. At most MaxConcurrent requests are in flight and
// request starts are spaced at least MinInterval apart.
func NewClient(opts ClientOptions) *Client {
	// Set default values if not provided
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if opts.MinInterval < 0 {
		opts.MinInterval = 0
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 30 * time.Second
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Limiter:         rate.NewLimiter(limit, 1),
		BaseURL:         opts.BaseURL,
		slots:           make(chan struct{}, opts.MaxConcurrent),
		maxRetries:      opts.MaxRetries,
		maxRetryTimeout: opts.MaxRetryTimeout,
	}
}

// Get fetches BaseURL+path with the query params and returns the body of a 200 response
func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.DoRequest(ctx, req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		return err
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = c.maxRetryTimeout

	var strategy backoff.BackOff = backoffStrategy
	if c.maxRetries > 0 {
		strategy = backoff.WithMaxRetries(strategy, uint64(c.maxRetries))
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("url", endpoint).Dur("retry_in", wait).Msg("Request failed, retrying")
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(strategy, ctx), notify); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return body, nil
}

// DoRequest performs one HTTP request under the concurrency and interval limits.
// Non-200 responses are closed and returned as *HTTPStatusError; 4xx other than 429 are permanent.
func (c *Client) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	select {
	case c.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, backoff.Permanent(ctx.Err())
	}
	defer func() { <-c.slots }()

	// Wait for rate limiter
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(statusErr)
		}
		return nil, statusErr
	}

	return resp, nil
}

// HTTPStatusError represents an error due to a non-200 HTTP status code
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("non-200 status code: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

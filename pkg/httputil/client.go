package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/markstack/pkg/cache"
	"github.com/matzehuels/markstack/pkg/observability"
)

const httpTimeout = 10 * time.Second

// maxBody caps downloaded bodies; font files are well below this.
const maxBody = 32 << 20

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Client performs GET requests with default headers and an optional cache.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	headers map[string]string
}

// NewClient creates a Client. A nil cache disables caching.
// Headers are applied to all requests made through this client.
func NewClient(c cache.Cache, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   c,
		headers: headers,
	}
}

// WithHTTPClient replaces the underlying *http.Client and returns c.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Cached returns the bytes stored under key, or runs fetch with retry and
// stores its result for ttl. Cache errors are ignored; a broken cache only
// costs a download.
func (c *Client) Cached(ctx context.Context, key string, ttl time.Duration, fetch func() ([]byte, error)) ([]byte, error) {
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var ferr error
		data, ferr = fetch()
		return ferr
	})
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, key, data, ttl)
	return data, nil
}

// GetBytes performs an HTTP GET and returns the response body.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	return c.GetBytesWithHeaders(ctx, url, nil)
}

// GetBytesWithHeaders performs an HTTP GET with additional headers merged
// with the defaults. Request-specific headers win.
func (c *Client) GetBytesWithHeaders(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, maxBody))
	if err != nil {
		return nil, Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

package integrations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/matzehuels/mavenclosure/pkg/cache"
	"github.com/matzehuels/mavenclosure/pkg/observability"
)

// maxBodySize bounds a single response body. Descriptors are small; anything
// larger is not something we want to parse.
const maxBodySize = 16 << 20

// Client provides shared repository access: HTTP or local file reads,
// response caching, optional retries and default request headers.
//
// All methods are safe for concurrent use.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	retries   int
	delay     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = NewHTTPClient(d) }
}

// WithRetries makes the client retry transient failures n more times with
// exponential backoff starting at delay. The default is no retries.
func WithRetries(n int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = max(n, 0)
		if delay > 0 {
			c.delay = delay
		}
	}
}

// WithKeyer sets how cache keys are built.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// NewClient creates a Client with the given cache, key namespace, entry TTL
// and default headers. Pass nil for the cache to disable caching and nil for
// headers if no default headers are needed.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string, opts ...Option) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	cl := &Client{
		http:      NewHTTPClient(DefaultTimeout),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
		delay:     time.Second,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Cached returns the document at location, serving it from the cache when
// possible. If refresh is true the cache is bypassed for reading. If store is
// false the response is not written back, which callers use for mutable
// documents.
func (c *Client) Cached(ctx context.Context, location string, refresh, store bool) ([]byte, error) {
	key := c.keyer.HTTPKey(c.namespace, location)
	if !refresh {
		data, hit, err := c.cache.Get(ctx, key)
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "http")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}

	data, err := c.Get(ctx, location)
	if err != nil {
		return nil, err
	}
	if store {
		if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
			observability.Cache().OnCacheSet(ctx, "http", len(data))
		}
	}
	return data, nil
}

// Get fetches the document at location without consulting the cache.
// Transient failures are retried as configured with [WithRetries].
func (c *Client) Get(ctx context.Context, location string) ([]byte, error) {
	var data []byte
	err := cache.Retry(ctx, c.retries+1, c.delay, func() error {
		var err error
		data, err = c.fetch(ctx, location)
		return err
	})
	return data, err
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, location string, headers map[string]string) ([]byte, error) {
	body, err := c.doRequest(ctx, location, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return readBody(body)
}

func (c *Client) fetch(ctx context.Context, location string) ([]byte, error) {
	if IsLocal(location) {
		return readLocal(LocalPath(location))
	}
	return c.GetWithHeaders(ctx, location, nil)
}

func readLocal(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return data, nil
}

func readBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	if len(data) > maxBodySize {
		return nil, fmt.Errorf("%w: response larger than %d bytes", ErrNetwork, maxBodySize)
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, location string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("%w (%s)", err, location)
	}
	return resp.Body, nil
}

func hostPath(u *url.URL) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.Host, u.Path
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

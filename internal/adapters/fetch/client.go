// Package fetch is the shared upstream JSON client: cached, retried and
// collapsed per URL.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/idpscout/pkg/logger"
	"github.com/okian/idpscout/pkg/metrics"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
	defaultTimeout       = 10 * time.Second
	maxBodyBytes         = 32 << 20
	cacheKeyPrefix       = "fetch:"
)

// Client performs GET requests against one upstream and decodes JSON.
type Client struct {
	http        *http.Client
	userAgent   string
	maxAttempts int
	backoff     time.Duration
	cache       Cache
	provider    string
	log         logger.Logger
	group       singleflight.Group
}

// NewClient returns a Client with defaults overridden by opts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: defaultTimeout},
		userAgent:   "idpscout/1.0",
		maxAttempts: defaultRetryAttempts,
		backoff:     defaultBackoff,
		provider:    "upstream",
		log:         logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("fetch").With(logger.String("provider", c.provider))
	return c
}

// GetJSON decodes the body at url into out. A cached body younger than ttl
// is used when available; ttl <= 0 bypasses the cache. Concurrent calls for
// the same url share one request.
func (c *Client) GetJSON(ctx context.Context, url string, ttl time.Duration, out any) error {
	body, err := c.Get(ctx, url, ttl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		metrics.RecordUpstreamError(c.provider, "decode")
		return fmt.Errorf("%w: %s: %w", ErrDecode, url, err)
	}
	return nil
}

// Get returns the raw body at url, through the cache.
func (c *Client) Get(ctx context.Context, url string, ttl time.Duration) ([]byte, error) {
	useCache := c.cache != nil && ttl > 0
	if useCache {
		if body, ok := c.lookup(ctx, url); ok {
			return body, nil
		}
	}

	ch := c.group.DoChan(url, func() (any, error) {
		// The shared request outlives any single caller's cancellation.
		rctx := context.WithoutCancel(ctx)
		body, err := c.fetchWithRetry(rctx, url)
		if err != nil {
			return nil, err
		}
		if useCache {
			if err := c.cache.Set(rctx, cacheKeyPrefix+url, body, ttl); err != nil {
				c.log.Warn(ctx, "cache write failed", logger.String("url", url), logger.Error(err))
			}
		}
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) lookup(ctx context.Context, url string) ([]byte, bool) {
	body, ok, err := c.cache.Get(ctx, cacheKeyPrefix+url)
	if err != nil {
		c.log.Warn(ctx, "cache read failed", logger.String("url", url), logger.Error(err))
		return nil, false
	}
	if !ok {
		metrics.RecordCacheMiss(c.cache.Backend())
		return nil, false
	}
	metrics.RecordCacheHit(c.cache.Backend())
	return body, true
}

func (c *Client) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		body, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.maxAttempts {
			break
		}

		c.log.Warn(ctx, "upstream retry",
			logger.String("url", url),
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", c.maxAttempts),
			logger.Error(err),
		)

		delay := time.Duration(attempt) * c.backoff
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RecordUpstreamLatency(c.provider, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamError(c.provider, "transport")
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		metrics.RecordUpstreamError(c.provider, "status")
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordUpstreamError(c.provider, "transport")
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	return body, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}

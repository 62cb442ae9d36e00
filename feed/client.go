package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// ErrDailyLimitExceeded is returned when the feed provider rejects a request
// for quota reasons (HTTP 429).
var ErrDailyLimitExceeded = errors.New("feed: provider quota exceeded")

const defaultMaxPayload = 4 << 20

type Client struct {
	key        string
	http       *retryablehttp.Client
	limiter    *rate.Limiter
	maxPayload int64
}

type Option func(*Client)

// WithRateLimit caps outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func WithMaxPayload(n int64) Option {
	return func(c *Client) { c.maxPayload = n }
}

func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = max
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 6 * time.Second
	rc.Logger = nil
	// 429 is surfaced as a quota error instead of being retried.
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	c := &Client{
		key:        apiKey,
		http:       rc,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		maxPayload: defaultMaxPayload,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch downloads a listing feed document. The body is returned untouched;
// callers decode it through listing.DecodeAll.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	if c.key != "" {
		req.Header.Set("apikey", c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrDailyLimitExceeded
	}
	if resp.StatusCode >= 400 {
		var body map[string]any
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
		return nil, fmt.Errorf("feed error %d: %v", resp.StatusCode, body)
	}
	return ioReadAllLimit(resp.Body, c.maxPayload)
}

func ioReadAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}

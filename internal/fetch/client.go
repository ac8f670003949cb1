package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/metrics"
	"metadata-enricher/internal/record"
)

const (
	// DefaultTimeout bounds every single request.
	DefaultTimeout = 3 * time.Second
	// DefaultUserAgent identifies the enricher to remote services.
	DefaultUserAgent = "metadata-enricher/1.0"
	// DefaultMaxBodySize limits the bytes read from one response.
	DefaultMaxBodySize int64 = 8 << 20

	kindJSON  = "json"
	kindBytes = "bytes"
)

// Client fetches JSON documents and raw bytes over HTTP.
type Client struct {
	http        *http.Client
	limiter     *rate.Limiter
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimiter makes every request wait on l first.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBodySize limits the response body size.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics enables fetch instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client with the defaults above.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{},
		userAgent:   DefaultUserAgent,
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchJSON retrieves url and decodes the body into a record.
func (c *Client) FetchJSON(ctx context.Context, url string) (*record.Record, error) {
	body, err := c.get(ctx, url, kindJSON)
	if err != nil {
		return nil, err
	}

	rec, err := Decode(bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapParse(err, "Client", "FetchJSON", "decode "+url)
	}

	return rec, nil
}

// FetchBytes retrieves url and returns the raw body.
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url, kindBytes)
}

func (c *Client) get(ctx context.Context, url, kind string) (body []byte, err error) {
	start := time.Now()

	defer func() {
		c.metrics.RecordFetch(kind, err == nil, time.Since(start), len(body))
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.classify(err, url, "wait for rate limiter")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapConfiguration(
			fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err), "Client", "Fetch", "build request")
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")

	c.logger.DebugContext(ctx, "fetching", "url", url, "kind", kind)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(err, url, "request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode > http.StatusBadRequest {
		return nil, errors.WrapFetch(
			fmt.Errorf("%w: %d %s", errors.ErrHTTPStatus, resp.StatusCode, strings.TrimSpace(http.StatusText(resp.StatusCode))),
			"Client", "Fetch", "GET "+url)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, c.classify(err, url, "read body")
	}

	if int64(len(body)) > c.maxBodySize {
		return nil, errors.WrapParse(
			fmt.Errorf("%w: body exceeds %d bytes", errors.ErrMalformedBody, c.maxBodySize),
			"Client", "Fetch", "read body")
	}

	c.logger.DebugContext(ctx, "fetched", "url", url, "status", resp.StatusCode, "bytes", len(body))

	return body, nil
}

func (c *Client) classify(err error, url, action string) error {
	var netErr net.Error

	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		err = fmt.Errorf("%w after %s: %w", errors.ErrTimeout, c.timeout, err)
	}

	return errors.WrapFetch(err, "Client", "Fetch", action+" "+url)
}

// SniffImage reports the detected content type of data and whether it is an
// image.
func SniffImage(data []byte) (string, bool) {
	ct := http.DetectContentType(data)
	return ct, strings.HasPrefix(ct, "image/")
}

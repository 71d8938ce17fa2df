// Package iconify is the HTTP client for the Iconify-compatible icon API.
//
// Every call goes through a circuit breaker and a retry loop. Callers that
// must never fail (provider adapters) convert errors into empty results themselves.
package iconify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/icon"
)

const (
	// DefaultBaseURL is the public Iconify API.
	DefaultBaseURL = "https://api.iconify.design"

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize caps response bodies (8MB).
	MaxResponseSize = 8 * 1024 * 1024

	// DefaultUserAgent identifies this client to the upstream.
	DefaultUserAgent = "iconify-aggregator/1.0"
)

// Observer receives one call per upstream attempt.
type Observer interface {
	ObserveUpstream(endpoint, outcome string, d time.Duration)
}

// SearchParams is a single upstream search request.
type SearchParams struct {
	Query    string
	Prefixes []string
	Limit    int
	Offset   int
}

// Collection is the per-prefix metadata the search endpoint returns.
type Collection struct {
	Name     string `json:"name"`
	Total    int    `json:"total,omitempty"`
	Category string `json:"category,omitempty"`
}

// SearchResponse is the decoded search payload.
type SearchResponse struct {
	Icons       []string              `json:"icons"`
	Total       int                   `json:"total"`
	Limit       int                   `json:"limit"`
	Start       int                   `json:"start"`
	Collections map[string]Collection `json:"collections"`
}

// Client talks to the icon API.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	retry     errors.RetryConfig
	breaker   *errors.CircuitBreaker
	observer  Observer
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API host, e.g. a self-hosted mirror.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRetry sets the retry policy.
func WithRetry(cfg errors.RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithCircuitBreaker sets the breaker shared by all calls.
func WithCircuitBreaker(cb *errors.CircuitBreaker) Option {
	return func(c *Client) {
		if cb != nil {
			c.breaker = cb
		}
	}
}

// WithObserver reports every attempt to o.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client with defaults for the public API.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		http:      &http.Client{Timeout: DefaultTimeout},
		retry:     errors.DefaultRetryConfig(),
		breaker:   errors.NewCircuitBreaker("iconify-api"),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Breaker exposes the circuit breaker for health reporting.
func (c *Client) Breaker() *errors.CircuitBreaker {
	return c.breaker
}

// SearchURL builds the search request URL for p.
func (c *Client) SearchURL(p SearchParams) string {
	q := url.Values{}
	if p.Query != "" {
		q.Set("query", p.Query)
	}
	if len(p.Prefixes) > 0 {
		q.Set("prefix", strings.Join(p.Prefixes, ","))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	return c.baseURL + "/search?" + q.Encode()
}

// Search runs one search request.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResponse, error) {
	u := c.SearchURL(p)
	body, err := c.get(ctx, "search", u, "application/json")
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.New(errors.ErrCodeUpstreamDecode, "invalid search response", err).
			WithDetail("url", u)
	}
	return &resp, nil
}

// SVGURL builds the SVG request URL for qn rendered with opts.
func (c *Client) SVGURL(qn icon.QualifiedName, opts icon.SVGOptions) string {
	opts = opts.WithDefaults()
	size := strconv.Itoa(opts.Size)

	q := url.Values{}
	q.Set("width", size)
	q.Set("height", size)
	if opts.StrokeWidth > 0 {
		q.Set("stroke-width", strconv.FormatFloat(opts.StrokeWidth, 'f', -1, 64))
	}
	if color := opts.ColorParam(); color != "" {
		q.Set("color", color)
	}
	return fmt.Sprintf("%s/%s/%s.svg?%s", c.baseURL, url.PathEscape(qn.Prefix), url.PathEscape(qn.Name), q.Encode())
}

// SVG fetches the vector document for qn as served by the API.
func (c *Client) SVG(ctx context.Context, qn icon.QualifiedName, opts icon.SVGOptions) ([]byte, error) {
	return c.get(ctx, "svg", c.SVGURL(qn, opts), "image/svg+xml")
}

func (c *Client) get(ctx context.Context, endpoint, u, accept string) ([]byte, error) {
	return errors.CircuitExecute(c.breaker, func() ([]byte, error) {
		return errors.RetryWithResult(ctx, c.retry, func() ([]byte, error) {
			start := time.Now()
			body, err := c.do(ctx, u, accept)
			c.observe(endpoint, err, time.Since(start))
			if err != nil {
				c.logger.Debug("upstream_request_failed",
					slog.String("endpoint", endpoint),
					slog.String("url", u),
					slog.String("error", err.Error()))
			}
			return body, err
		})
	})
}

func (c *Client) do(ctx context.Context, u, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.ValidationError("failed to create request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var ne net.Error
		if stderrors.As(err, &ne) && ne.Timeout() {
			return nil, errors.New(errors.ErrCodeUpstreamTimeout, "request timed out", err).WithDetail("url", u)
		}
		return nil, errors.UpstreamError("failed to execute request", err).WithDetail("url", u)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.StatusError(resp.StatusCode, u)
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, errors.New(errors.ErrCodeResponseTooLarge,
			fmt.Sprintf("response size %d bytes exceeds maximum of %d bytes", resp.ContentLength, MaxResponseSize), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, errors.UpstreamError("failed to read response body", err)
	}
	if len(body) > MaxResponseSize {
		return nil, errors.New(errors.ErrCodeResponseTooLarge,
			fmt.Sprintf("response exceeds maximum of %d bytes", MaxResponseSize), nil)
	}
	return body, nil
}

func (c *Client) observe(endpoint string, err error, d time.Duration) {
	if c.observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(string(errors.GetCategory(err)))
		if outcome == "" {
			outcome = "error"
		}
		if code := errors.GetCode(err); code == errors.ErrCodeUpstreamStatus || code == errors.ErrCodeUpstreamRejected {
			outcome = "http_error"
		}
	}
	c.observer.ObserveUpstream(endpoint, outcome, d)
}

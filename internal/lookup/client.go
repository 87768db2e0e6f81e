package lookup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/munscan/internal/model"
)

// StationHeader carries the station name so the server can record who
// scanned a delegate.
const StationHeader = "X-Munscan-Station"

// defaultMaxBodySize caps the response body when Options.MaxBodySize is zero.
const defaultMaxBodySize = 5 * 1024 * 1024

// Options configures a Client.
type Options struct {
	// BaseURL is the lookup server, e.g. "http://localhost:8080".
	// A path prefix is kept: "https://host/mun" looks up "https://host/mun/scan/{id}".
	BaseURL string

	// Cookie is added to every request.
	Cookie string

	// Headers are added to every request.
	Headers map[string]string

	// ProxyURL routes requests through an HTTP proxy when set.
	ProxyURL string

	// UserAgent is sent as the User-Agent header when set.
	UserAgent string

	// StationName is sent in StationHeader when set.
	StationName string

	// MaxBodySize caps how many bytes of the response are read.
	MaxBodySize int64

	// Selectors locate the card and the already-scanned marker.
	Selectors Selectors
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. The cookie and header
// injection is installed on top of its transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// Client performs delegate lookups. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	maxBody   int64
	selectors Selectors
	logger    *slog.Logger
}

// NewClient creates a Client from opts.
func NewClient(opts Options, options ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, opts.BaseURL)
	}

	c := &Client{
		base:      base,
		maxBody:   opts.MaxBodySize,
		selectors: opts.Selectors.withDefaults(),
		logger:    slog.Default(),
	}
	if c.maxBody <= 0 {
		c.maxBody = defaultMaxBodySize
	}
	for _, opt := range options {
		opt(c)
	}

	if c.http == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.ProxyURL != "" {
			proxy, err := url.Parse(opts.ProxyURL)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy URL: %w", err)
			}
			transport.Proxy = http.ProxyURL(proxy)
		}
		c.http = &http.Client{Transport: transport}
	}

	headers := make(map[string]string, len(opts.Headers)+3)
	headers["Accept"] = "text/html"
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}
	if opts.StationName != "" {
		headers[StationHeader] = opts.StationName
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	rt := c.http.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	injected := *c.http
	injected.Transport = &headerInjectingTransport{
		base:    rt,
		cookie:  opts.Cookie,
		headers: headers,
	}
	c.http = &injected

	c.logger.Debug("lookup client ready",
		"server", c.base.String(),
		"cookie", opts.Cookie,
		"headers", headers,
		"proxy", opts.ProxyURL,
	)
	return c, nil
}

// URLFor returns the lookup URL for id. The identifier is path-escaped.
func (c *Client) URLFor(id model.DelegateID) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/scan/" + string(id)
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + "/scan/" + url.PathEscape(string(id))
	return u.String()
}

// Lookup fetches and parses the delegate page for id.
//
// Transport failures are returned wrapped in ErrTransport and non-2xx
// statuses as *HTTPStatusError. A 2xx response always yields a Result, even
// when the page has no card.
func (c *Client) Lookup(ctx context.Context, id model.DelegateID) (Result, error) {
	body, err := c.fetch(ctx, c.URLFor(id))
	if err != nil {
		return Result{}, err
	}
	return ParseResponse(id, body, c.selectors), nil
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	c.logger.Debug("lookup request", "url", u)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}
	if int64(len(body)) > c.maxBody {
		c.logger.Debug("lookup response truncated", "url", u, "limit", c.maxBody)
		body = body[:c.maxBody]
	}
	c.logger.Debug("lookup response", "url", u, "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

// headerInjectingTransport wraps an http.RoundTripper to inject the
// station cookie and headers into every request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}

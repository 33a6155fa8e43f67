package httpclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithTokenSource sets the accessor read before every call.
// If not set, requests are sent unauthenticated.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithHTTPClient sets a custom http.Client for making requests.
// The client's cookie jar and transport are used as given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-call timeout of the default http.Client.
// If not set, defaults to 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithInsecureTLS skips certificate verification, for self-signed staging backends.
func WithInsecureTLS(skip bool) Option {
	return func(c *Client) {
		c.insecureTLS = skip
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithUnauthorizedHandler registers a handler at construction time.
// See Client.OnUnauthorized.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) {
		c.unauthorized = append(c.unauthorized, h)
	}
}

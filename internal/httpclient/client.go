// Package httpclient issues calls against the admin backend and normalizes
// their outcome: a decoded payload, a "no content" result, or a typed error.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "adminctl"

	// RequestIDHeader carries a per-call identifier for server-side correlation.
	RequestIDHeader = "X-Request-ID"
)

// TokenSource provides the bearer token for outgoing calls.
// An empty token means the call is sent unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// UnauthorizedHandler is notified once for every call answered with 401.
type UnauthorizedHandler interface {
	HandleUnauthorized(ctx context.Context, err *RequestError)
}

// UnauthorizedHandlerFunc adapts a function to UnauthorizedHandler.
type UnauthorizedHandlerFunc func(ctx context.Context, err *RequestError)

// HandleUnauthorized calls f.
func (f UnauthorizedHandlerFunc) HandleUnauthorized(ctx context.Context, err *RequestError) {
	f(ctx, err)
}

// Request describes a single call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Body   any
	// Header overrides are applied after the defaults.
	Header http.Header
	// Multipart sends Body, which must be a *Form, as multipart/form-data.
	Multipart bool
	// Credentials marks a sign-in call. Its 401 means the credentials were
	// wrong and is not passed to unauthorized handlers.
	Credentials bool
}

// Outcome describes a successful response.
type Outcome struct {
	StatusCode int
	NoContent  bool
	Header     http.Header
}

// Result is a typed successful response. Value is the zero value when NoContent is set.
type Result[T any] struct {
	Value      T
	StatusCode int
	NoContent  bool
}

// Client represents an HTTP client for the admin API
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenSource
	timeout     time.Duration
	insecureTLS bool
	userAgent   string
	log         zerolog.Logger

	mu           sync.RWMutex
	unauthorized []UnauthorizedHandler
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		log:       zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if c.insecureTLS {
			transport.TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}

		// Error is always nil with a non-nil options struct.
		jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: transport,
			Jar:       jar,
		}
	}

	return c
}

// BaseURL returns the base URL every path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnUnauthorized registers a handler invoked for every 401 response.
func (c *Client) OnUnauthorized(h UnauthorizedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unauthorized = append(c.unauthorized, h)
}

// Do performs the call and decodes a JSON response into out when the
// response has content. out may be nil to discard the body.
func (c *Client) Do(ctx context.Context, req Request, out any) (*Outcome, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	if !allowedMethod(method) {
		return nil, fmt.Errorf("unsupported method %q", method)
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := ulid.Make().String()
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(RequestIDHeader, requestID)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read token: %w", err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for key, values := range req.Header {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	log := c.log.With().
		Str("method", method).
		Str("path", req.Path).
		Str("request_id", requestID).
		Logger()

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Debug().Err(err).Msg("request failed")
		return nil, &TransportError{Method: method, Path: req.Path, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: req.Path, Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &RequestError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data, resp.StatusCode),
			Method:     method,
			Path:       req.Path,
		}
		if reqErr.Unauthorized() && !req.Credentials {
			c.notifyUnauthorized(context.WithoutCancel(ctx), reqErr)
		}
		return nil, reqErr
	}

	outcome := &Outcome{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		outcome.NoContent = true
		return outcome, nil
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return outcome, nil
}

// Send performs the call and returns the response decoded as T.
func Send[T any](ctx context.Context, c *Client, req Request) (Result[T], error) {
	var res Result[T]
	outcome, err := c.Do(ctx, req, &res.Value)
	if err != nil {
		return res, err
	}
	res.StatusCode = outcome.StatusCode
	res.NoContent = outcome.NoContent
	return res, nil
}

func (c *Client) notifyUnauthorized(ctx context.Context, err *RequestError) {
	c.mu.RLock()
	handlers := make([]UnauthorizedHandler, len(c.unauthorized))
	copy(handlers, c.unauthorized)
	c.mu.RUnlock()

	for _, h := range handlers {
		h.HandleUnauthorized(ctx, err)
	}
}

func allowedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Multipart {
		form, ok := req.Body.(*Form)
		if !ok && req.Body != nil {
			return nil, "", fmt.Errorf("multipart body must be *httpclient.Form, got %T", req.Body)
		}
		if form == nil {
			form = NewForm()
		}
		return form.encode()
	}

	if req.Body == nil {
		return nil, "application/json", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// errorMessage prefers a message carried by a JSON error body.
func errorMessage(body []byte, status int) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return genericMessage(status)
}

package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnauthorized matches a RequestError carrying status 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransport matches failures where no HTTP response was received.
	ErrTransport = errors.New("transport failure")
)

// RequestError is returned for every non-2xx response.
type RequestError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Message is the server-provided message, or a generic one built from the status.
	Message string
	Method  string
	Path    string
}

// Error returns the human-readable message.
func (e *RequestError) Error() string {
	return e.Message
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrUnauthorized) for 401 responses.
func (e *RequestError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Unauthorized reports whether the response was a 401.
func (e *RequestError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// TransportError is returned when the request never reached the server or the
// response never arrived, including cancellation through the context.
type TransportError struct {
	Method string
	Path   string
	Cause  error
}

// Error returns a description of the failed call.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrTransport).
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// genericMessage is used when the error body carries no usable message.
func genericMessage(status int) string {
	return fmt.Sprintf("Request failed with status %d", status)
}

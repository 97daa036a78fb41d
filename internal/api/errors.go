// Package api - errors.go defines the error taxonomy shared by every layer of
// the engine client.
//
// Every call made through the client returns either a decoded body or exactly
// one of the errors below, possibly wrapped with additional context. Callers
// should test for them with errors.Is and errors.As rather than comparing
// error strings:
//
//	body, err := c.Call("GET", "/containers/json", nil, "")
//	var remote *api.RemoteError
//	switch {
//	case errors.As(err, &remote):
//	    fmt.Printf("engine rejected request (%d): %s\n", remote.Status, remote.Message)
//	case errors.Is(err, api.ErrConnectionLost):
//	    // reconnect if desired
//	}
package api

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	// ErrInvalidAddress is returned when a connection string is not of the
	// form "<unix|tcp>://<location>".
	ErrInvalidAddress = errors.New("invalid address")

	// ErrConnect is returned when the byte stream to the engine cannot be
	// opened.
	ErrConnect = errors.New("connect failed")

	// ErrTLSConfiguration is returned when the key, certificate or CA
	// material cannot be loaded or validated. It is a kind of ErrConnect.
	ErrTLSConfiguration = fmt.Errorf("%w: tls configuration", ErrConnect)

	// ErrConnectionLost is returned when the connection closes or fails in
	// the middle of a round trip. The connection is unusable afterwards.
	ErrConnectionLost = errors.New("connection lost")

	// ErrMalformedStatusLine is returned when a response does not start with
	// a status line carrying a 3-digit status code.
	ErrMalformedStatusLine = errors.New("malformed status line")

	// ErrMalformedHeader is returned for header lines without a colon and for
	// unusable Content-Length values.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrChunkedDecode is returned when a chunked body has an invalid size
	// line or ends before its terminating chunk.
	ErrChunkedDecode = errors.New("chunked decode error")

	// ErrTruncatedBody is returned when the connection closes before
	// Content-Length bytes of body were received.
	ErrTruncatedBody = errors.New("truncated body")

	// ErrEncoding is returned when a text body is not valid UTF-8.
	ErrEncoding = errors.New("invalid utf-8 in body")

	// ErrMalformedStream is returned when a concatenated JSON object stream
	// cannot be split into complete objects.
	ErrMalformedStream = errors.New("malformed json stream")
)

// RemoteError is returned when the engine answered with a non-2xx status.
//
// Status and Message are preserved verbatim for display. Message is the
// "message" field of the JSON error body when there is one, and the raw body
// text otherwise.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("engine returned status %d", e.Status)
	}
	return fmt.Sprintf("engine returned status %d: %s", e.Status, e.Message)
}

// Unwrap maps the status code onto a containerd errdefs class so callers can
// write errdefs.IsNotFound(err) without knowing HTTP status codes.
func (e *RemoteError) Unwrap() error {
	switch {
	case e.Status == 400:
		return errdefs.ErrInvalidArgument
	case e.Status == 401:
		return errdefs.ErrUnauthenticated
	case e.Status == 403:
		return errdefs.ErrPermissionDenied
	case e.Status == 404:
		return errdefs.ErrNotFound
	case e.Status == 409:
		return errdefs.ErrConflict
	case e.Status == 501:
		return errdefs.ErrNotImplemented
	case e.Status == 503:
		return errdefs.ErrUnavailable
	case e.Status >= 500:
		return errdefs.ErrInternal
	default:
		return errdefs.ErrUnknown
	}
}

// ErrorResponse is the JSON error body returned by the engine on non-2xx
// responses.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Package client - request.go implements the low-level call helpers.
//
// This file provides the path and query assembly used by all API methods in
// the client, and turns connection failures into an actionable message.
package client

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/tsingmao/enginectl/internal/api"
)

// doRequest performs a JSON call.
//
// This is an internal helper used by every record and list operation. The
// request body is marshaled from reqBody when non-nil and the response body
// is unmarshaled into respBody when non-nil.
//
// Parameters:
//   - method: HTTP method (GET, POST, etc.)
//   - path: API endpoint path without version prefix (e.g., "/containers/json")
//   - query: Query parameters (nil for none)
//   - reqBody: Request body to serialize (nil for no body)
//   - respBody: Pointer to struct for response deserialization (nil to ignore)
//
// Returns:
//   - nil if the call succeeds
//   - *api.RemoteError if the engine answers with a non-2xx status
//   - A transport or framing error otherwise
func (c *Client) doRequest(method, path string, query url.Values, reqBody, respBody interface{}) error {
	err := c.d.CallJSON(method, withQuery(path, query), reqBody, respBody)
	return c.check(err)
}

// doStream performs a call against an endpoint that answers with
// back-to-back JSON records and decodes them into out, a slice pointer.
func (c *Client) doStream(method, path string, query url.Values, body []byte, contentType string, out interface{}) error {
	err := c.d.CallStreamJSON(method, withQuery(path, query), body, contentType, out)
	return c.check(err)
}

// doText performs a call and returns the body as text.
func (c *Client) doText(method, path string, query url.Values) (string, error) {
	text, err := c.d.CallText(method, withQuery(path, query), nil, "")
	return text, c.check(err)
}

// doRaw performs a call and returns the body bytes undecoded.
func (c *Client) doRaw(method, path string, query url.Values) ([]byte, error) {
	data, err := c.d.CallRaw(method, withQuery(path, query), nil, "")
	return data, c.check(err)
}

func (c *Client) check(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrConnectionLost) {
		return fmt.Errorf("lost connection to engine at %s: %w", c.host, err)
	}
	return err
}

// connectError decorates a failure to reach the engine with a hint.
func connectError(host string, err error) error {
	if errors.Is(err, api.ErrConnect) && !errors.Is(err, api.ErrTLSConfiguration) {
		return fmt.Errorf("cannot connect to the engine at %s, is it running?: %w", host, err)
	}
	return err
}

// withQuery appends the encoded query to path. Keys are emitted in sorted
// order.
func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// segment escapes a user-supplied identifier for use as one path segment.
func segment(id string) string {
	return url.PathEscape(id)
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

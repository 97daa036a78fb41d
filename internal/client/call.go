// Package client - call.go implements the round trip behind every call.
//
// This file builds the request, writes it once, reads until the response
// parser reports a complete response, and classifies the status code.
package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/tsingmao/enginectl/internal/api"
	"github.com/tsingmao/enginectl/internal/httpwire"
	"github.com/tsingmao/enginectl/internal/jsonstream"
	"github.com/tsingmao/enginectl/internal/logger"
)

const readChunk = 32 * 1024

// Call performs one round trip and returns the parsed response.
//
// path is relative to the API version prefix and must already carry its
// query string; it is sent without escaping. An empty contentType means
// application/json.
//
// Returns:
//   - The response, for any 2xx status
//   - *api.RemoteError for any other status
//   - A transport or framing error from the api taxonomy otherwise
//
// No call is ever retried.
func (c *Client) Call(method, path string, body []byte, contentType string) (*httpwire.Response, error) {
	if err := c.conn.Broken(); err != nil {
		return nil, err
	}

	req := httpwire.NewRequest(method, c.versioned(path), body, contentType)
	callID := uuid.NewString()[:8]
	logger.Debug("[%s] %s %s (%d bytes, %s)", callID, req.Method(), req.Path(), len(body), req.ContentType())

	if _, err := c.conn.Write(req.Bytes(c.addr.HostHeader())); err != nil {
		return nil, err
	}

	resp, err := c.readResponse(method)
	if err != nil {
		logger.Debug("[%s] failed: %v", callID, err)
		return nil, err
	}
	logger.Debug("[%s] %d %s (%d bytes, %s)", callID, resp.StatusCode, resp.Reason, len(resp.Body), resp.Framing)

	if !resp.IsSuccess() {
		return nil, remoteError(resp)
	}
	return resp, nil
}

// CallText performs a call and returns the body as UTF-8 text.
func (c *Client) CallText(method, path string, body []byte, contentType string) (string, error) {
	resp, err := c.Call(method, path, body, contentType)
	if err != nil {
		return "", err
	}
	return resp.Text()
}

// CallRaw performs a call and returns the body bytes without UTF-8
// decoding. It is used for binary exports.
func (c *Client) CallRaw(method, path string, body []byte, contentType string) ([]byte, error) {
	resp, err := c.Call(method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// CallStream performs a call to an endpoint that answers with back-to-back
// JSON objects and returns them repaired into a JSON array.
//
// It must only be used for endpoints documented to stream; a body holding a
// single JSON array would be rejected as malformed.
func (c *Client) CallStream(method, path string, body []byte, contentType string) (string, error) {
	text, err := c.CallText(method, path, body, contentType)
	if err != nil {
		return "", err
	}
	return jsonstream.Repair(text)
}

// CallJSON marshals in (when non-nil) as the request body, performs the
// call and unmarshals the response into out (when non-nil).
func (c *Client) CallJSON(method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = data
	}

	text, err := c.CallText(method, path, body, httpwire.ContentTypeJSON)
	if err != nil {
		return err
	}
	return decode(text, out)
}

// CallStreamJSON performs a streaming call and unmarshals the repaired
// array into out, which must point to a slice.
func (c *Client) CallStreamJSON(method, path string, body []byte, contentType string, out interface{}) error {
	text, err := c.CallStream(method, path, body, contentType)
	if err != nil {
		return err
	}
	return decode(text, out)
}

func decode(text string, out interface{}) error {
	if out == nil {
		return nil
	}
	if err := json.UnmarshalFromString(text, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) versioned(path string) string {
	return "/v" + c.version + path
}

// readResponse reads until the parser can produce a complete response.
//
// A parse or framing error leaves unread bytes of the broken response on
// the stream, so the connection is invalidated before the error is returned.
func (c *Client) readResponse(method string) (*httpwire.Response, error) {
	parser := httpwire.NewParser(method)
	chunk := make([]byte, readChunk)
	eof := false

	for {
		n, err := c.conn.Read(chunk)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}
			eof = true
		}

		resp, perr := parser.Feed(chunk[:n], eof)
		switch {
		case perr == nil:
			return resp, nil
		case errors.Is(perr, httpwire.ErrNeedMore) && !eof:
			continue
		default:
			c.conn.Invalidate(perr)
			return nil, perr
		}
	}
}

// remoteError builds the error for a non-2xx response. The "message" field
// of a JSON body is preferred; any other body is reported verbatim.
func remoteError(resp *httpwire.Response) *api.RemoteError {
	msg := string(resp.Body)
	var errResp api.ErrorResponse
	if err := json.Unmarshal(bytes.TrimSpace(resp.Body), &errResp); err == nil && errResp.Message != "" {
		msg = errResp.Message
	}
	return &api.RemoteError{Status: resp.StatusCode, Message: msg}
}

// Package client provides the engine API operations used by the enginectl
// commands.
//
// This package maps every supported engine operation onto one call of the
// dispatcher in internal/client. It provides:
//   - One method per engine endpoint, grouped by resource
//   - Query string assembly for the fixed parameters of each endpoint
//   - Decoding of list, record and progress-stream responses
//
// The package does not know how bytes reach the engine; it only knows the
// verb, path and payload of each operation.
//
// Example usage:
//
//	c, err := client.NewClient(cfg.ClientOptions())
//	if err != nil {
//	    log.Fatalf("Failed to connect: %v", err)
//	}
//	defer c.Close()
//
//	containers, err := c.ListContainers(true)
//	if err != nil {
//	    log.Fatalf("Failed to list containers: %v", err)
//	}
package client

import (
	engine "github.com/tsingmao/enginectl/internal/client"
)

// Dispatcher performs single round trips against the engine.
//
// *engine.Locked satisfies it; tests may substitute their own.
type Dispatcher interface {
	CallText(method, path string, body []byte, contentType string) (string, error)
	CallRaw(method, path string, body []byte, contentType string) ([]byte, error)
	CallJSON(method, path string, in, out interface{}) error
	CallStreamJSON(method, path string, body []byte, contentType string, out interface{}) error
	Reconnect() error
	Close() error
}

// Client exposes the engine operations.
//
// All methods are safe for concurrent use when the dispatcher is, which is
// the case for clients created by NewClient.
type Client struct {
	// d carries every call.
	d Dispatcher

	// host is the connection string, used in error messages.
	host string
}

// NewClient connects to the engine described by opts.
//
// Parameters:
//   - opts: Connection string, optional TLS material and API version
//
// Returns:
//   - A connected Client
//   - An error if the address is invalid or the engine cannot be reached
//
// Example:
//
//	c, err := client.NewClient(engine.Options{Host: "unix:///var/run/docker.sock"})
//	ver, err := c.Version()
func NewClient(opts engine.Options) (*Client, error) {
	ec, err := engine.New(opts)
	if err != nil {
		return nil, connectError(opts.Host, err)
	}
	return &Client{d: engine.NewLocked(ec), host: opts.Host}, nil
}

// New builds a Client over an existing dispatcher.
func New(d Dispatcher, host string) *Client {
	return &Client{d: d, host: host}
}

// Host returns the connection string of the engine.
func (c *Client) Host() string {
	return c.host
}

// Reconnect redials the engine. It is needed after a close-delimited
// response such as a bounded event stream.
func (c *Client) Reconnect() error {
	if err := c.d.Reconnect(); err != nil {
		return connectError(c.host, err)
	}
	return nil
}

// Close closes the connection to the engine.
func (c *Client) Close() error {
	return c.d.Close()
}

// Package client provides the call dispatcher for communicating with the
// engine control plane.
//
// This package sits on top of the transport and wire layers and turns a
// verb+path+payload triple into a decoded body. It provides:
//   - Connection setup from a connection string, resolved once
//   - One synchronous round trip per call on a single connection
//   - Status classification into success or api.RemoteError
//   - Text, raw-byte, JSON and repaired-stream views of a response body
//
// A Client owns exactly one connection and is not safe for concurrent use.
// Wrap it with NewLocked when several goroutines share it.
//
// Example usage:
//
//	c, err := client.New(client.Options{Host: "unix:///var/run/docker.sock"})
//	if err != nil {
//	    log.Fatalf("Failed to connect: %v", err)
//	}
//	defer c.Close()
//
//	var version api.Version
//	if err := c.CallJSON("GET", "/version", nil, &version); err != nil {
//	    log.Fatalf("Failed to get version: %v", err)
//	}
package client

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/tsingmao/enginectl/internal/api"
	"github.com/tsingmao/enginectl/internal/transport"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configures a Client.
type Options struct {
	// Host is the connection string, "unix://<path>" or "tcp://<host:port>".
	Host string

	// TLS, when set, secures a tcp connection with client certificates.
	TLS *transport.TLSBundle

	// APIVersion is prefixed to every request path as "/v<APIVersion>".
	// Empty means api.DefaultVersion.
	APIVersion string
}

// Client is the call dispatcher for one engine connection.
//
// The connection is opened by New and reused by every call. After an I/O
// failure, or after a response that was delimited by connection close, the
// connection is gone and every call fails fast with api.ErrConnectionLost
// until Reconnect is called. The client never reconnects on its own.
type Client struct {
	// addr is the resolved engine address.
	addr *transport.Address

	// conn is the single byte stream to the engine.
	conn *transport.Conn

	// version is the API version prefixed to request paths, e.g. "1.24".
	version string
}

// New resolves opts.Host and connects to the engine.
//
// Parameters:
//   - opts: Connection string, optional TLS material and API version
//
// Returns:
//   - A connected Client
//   - api.ErrInvalidAddress if the host cannot be parsed
//   - api.ErrConnect or api.ErrTLSConfiguration if connecting fails
func New(opts Options) (*Client, error) {
	addr, err := transport.ParseAddress(opts.Host)
	if err != nil {
		return nil, err
	}
	if opts.TLS != nil {
		if addr, err = addr.WithTLS(*opts.TLS); err != nil {
			return nil, err
		}
	}

	conn, err := transport.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to engine at %s: %w", addr, err)
	}
	return NewWithConn(conn, opts.APIVersion), nil
}

// NewWithConn builds a Client over an already open connection.
func NewWithConn(conn *transport.Conn, version string) *Client {
	if version == "" {
		version = api.DefaultVersion
	}
	return &Client{
		addr:    conn.Address(),
		conn:    conn,
		version: strings.TrimPrefix(version, "v"),
	}
}

// Address returns the engine address the client is connected to.
func (c *Client) Address() *transport.Address {
	return c.addr
}

// APIVersion returns the API version prefixed to request paths.
func (c *Client) APIVersion() string {
	return c.version
}

// Reconnect closes the current connection and dials the same address again.
func (c *Client) Reconnect() error {
	c.conn.Close()
	conn, err := transport.Dial(c.addr)
	if err != nil {
		return fmt.Errorf("failed to reconnect to engine at %s: %w", c.addr, err)
	}
	c.conn = conn
	return nil
}

// Close closes the connection. Later calls fail with api.ErrConnectionLost.
func (c *Client) Close() error {
	return c.conn.Close()
}

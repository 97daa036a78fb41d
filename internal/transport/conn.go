package transport

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/tsingmao/enginectl/internal/api"
	"github.com/tsingmao/enginectl/internal/logger"
)

// Conn owns the single byte stream between a client and the engine.
//
// Write and Read are blocking single-shot operations with no internal retry.
// Once a read or write fails, or the peer closes the stream, the Conn is
// broken and every later Write or Read fails fast with api.ErrConnectionLost.
//
// A Conn is not safe for concurrent use by two round trips: a read could
// consume bytes belonging to another request.
type Conn struct {
	addr *Address
	raw  net.Conn

	mu     sync.Mutex
	broken error
	closed bool
}

// Dial opens the byte stream described by addr.
//
// For a tcp address carrying a TLS bundle the TLS context is built and the
// handshake completed before Dial returns. Dial failures are returned as
// api.ErrConnect; TLS material and certificate verification failures as
// api.ErrTLSConfiguration.
func Dial(addr *Address) (*Conn, error) {
	switch addr.Kind {
	case KindUnix:
		logger.Debug("dialing unix socket %s", addr.Path)
		raw, err := net.Dial("unix", addr.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", api.ErrConnect, err)
		}
		return Wrap(addr, raw), nil

	case KindTCP:
		var tlsCfg *tls.Config
		if addr.TLS != nil {
			cfg, err := LoadTLSConfig(*addr.TLS, addr.Host)
			if err != nil {
				return nil, err
			}
			tlsCfg = cfg
		}

		target := net.JoinHostPort(addr.Host, addr.Port)
		logger.Debug("dialing tcp %s (tls=%t)", target, tlsCfg != nil)
		raw, err := net.Dial("tcp", target)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", api.ErrConnect, err)
		}
		if tlsCfg == nil {
			return Wrap(addr, raw), nil
		}

		tlsConn := tls.Client(raw, tlsCfg)
		if err := tlsConn.Handshake(); err != nil {
			raw.Close()
			return nil, handshakeError(target, err)
		}
		return Wrap(addr, tlsConn), nil

	default:
		return nil, fmt.Errorf("%w: unknown address kind %d", api.ErrInvalidAddress, addr.Kind)
	}
}

// handshakeError classifies a failed handshake. Only certificate problems,
// found by us or reported by the engine, are configuration errors; a reset
// or a timeout is an ordinary connect failure.
func handshakeError(target string, err error) error {
	var (
		verr  *tls.CertificateVerificationError
		alert tls.AlertError
	)
	switch {
	case errors.As(err, &verr):
		return fmt.Errorf("%w: handshake with %s: %v", api.ErrTLSConfiguration, target, err)
	case errors.As(err, &alert) && certificateAlerts[alert]:
		return fmt.Errorf("%w: handshake with %s: %v", api.ErrTLSConfiguration, target, err)
	default:
		return fmt.Errorf("%w: handshake with %s: %v", api.ErrConnect, target, err)
	}
}

// certificateAlerts are the alerts a peer sends when it rejects the
// certificate we presented or the one it was asked to trust.
var certificateAlerts = map[tls.AlertError]bool{
	42:  true, // bad_certificate
	43:  true, // unsupported_certificate
	44:  true, // certificate_revoked
	45:  true, // certificate_expired
	46:  true, // certificate_unknown
	48:  true, // unknown_ca
	116: true, // certificate_required
}

// Wrap adopts an already open stream. It is used by Dial and by tests that
// serve the engine side themselves.
func Wrap(addr *Address, raw net.Conn) *Conn {
	return &Conn{addr: addr, raw: raw}
}

// Address returns the address the connection was opened for.
func (c *Conn) Address() *Address {
	return c.addr
}

// Write sends p in full or fails.
func (c *Conn) Write(p []byte) (int, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	n, err := c.raw.Write(p)
	if err != nil {
		return n, c.fail(err)
	}
	return n, nil
}

// Read performs one read. A zero-byte read at end of stream is reported as
// api.ErrConnectionLost wrapping io.EOF, so callers that frame bodies by
// connection close can tell an orderly close from an I/O failure.
func (c *Conn) Read(p []byte) (int, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	n, err := c.raw.Read(p)
	if err != nil {
		return n, c.fail(err)
	}
	if n == 0 && len(p) > 0 {
		return 0, c.fail(io.EOF)
	}
	return n, nil
}

// SetDeadline bounds the next reads and writes. The transport never imposes
// a deadline of its own.
func (c *Conn) SetDeadline(t time.Time) error {
	return c.raw.SetDeadline(t)
}

// Broken reports the error that invalidated the connection, if any.
func (c *Conn) Broken() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.broken
}

// Close closes the stream. It is safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.broken == nil {
		c.broken = fmt.Errorf("%w: connection closed", api.ErrConnectionLost)
	}
	return c.raw.Close()
}

// Invalidate marks the connection broken because of err, typically a
// response that could not be framed. Later reads and writes fail fast with
// api.ErrConnectionLost. It has no effect on a connection already broken.
func (c *Conn) Invalidate(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken != nil {
		return
	}
	c.broken = fmt.Errorf("%w: stream out of sync: %v", api.ErrConnectionLost, err)
	logger.Warn("connection to %s invalidated: %v", c.addr, err)
}

func (c *Conn) usable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.broken
}

func (c *Conn) fail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken != nil {
		return c.broken
	}
	if errors.Is(err, io.EOF) {
		c.broken = fmt.Errorf("%w: %w", api.ErrConnectionLost, io.EOF)
	} else {
		c.broken = fmt.Errorf("%w: %v", api.ErrConnectionLost, err)
		logger.Warn("connection to %s lost: %v", c.addr, err)
	}
	return c.broken
}

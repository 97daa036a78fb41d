package client

import (
	"sync"

	"github.com/tsingmao/enginectl/internal/httpwire"
)

// Locked serializes calls on a shared Client so that a response read never
// consumes bytes belonging to another goroutine's request.
type Locked struct {
	mu sync.Mutex
	c  *Client
}

// NewLocked wraps c. c must not be used directly afterwards.
func NewLocked(c *Client) *Locked {
	return &Locked{c: c}
}

// Do runs fn with exclusive access to the client, for sequences of calls
// that must not interleave with other goroutines.
func (l *Locked) Do(fn func(c *Client) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.c)
}

// Call is Client.Call under the lock.
func (l *Locked) Call(method, path string, body []byte, contentType string) (*httpwire.Response, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Call(method, path, body, contentType)
}

// CallText is Client.CallText under the lock.
func (l *Locked) CallText(method, path string, body []byte, contentType string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.CallText(method, path, body, contentType)
}

// CallRaw is Client.CallRaw under the lock.
func (l *Locked) CallRaw(method, path string, body []byte, contentType string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.CallRaw(method, path, body, contentType)
}

// CallStream is Client.CallStream under the lock.
func (l *Locked) CallStream(method, path string, body []byte, contentType string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.CallStream(method, path, body, contentType)
}

// CallJSON is Client.CallJSON under the lock.
func (l *Locked) CallJSON(method, path string, in, out interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.CallJSON(method, path, in, out)
}

// CallStreamJSON is Client.CallStreamJSON under the lock.
func (l *Locked) CallStreamJSON(method, path string, body []byte, contentType string, out interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.CallStreamJSON(method, path, body, contentType, out)
}

// Reconnect redials the engine.
func (l *Locked) Reconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Reconnect()
}

// Close closes the underlying client.
func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Close()
}

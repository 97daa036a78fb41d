// Package enginetest provides a scripted fake engine for tests.
//
// The fake listens on a temporary domain socket or a loopback TCP port
// (optionally with TLS), reads each request with net/http's parser, and
// answers with whatever raw bytes the test's handler writes. Handlers write
// bytes, not http.Responses, so framing edge cases (chunked streams, short
// bodies, bodies delimited by connection close) can be produced exactly.
package enginetest

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Request is a request received by the fake engine.
type Request struct {
	Method string
	Target string
	Header http.Header
	Body   []byte
}

// Handler answers one request by writing raw bytes to conn. Returning false
// closes the connection after the response.
type Handler func(req *Request, conn io.Writer) (keepOpen bool)

// Engine is a running fake engine.
type Engine struct {
	t        *testing.T
	listener net.Listener
	handler  Handler

	// Address is the connection string clients should dial.
	Address string

	mu       sync.Mutex
	requests []*Request
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// NewUnix starts a fake engine on a temporary domain socket.
func NewUnix(t *testing.T, h Handler) *Engine {
	t.Helper()
	// Socket paths are length limited, so avoid t.TempDir's long names.
	dir, err := os.MkdirTemp("", "ectl")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "engine.sock")
	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	return start(t, l, h, "unix://"+path)
}

// NewTCP starts a fake engine on a loopback TCP port.
func NewTCP(t *testing.T, h Handler) *Engine {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return start(t, l, h, "tcp://"+l.Addr().String())
}

// NewTLS starts a fake engine on a loopback TCP port that requires TLS with
// client certificates issued by pki.
func NewTLS(t *testing.T, pki *PKI, h Handler) *Engine {
	t.Helper()
	l, err := tls.Listen("tcp", "127.0.0.1:0", pki.ServerConfig(t))
	require.NoError(t, err)
	return start(t, l, h, "tcp://"+l.Addr().String())
}

func start(t *testing.T, l net.Listener, h Handler, addr string) *Engine {
	e := &Engine{t: t, listener: l, handler: h, Address: addr, conns: make(map[net.Conn]struct{})}
	e.wg.Add(1)
	go e.serve()
	t.Cleanup(e.Close)
	return e
}

// Close stops accepting connections, closes open ones and waits for their
// handlers to return.
func (e *Engine) Close() {
	e.listener.Close()
	e.mu.Lock()
	for c := range e.conns {
		c.Close()
	}
	e.mu.Unlock()
	e.wg.Wait()
}

// Requests returns the requests received so far.
func (e *Engine) Requests() []*Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Request, len(e.requests))
	copy(out, e.requests)
	return out
}

func (e *Engine) serve() {
	defer e.wg.Done()
	for {
		conn, err := e.listener.Accept()
		if err != nil {
			return
		}
		e.mu.Lock()
		e.conns[conn] = struct{}{}
		e.mu.Unlock()
		e.wg.Add(1)
		go e.handle(conn)
	}
}

func (e *Engine) handle(conn net.Conn) {
	defer e.wg.Done()
	defer func() {
		conn.Close()
		e.mu.Lock()
		delete(e.conns, conn)
		e.mu.Unlock()
	}()

	r := bufio.NewReader(conn)
	for {
		hreq, err := http.ReadRequest(r)
		if err != nil {
			return
		}
		body, err := io.ReadAll(hreq.Body)
		hreq.Body.Close()
		if err != nil {
			return
		}
		req := &Request{
			Method: hreq.Method,
			Target: hreq.RequestURI,
			Header: hreq.Header,
			Body:   body,
		}
		e.mu.Lock()
		e.requests = append(e.requests, req)
		e.mu.Unlock()

		if !e.handler(req, conn) {
			return
		}
	}
}

// JSON returns a handler that answers every request with status and a
// Content-Length framed body.
func JSON(status int, body string) Handler {
	return func(_ *Request, w io.Writer) bool {
		io.WriteString(w, Response(status, body))
		return true
	}
}

// Raw returns a handler that writes raw verbatim and then closes the
// connection when closeAfter is set.
func Raw(raw string, closeAfter bool) Handler {
	return func(_ *Request, w io.Writer) bool {
		io.WriteString(w, raw)
		return !closeAfter
	}
}

// Routes dispatches on "METHOD target" and answers 404 for anything else.
func Routes(routes map[string]Handler) Handler {
	return func(req *Request, w io.Writer) bool {
		if h, ok := routes[req.Method+" "+req.Target]; ok {
			return h(req, w)
		}
		io.WriteString(w, Response(404, fmt.Sprintf(`{"message":"no route for %s %s"}`, req.Method, req.Target)))
		return true
	}
}

// Response renders a Content-Length framed response.
func Response(status int, body string) string {
	return fmt.Sprintf("HTTP/1.1 %d %s\r\nContent-Type: application/json\r\nContent-Length: %s\r\n\r\n%s",
		status, http.StatusText(status), strconv.Itoa(len(body)), body)
}

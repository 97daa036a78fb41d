package httpwire

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/pkg/errors"

	"github.com/tsingmao/enginectl/internal/api"
)

// ErrNeedMore is returned by Parse when the bytes accumulated so far do not
// yet hold a complete response. It is not a protocol error: the caller must
// read more and call Parse again.
var ErrNeedMore = errors.New("need more bytes")

// Framing records how the end of a response body was determined.
type Framing int

const (
	// FramingNone means the response cannot carry a body (HEAD, 1xx, 204, 304).
	FramingNone Framing = iota
	// FramingLength means the body was delimited by Content-Length.
	FramingLength
	// FramingChunked means the body used chunked transfer encoding.
	FramingChunked
	// FramingClose means the body ran until the engine closed the connection.
	FramingClose
)

func (f Framing) String() string {
	switch f {
	case FramingLength:
		return "content-length"
	case FramingChunked:
		return "chunked"
	case FramingClose:
		return "close-delimited"
	default:
		return "none"
	}
}

// Response is a parsed response with its body already de-framed.
type Response struct {
	Proto      string
	StatusCode int
	Reason     string
	Header     Header
	Framing    Framing

	// Body holds the raw decoded body bytes. Binary endpoints use it
	// directly; everything else goes through Text.
	Body []byte
}

// Text returns the body as UTF-8 text, or api.ErrEncoding when it is not
// valid UTF-8.
func (r *Response) Text() (string, error) {
	if !utf8.Valid(r.Body) {
		return "", pkgerrors.Wrapf(api.ErrEncoding, "%d byte body", len(r.Body))
	}
	return string(r.Body), nil
}

// IsSuccess reports whether the status is in [200,300).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

var headerEnd = []byte("\r\n\r\n")

// Parse parses the response to a GET-like request from buf. See ParseFor.
func Parse(buf []byte, eof bool) (*Response, error) {
	return ParseFor("GET", buf, eof)
}

// ParseFor parses the response to a request made with method from buf, the
// bytes read from the connection so far. eof reports that the connection has
// closed and buf is final.
//
// While the response is incomplete and eof is false, ParseFor returns
// ErrNeedMore. Protocol errors are returned as api.ErrMalformedStatusLine,
// api.ErrMalformedHeader, api.ErrChunkedDecode or api.ErrTruncatedBody; a
// connection that closes before the header block ends yields
// api.ErrConnectionLost.
//
// Interim 1xx responses (other than 101) are skipped.
//
// ParseFor starts from scratch on every call. Readers that receive a
// response in pieces should use a Parser instead.
func ParseFor(method string, buf []byte, eof bool) (*Response, error) {
	return NewParser(method).Feed(buf, eof)
}

// Parser parses one response from bytes fed to it as they are read. Header
// and chunk boundaries already found are not searched again, so the cost of
// parsing stays linear in the response size however it is split.
type Parser struct {
	method string
	buf    []byte

	start   int // offset of the current header block
	scanned int // header block searched up to here without finding its end

	resp   *Response // set once the final header block is parsed
	body   int       // offset of the body in buf
	chunks chunkDecoder
}

// NewParser returns a Parser for the response to a request made with method.
func NewParser(method string) *Parser {
	return &Parser{method: method}
}

// Feed appends p to the bytes seen so far and tries to complete the
// response. Its results are those of ParseFor on all bytes fed so far. After
// Feed returns anything other than ErrNeedMore the Parser must not be fed
// again.
func (p *Parser) Feed(data []byte, eof bool) (*Response, error) {
	p.buf = append(p.buf, data...)

	if p.resp == nil {
		if err := p.parseHeadBlock(eof); err != nil {
			return nil, err
		}
	}
	if err := p.readBody(eof); err != nil {
		return nil, err
	}
	return p.resp, nil
}

func (p *Parser) parseHeadBlock(eof bool) error {
	for {
		idx := bytes.Index(p.buf[p.scanned:], headerEnd)
		if idx < 0 {
			if eof {
				return pkgerrors.Wrapf(api.ErrConnectionLost, "stream ended after %d bytes without a complete header block", len(p.buf)-p.start)
			}
			// the terminator may straddle the next read
			if n := len(p.buf) - len(headerEnd) + 1; n > p.scanned {
				p.scanned = n
			}
			return ErrNeedMore
		}
		end := p.scanned + idx

		resp, err := parseHead(p.buf[p.start:end])
		if err != nil {
			return err
		}
		next := end + len(headerEnd)
		if resp.StatusCode >= 100 && resp.StatusCode < 200 && resp.StatusCode != 101 {
			p.start, p.scanned = next, next
			continue
		}
		p.resp, p.body = resp, next
		return nil
	}
}

func parseHead(head []byte) (*Response, error) {
	lines := strings.Split(string(head), "\r\n")

	resp := &Response{}
	if err := resp.parseStatusLine(lines[0]); err != nil {
		return nil, err
	}

	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		// obsolete line folding continues the previous value
		if line[0] == ' ' || line[0] == '\t' {
			n := len(resp.Header.fields)
			if n == 0 {
				return nil, pkgerrors.Wrapf(api.ErrMalformedHeader, "continuation line %q before any field", line)
			}
			resp.Header.fields[n-1].Value += " " + strings.TrimSpace(line)
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			return nil, pkgerrors.Wrapf(api.ErrMalformedHeader, "header line %q", line)
		}
		resp.Header.Add(strings.TrimSpace(line[:colon]), strings.TrimSpace(line[colon+1:]))
	}
	return resp, nil
}

func (r *Response) parseStatusLine(line string) error {
	proto, rest, _ := strings.Cut(line, " ")
	if !strings.HasPrefix(proto, "HTTP/") {
		return pkgerrors.Wrapf(api.ErrMalformedStatusLine, "%q", line)
	}
	code, reason, _ := strings.Cut(strings.TrimLeft(rest, " "), " ")
	if len(code) != 3 {
		return pkgerrors.Wrapf(api.ErrMalformedStatusLine, "%q", line)
	}
	status, err := strconv.Atoi(code)
	if err != nil || status < 100 {
		return pkgerrors.Wrapf(api.ErrMalformedStatusLine, "%q", line)
	}
	r.Proto = proto
	r.StatusCode = status
	r.Reason = reason
	return nil
}

func (p *Parser) readBody(eof bool) error {
	r, rest := p.resp, p.buf[p.body:]

	if p.method == "HEAD" || r.StatusCode == 204 || r.StatusCode == 304 || r.StatusCode < 200 {
		r.Framing = FramingNone
		r.Body = []byte{}
		return nil
	}

	if isChunked(r.Header) {
		body, err := p.chunks.decode(rest, eof)
		if err != nil {
			return err
		}
		r.Framing = FramingChunked
		r.Body = body
		return nil
	}

	if r.Header.Has("Content-Length") {
		n, err := contentLength(r.Header)
		if err != nil {
			return err
		}
		if int64(len(rest)) < n {
			if eof {
				return pkgerrors.Wrapf(api.ErrTruncatedBody, "got %d of %d bytes", len(rest), n)
			}
			return ErrNeedMore
		}
		r.Framing = FramingLength
		r.Body = append([]byte(nil), rest[:n]...)
		return nil
	}

	if !eof {
		return ErrNeedMore
	}
	r.Framing = FramingClose
	r.Body = append([]byte(nil), rest...)
	return nil
}

func isChunked(h Header) bool {
	for _, v := range h.Values("Transfer-Encoding") {
		if strings.Contains(strings.ToLower(v), "chunked") {
			return true
		}
	}
	return false
}

// contentLength returns the declared body length. Repeated Content-Length
// fields must agree.
func contentLength(h Header) (int64, error) {
	var n int64 = -1
	for _, v := range h.Values("Content-Length") {
		got, err := strconv.ParseInt(v, 10, 64)
		if err != nil || got < 0 {
			return 0, pkgerrors.Wrapf(api.ErrMalformedHeader, "Content-Length %q", v)
		}
		if n >= 0 && got != n {
			return 0, pkgerrors.Wrapf(api.ErrMalformedHeader, "conflicting Content-Length values %d and %d", n, got)
		}
		n = got
	}
	return n, nil
}

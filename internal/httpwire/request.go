package httpwire

import (
	"bytes"
	"strconv"
)

// Content types used by the engine API.
const (
	ContentTypeJSON = "application/json"
	ContentTypeTar  = "application/x-tar"
)

// Request is an outbound request. It is immutable once built.
type Request struct {
	method      string
	path        string
	contentType string
	header      Header
	body        []byte
}

// NewRequest builds a request.
//
// path must already contain any query string. It is written to the wire as
// is: the builder performs no escaping or validation of path or query
// content, which is the caller's responsibility.
//
// An empty contentType means application/json. extra fields are emitted
// after the standard ones, in the order given.
func NewRequest(method, path string, body []byte, contentType string, extra ...Field) *Request {
	if contentType == "" {
		contentType = ContentTypeJSON
	}
	r := &Request{
		method:      method,
		path:        path,
		contentType: contentType,
		body:        append([]byte(nil), body...),
	}
	for _, f := range extra {
		r.header.Add(f.Name, f.Value)
	}
	return r
}

// Method returns the request method.
func (r *Request) Method() string { return r.method }

// Path returns the request target, including the query string.
func (r *Request) Path() string { return r.path }

// ContentType returns the Content-Type sent with the request.
func (r *Request) ContentType() string { return r.contentType }

// Header returns a copy of the caller-supplied extra fields.
func (r *Request) Header() Header { return r.header.clone() }

// Body returns a copy of the request body.
func (r *Request) Body() []byte { return append([]byte(nil), r.body...) }

// Bytes renders the exact bytes sent on the wire for host.
//
// Host, Content-Type, Accept and Content-Length are always present.
// Content-Length is sent even for empty bodies so the engine never waits
// for more input.
func (r *Request) Bytes(host string) []byte {
	var b bytes.Buffer
	b.Grow(128 + len(r.path) + len(r.body))

	b.WriteString(r.method)
	b.WriteByte(' ')
	b.WriteString(r.path)
	b.WriteString(" HTTP/1.1\r\n")

	writeField(&b, "Host", host)
	writeField(&b, "Content-Type", r.contentType)
	writeField(&b, "Accept", ContentTypeJSON)
	writeField(&b, "Content-Length", strconv.Itoa(len(r.body)))
	for _, f := range r.header.fields {
		writeField(&b, f.Name, f.Value)
	}
	b.WriteString("\r\n")
	b.Write(r.body)

	return b.Bytes()
}

func writeField(b *bytes.Buffer, name, value string) {
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

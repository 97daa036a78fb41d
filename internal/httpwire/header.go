// Package httpwire builds HTTP/1.1 request bytes and parses raw response
// bytes for the engine client.
//
// The package works on byte slices rather than on a connection: the caller
// accumulates what it has read so far and asks Parse whether a complete
// response is available. This keeps framing decisions (Content-Length,
// chunked, or read-until-close) in one place and makes every partial-read
// case testable without a socket.
package httpwire

import (
	"strings"
)

// Field is a single header line.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered list of header fields with case-insensitive lookup.
//
// Unlike net/http.Header, duplicates are kept as separate fields in the
// order they were added, so a response carrying two Content-Length lines can
// be detected instead of silently merged.
type Header struct {
	fields []Field
}

// Add appends a field. Existing fields with the same name are kept.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Get returns the value of the first field named name, or "".
func (h Header) Get(name string) string {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Values returns the values of every field named name, in order.
func (h Header) Values(name string) []string {
	var out []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Has reports whether at least one field is named name.
func (h Header) Has(name string) bool {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// Fields returns a copy of all fields in encounter order.
func (h Header) Fields() []Field {
	out := make([]Field, len(h.fields))
	copy(out, h.fields)
	return out
}

// Len returns the number of fields.
func (h Header) Len() int {
	return len(h.fields)
}

func (h Header) clone() Header {
	return Header{fields: h.Fields()}
}

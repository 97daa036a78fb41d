// Package jsonstream turns a body made of back-to-back JSON objects into a
// JSON array.
//
// Long-running engine endpoints (image pull, image build, events) write one
// progress object after another with no separator and no enclosing array:
//
//	{"status":"Pulling"}{"status":"Downloading","progress":"[==>  ]"}
//
// Splitting such a body on the literal "}{" corrupts any object whose string
// values contain that sequence. The scanner here tracks brace depth and
// string literal state instead, so only real object boundaries are split.
package jsonstream

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/tsingmao/enginectl/internal/api"
)

type scanState int

const (
	stateNormal scanState = iota
	stateInString
	stateEscaped
)

// Repair returns text as a JSON array of the objects it contains.
//
// Empty or all-whitespace input repairs to "[]". Input whose braces do not
// balance, or that holds anything but objects at the top level, is rejected
// with api.ErrMalformedStream.
func Repair(text string) (string, error) {
	docs, err := split(text)
	if err != nil {
		return "", err
	}
	return "[" + strings.Join(docs, ",") + "]", nil
}

// Split returns each top-level object of text as a separate document, in
// order. It applies the same rules as Repair.
func Split(text string) ([]json.RawMessage, error) {
	docs, err := split(text)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = json.RawMessage(d)
	}
	return out, nil
}

func split(text string) ([]string, error) {
	var (
		docs  []string
		state = stateNormal
		depth = 0
		start = -1
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch state {
		case stateEscaped:
			state = stateInString
			continue
		case stateInString:
			switch c {
			case '\\':
				state = stateEscaped
			case '"':
				state = stateNormal
			}
			continue
		}

		if depth == 0 {
			if isSpace(c) {
				continue
			}
			if c != '{' {
				return nil, errors.Wrapf(api.ErrMalformedStream, "unexpected %q at offset %d outside an object", c, i)
			}
			start = i
		}

		switch c {
		case '"':
			state = stateInString
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				docs = append(docs, text[start:i+1])
				start = -1
			}
		}
	}

	if state != stateNormal {
		return nil, errors.Wrap(api.ErrMalformedStream, "stream ends inside a string literal")
	}
	if depth != 0 {
		return nil, errors.Wrapf(api.ErrMalformedStream, "stream ends with %d unclosed objects", depth)
	}
	return docs, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

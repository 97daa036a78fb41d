package httpwire

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tsingmao/enginectl/internal/api"
)

var crlf = []byte("\r\n")

// chunkDecoder decodes a chunked body that arrives in pieces. Chunks are
// consumed once; a later call resumes at the first chunk not yet complete.
type chunkDecoder struct {
	pos  int // offset of the next chunk-size line
	body []byte
}

// decode continues decoding data, the whole chunked body seen so far.
//
// It returns the concatenated chunk payloads once the zero-length chunk and
// the trailer section have been seen. When data ends early it returns
// ErrNeedMore, or api.ErrChunkedDecode if eof says no more data will come.
// Chunk extensions are ignored and trailer fields are discarded.
func (d *chunkDecoder) decode(data []byte, eof bool) ([]byte, error) {
	incomplete := func(what string) ([]byte, error) {
		if eof {
			return nil, errors.Wrapf(api.ErrChunkedDecode, "stream ended inside %s after %d decoded bytes", what, len(d.body))
		}
		return nil, ErrNeedMore
	}

	for {
		idx := bytes.Index(data[d.pos:], crlf)
		if idx < 0 {
			return incomplete("chunk size line")
		}
		size, err := parseChunkSize(data[d.pos : d.pos+idx])
		if err != nil {
			return nil, err
		}
		start := d.pos + idx + len(crlf)

		if size == 0 {
			if err := skipTrailers(data[start:], eof); err != nil {
				return nil, err
			}
			return d.body, nil
		}

		if uint64(len(data)-start) < size+uint64(len(crlf)) {
			return incomplete("chunk payload")
		}
		end := start + int(size)
		if !bytes.Equal(data[end:end+len(crlf)], crlf) {
			return nil, errors.Wrapf(api.ErrChunkedDecode, "chunk of %d bytes not followed by CRLF", size)
		}
		d.body = append(d.body, data[start:end]...)
		d.pos = end + len(crlf)
	}
}

func parseChunkSize(line []byte) (uint64, error) {
	s := string(line)
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.Wrap(api.ErrChunkedDecode, "empty chunk size")
	}
	size, err := strconv.ParseUint(s, 16, 62)
	if err != nil {
		return 0, errors.Wrapf(api.ErrChunkedDecode, "invalid chunk size %q", s)
	}
	return size, nil
}

// skipTrailers consumes the trailer section following the last chunk. The
// zero-length chunk already terminated the payload, so a stream that closes
// before the final CRLF is accepted.
func skipTrailers(data []byte, eof bool) error {
	pos := 0
	for {
		idx := bytes.Index(data[pos:], crlf)
		if idx < 0 {
			if eof {
				return nil
			}
			return ErrNeedMore
		}
		if idx == 0 {
			return nil
		}
		pos += idx + len(crlf)
	}
}

// EncodeChunked frames p as a chunked body using chunks of at most size
// bytes, terminated by a zero-length chunk. A size below 1 sends p as a
// single chunk.
func EncodeChunked(p []byte, size int) []byte {
	if size < 1 {
		size = len(p)
	}
	var b bytes.Buffer
	for len(p) > 0 {
		n := size
		if n > len(p) {
			n = len(p)
		}
		b.WriteString(strconv.FormatInt(int64(n), 16))
		b.Write(crlf)
		b.Write(p[:n])
		b.Write(crlf)
		p = p[n:]
	}
	b.WriteString("0\r\n\r\n")
	return b.Bytes()
}

package httpwire

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsingmao/enginectl/internal/api"
)

func TestParseContentLength(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 7\r\n\r\n{\"a\":1}"

	resp, err := Parse([]byte(raw), false)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.Reason)
	assert.Equal(t, "HTTP/1.1", resp.Proto)
	assert.Equal(t, FramingLength, resp.Framing)
	assert.Equal(t, `{"a":1}`, string(resp.Body))
	assert.True(t, resp.IsSuccess())
}

func TestParseContentLengthTruncated(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n{\"a\":1}")

	_, err := Parse(raw, false)
	assert.ErrorIs(t, err, ErrNeedMore)

	_, err = Parse(raw, true)
	assert.ErrorIs(t, err, api.ErrTruncatedBody)
}

func TestParseHeaderNotYetComplete(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nContent-Len")

	_, err := Parse(raw, false)
	assert.ErrorIs(t, err, ErrNeedMore)

	_, err = Parse(raw, true)
	assert.ErrorIs(t, err, api.ErrConnectionLost)
}

func TestParseIncrementally(t *testing.T) {
	raw := []byte("HTTP/1.1 201 Created\r\nTransfer-Encoding: chunked\r\n\r\n" +
		string(EncodeChunked([]byte(`{"Id":"abc"}`), 4)))

	for i := 0; i < len(raw); i++ {
		_, err := Parse(raw[:i], false)
		require.ErrorIs(t, err, ErrNeedMore, "prefix of %d bytes", i)
	}
	resp, err := Parse(raw, false)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, `{"Id":"abc"}`, string(resp.Body))
}

func TestParseMalformedStatusLine(t *testing.T) {
	cases := []string{
		"HTTP/1.1 OK\r\n\r\n",
		"HTTP/1.1 2000 OK\r\n\r\n",
		"HTTP/1.1\r\n\r\n",
		"garbage 200 OK\r\n\r\n",
		"HTTP/1.1 2x0 OK\r\n\r\n",
		"HTTP/1.1 099 Low\r\n\r\n",
	}
	for _, raw := range cases {
		_, err := Parse([]byte(raw), true)
		assert.ErrorIs(t, err, api.ErrMalformedStatusLine, raw)
	}
}

func TestParseHeadersCaseInsensitiveAndDuplicates(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\n" +
		"content-length: 2\r\n" +
		"Set-Cookie: a=1\r\n" +
		"X-Folded: first\r\n" +
		"\tsecond\r\n" +
		"SET-COOKIE: b=2\r\n" +
		"\r\n{}"

	resp, err := Parse([]byte(raw), false)
	require.NoError(t, err)

	assert.Equal(t, resp.Header.Get("Content-Length"), resp.Header.Get("content-length"))
	assert.Equal(t, "2", resp.Header.Get("CONTENT-LENGTH"))
	assert.Equal(t, []string{"a=1", "b=2"}, resp.Header.Values("set-cookie"))
	assert.Equal(t, "first second", resp.Header.Get("x-folded"))
	assert.Equal(t, 4, resp.Header.Len())

	fields := resp.Header.Fields()
	assert.Equal(t, "Set-Cookie", fields[1].Name)
	assert.Equal(t, "SET-COOKIE", fields[3].Name)
}

func TestParseMalformedHeaders(t *testing.T) {
	cases := []string{
		"HTTP/1.1 200 OK\r\nNoColonHere\r\n\r\n",
		"HTTP/1.1 200 OK\r\n\tfold-first\r\n\r\n",
		"HTTP/1.1 200 OK\r\nContent-Length: ten\r\n\r\n",
		"HTTP/1.1 200 OK\r\nContent-Length: -1\r\n\r\n",
		"HTTP/1.1 200 OK\r\nContent-Length: 2\r\nContent-Length: 3\r\n\r\nabc",
	}
	for _, raw := range cases {
		_, err := Parse([]byte(raw), true)
		assert.ErrorIs(t, err, api.ErrMalformedHeader, raw)
	}
}

func TestParseRepeatedAgreeingContentLength(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 2\r\nContent-Length: 2\r\n\r\nok"
	resp, err := Parse([]byte(raw), false)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
}

func TestParseChunkedWinsOverContentLength(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 3\r\nTransfer-Encoding: gzip, Chunked\r\n\r\n" +
		"5\r\nhello\r\n0\r\n\r\n"
	resp, err := Parse([]byte(raw), false)
	require.NoError(t, err)
	assert.Equal(t, FramingChunked, resp.Framing)
	assert.Equal(t, "hello", string(resp.Body))
}

func TestParseCloseDelimited(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n{\"a\":1}{\"b\":2}")

	_, err := Parse(raw, false)
	assert.ErrorIs(t, err, ErrNeedMore)

	resp, err := Parse(raw, true)
	require.NoError(t, err)
	assert.Equal(t, FramingClose, resp.Framing)
	assert.Equal(t, `{"a":1}{"b":2}`, string(resp.Body))
}

func TestParseBodylessResponses(t *testing.T) {
	resp, err := Parse([]byte("HTTP/1.1 204 No Content\r\n\r\n"), false)
	require.NoError(t, err)
	assert.Equal(t, FramingNone, resp.Framing)
	assert.Empty(t, resp.Body)

	resp, err = Parse([]byte("HTTP/1.1 304 Not Modified\r\nContent-Length: 12\r\n\r\n"), false)
	require.NoError(t, err)
	assert.Empty(t, resp.Body)

	resp, err = ParseFor("HEAD", []byte("HTTP/1.1 200 OK\r\nContent-Length: 12\r\n\r\n"), false)
	require.NoError(t, err)
	assert.Equal(t, FramingNone, resp.Framing)
	assert.Empty(t, resp.Body)
}

func TestParseSkipsInterimResponses(t *testing.T) {
	raw := "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok"
	resp, err := Parse([]byte(raw), false)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ok", string(resp.Body))
}

func TestParserFeedMatchesParse(t *testing.T) {
	cases := map[string]string{
		"content-length": "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello",
		"chunked":        "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" + string(EncodeChunked([]byte("hello world"), 3)),
		"interim":        "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 201 Created\r\nTransfer-Encoding: chunked\r\n\r\n2\r\nok\r\n0\r\nX-A: 1\r\n\r\n",
		"no body":        "HTTP/1.1 204 No Content\r\n\r\n",
	}
	for name, raw := range cases {
		want, err := Parse([]byte(raw), false)
		require.NoError(t, err, name)

		p := NewParser("GET")
		for i := 0; i < len(raw)-1; i++ {
			_, err := p.Feed([]byte{raw[i]}, false)
			require.ErrorIs(t, err, ErrNeedMore, "%s: byte %d", name, i)
		}
		got, err := p.Feed([]byte{raw[len(raw)-1]}, false)
		require.NoError(t, err, name)
		assert.Equal(t, want.StatusCode, got.StatusCode, name)
		assert.Equal(t, want.Framing, got.Framing, name)
		assert.Equal(t, string(want.Body), string(got.Body), name)
	}
}

func TestParserCloseDelimitedAndErrors(t *testing.T) {
	p := NewParser("GET")
	_, err := p.Feed([]byte("HTTP/1.1 200 OK\r\n\r\n{\"a\""), false)
	require.ErrorIs(t, err, ErrNeedMore)
	resp, err := p.Feed([]byte(":1}"), true)
	require.NoError(t, err)
	assert.Equal(t, FramingClose, resp.Framing)
	assert.Equal(t, `{"a":1}`, string(resp.Body))

	p = NewParser("GET")
	_, err = p.Feed([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nab"), false)
	require.ErrorIs(t, err, ErrNeedMore)
	_, err = p.Feed([]byte("cd\r\nzz\r\n"), false)
	assert.ErrorIs(t, err, api.ErrChunkedDecode)
}

func TestParserKeepsDecodedChunks(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 10000)
	raw := append([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n"), EncodeChunked(payload, 1000)...)

	p := NewParser("GET")
	_, err := p.Feed(raw[:len(raw)/2], false)
	require.ErrorIs(t, err, ErrNeedMore)
	decoded := len(p.chunks.body)
	assert.Greater(t, decoded, 0)
	assert.Greater(t, p.chunks.pos, 0)

	resp, err := p.Feed(raw[len(raw)/2:], false)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, resp.Body))
}

func TestParserLargeChunkedBodyInReadSizedPieces(t *testing.T) {
	if testing.Short() {
		t.Skip("large body")
	}
	payload := bytes.Repeat([]byte("layer.tar "), 1600*1024) // ~16MB
	raw := append([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n"), EncodeChunked(payload, 4096)...)

	start := time.Now()
	p := NewParser("GET")
	var (
		resp *Response
		err  error
	)
	for off := 0; off < len(raw); off += 32 * 1024 {
		end := off + 32*1024
		if end > len(raw) {
			end = len(raw)
		}
		resp, err = p.Feed(raw[off:end], false)
		if end < len(raw) {
			require.ErrorIs(t, err, ErrNeedMore)
		}
	}
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, resp.Body))
	// rescanning from the start on every read takes several seconds here
	assert.Less(t, elapsed, 2*time.Second)
}

func TestChunkedRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sizes := []int{0, 1, 2, 15, 16, 17, 255, 4096, 70000}
	for _, n := range sizes {
		payload := make([]byte, n)
		rng.Read(payload)
		for _, chunk := range []int{0, 1, 7, 16, 1000} {
			framed := EncodeChunked(payload, chunk)
			raw := append([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n"), framed...)

			resp, err := Parse(raw, false)
			require.NoError(t, err, "n=%d chunk=%d", n, chunk)
			assert.True(t, bytes.Equal(payload, resp.Body), "n=%d chunk=%d", n, chunk)
		}
	}
}

func TestChunkedTruncated(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789"), 20)
	framed := EncodeChunked(payload, 64)
	head := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n")

	// every strict prefix that stops before the zero-length chunk
	last := bytes.LastIndex(framed, []byte("0\r\n"))
	for cut := 0; cut < last; cut++ {
		raw := append(append([]byte(nil), head...), framed[:cut]...)

		_, err := Parse(raw, false)
		require.ErrorIs(t, err, ErrNeedMore, "cut=%d", cut)

		_, err = Parse(raw, true)
		require.ErrorIs(t, err, api.ErrChunkedDecode, "cut=%d", cut)
	}
}

func TestChunkedMissingFinalCRLFAtClose(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n2\r\nok\r\n0\r\n")

	_, err := Parse(raw, false)
	assert.ErrorIs(t, err, ErrNeedMore)

	resp, err := Parse(raw, true)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
}

func TestChunkedMalformed(t *testing.T) {
	cases := map[string]string{
		"bad hex":          "zz\r\nhello\r\n0\r\n\r\n",
		"empty size":       "\r\nhello\r\n0\r\n\r\n",
		"missing crlf":     "5\r\nhelloXX0\r\n\r\n",
		"size overflow":    strings.Repeat("f", 20) + "\r\n",
		"negative looking": "-5\r\nhello\r\n0\r\n\r\n",
	}
	for name, body := range cases {
		raw := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" + body)
		_, err := Parse(raw, false)
		assert.ErrorIs(t, err, api.ErrChunkedDecode, name)
	}
}

func TestChunkedExtensionsAndTrailers(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"3;name=value\r\nabc\r\n" +
		"2\r\nde\r\n" +
		"0\r\nX-Checksum: 1234\r\nX-Other: 1\r\n\r\n"
	resp, err := Parse([]byte(raw), false)
	require.NoError(t, err)
	assert.Equal(t, "abcde", string(resp.Body))
}

func TestResponseText(t *testing.T) {
	resp := &Response{Body: []byte("héllo")}
	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "héllo", text)

	resp = &Response{Body: []byte{'a', 0xff, 0xfe}}
	_, err = resp.Text()
	assert.True(t, errors.Is(err, api.ErrEncoding))
}

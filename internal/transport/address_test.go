package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsingmao/enginectl/internal/api"
)

func TestParseAddressUnix(t *testing.T) {
	for _, path := range []string{"/var/run/docker.sock", "relative.sock", "/tmp/a b/c.sock"} {
		addr, err := ParseAddress("unix://" + path)
		require.NoError(t, err, path)
		assert.Equal(t, KindUnix, addr.Kind)
		assert.Equal(t, path, addr.Path)
		assert.Equal(t, path, addr.Location)
		assert.Nil(t, addr.TLS)
		assert.Equal(t, "unix://"+path, addr.String())
		assert.Equal(t, "localhost", addr.HostHeader())
	}
}

func TestParseAddressTCP(t *testing.T) {
	cases := []struct {
		location, host, port string
	}{
		{"127.0.0.1:2375", "127.0.0.1", "2375"},
		{"engine.example.com:2376", "engine.example.com", "2376"},
		{"[::1]:2375", "::1", "2375"},
	}
	for _, tc := range cases {
		addr, err := ParseAddress("tcp://" + tc.location)
		require.NoError(t, err, tc.location)
		assert.Equal(t, KindTCP, addr.Kind)
		assert.Equal(t, tc.location, addr.Location)
		assert.Equal(t, tc.host, addr.Host)
		assert.Equal(t, tc.port, addr.Port)
		assert.Equal(t, tc.location, addr.HostHeader())
	}
}

func TestParseAddressInvalid(t *testing.T) {
	cases := []string{
		"",
		"/var/run/docker.sock",
		"unix:/var/run/docker.sock",
		"unix://",
		"://path",
		"http://localhost:2375",
		"npipe:////./pipe/docker_engine",
		"unix://a://b",
		"tcp://localhost",
		"tcp://localhost:",
	}
	for _, s := range cases {
		_, err := ParseAddress(s)
		assert.ErrorIs(t, err, api.ErrInvalidAddress, s)
	}
}

func TestWithTLS(t *testing.T) {
	tcp, err := ParseAddress("tcp://127.0.0.1:2376")
	require.NoError(t, err)

	bundle := TLSBundle{KeyFile: "key.pem", CertFile: "cert.pem", CAFile: "ca.pem"}
	secured, err := tcp.WithTLS(bundle)
	require.NoError(t, err)
	assert.Equal(t, &bundle, secured.TLS)
	assert.Nil(t, tcp.TLS, "original address must not change")

	unix, err := ParseAddress("unix:///var/run/docker.sock")
	require.NoError(t, err)
	_, err = unix.WithTLS(bundle)
	assert.ErrorIs(t, err, api.ErrInvalidAddress)
}

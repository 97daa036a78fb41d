package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/tsingmao/enginectl/internal/api"
	"github.com/tsingmao/enginectl/internal/config"
	"github.com/tsingmao/enginectl/internal/enginetest"
	"github.com/tsingmao/enginectl/internal/httpwire"
	"github.com/tsingmao/enginectl/internal/logger"
)

var noContent = enginetest.Raw("HTTP/1.1 204 No Content\r\n\r\n", false)

// execute runs the CLI against e with an isolated config and environment.
func execute(t *testing.T, e *enginetest.Engine, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	for _, k := range []string{config.EnvHost, config.EnvCertPath, config.EnvTLSVerify, config.EnvAPIVersion} {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", t.TempDir())

	cmd := NewEnginectlCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if e != nil {
		args = append([]string{"--host", e.Address}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func engine(t *testing.T, routes map[string]enginetest.Handler) *enginetest.Engine {
	return enginetest.NewUnix(t, enginetest.Routes(routes))
}

func chunked(body string) enginetest.Handler {
	return enginetest.Raw("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nTransfer-Encoding: chunked\r\n\r\n"+
		string(httpwire.EncodeChunked([]byte(body), 7)), false)
}

const containerList = `[
	{"Id":"0123456789abcdef","Image":"nginx","Command":"nginx -g daemon off;","Created":1700000000,"Status":"Up 5 minutes",
	 "Names":["/web"],"SizeRw":12,"Ports":[{"IP":"0.0.0.0","PrivatePort":80,"PublicPort":8080,"Type":"tcp"},{"PrivatePort":443,"Type":"tcp"}]},
	{"Id":"fedcba9876543210","Image":"alpine","Command":"true","Created":1700000000,"Status":"Exited (0) 1 hour ago","Names":["/job"]}
]`

func TestPs(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"GET /v1.24/containers/json?all=1&size=1": enginetest.JSON(200, containerList),
		"GET /v1.24/containers/json?all=0&size=1": enginetest.JSON(200, `[]`),
	})

	output, err := execute(t, e, "ps", "-a")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "CONTAINER ID")
	assert.Contains(t, lines[1], "0123456789ab")
	assert.Contains(t, lines[1], "0.0.0.0:8080->80/tcp, 443/tcp")
	assert.Contains(t, lines[1], "web")
	assert.Contains(t, lines[1], "12B")
	assert.Contains(t, lines[2], "Exited (0) 1 hour ago")

	output, err = execute(t, e, "ps")
	require.NoError(t, err)
	assert.Equal(t, "No containers found\n", output)
}

func TestInspect(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"GET /v1.24/containers/web/json": enginetest.JSON(200, `{"Id":"0123","Name":"/web","State":{"Status":"running","Running":true}}`),
	})

	output, err := execute(t, e, "inspect", "web")
	require.NoError(t, err)
	assert.Contains(t, output, `"Name": "/web"`)

	_, err = execute(t, e, "inspect", "ghost")
	var remote *api.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 404, remote.Status)
}

func TestTop(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"GET /v1.24/containers/web/top": enginetest.JSON(200,
			`{"Titles":["UID","PID","PPID","C","STIME","TTY","TIME","CMD"],"Processes":[["root","1","0","0","10:00","?","00:00:01","nginx: master"]]}`),
	})

	output, err := execute(t, e, "top", "web")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"root", "1", "-", "-", "-", "00:00:01", "nginx:", "master"}, strings.Fields(lines[1]))
}

func TestStats(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"GET /v1.24/containers/json?all=1&size=1": enginetest.JSON(200, containerList),
		"GET /v1.24/containers/0123456789abcdef/stats?stream=0": enginetest.JSON(200, `{
			"memory_stats":{"usage":52428800,"limit":104857600},
			"cpu_stats":{"cpu_usage":{"total_usage":300},"system_cpu_usage":2000,"online_cpus":2},
			"precpu_stats":{"cpu_usage":{"total_usage":100},"system_cpu_usage":1000},
			"networks":{"eth0":{"rx_bytes":1000,"tx_bytes":2000}}}`),
	})

	output, err := execute(t, e, "stats", "web")
	require.NoError(t, err)
	assert.Contains(t, output, "40.00%")
	assert.Contains(t, output, "50MiB / 100MiB")
	assert.Contains(t, output, "50.00%")

	_, err = execute(t, e, "stats", "job")
	assert.ErrorContains(t, err, "already stopped")

	_, err = execute(t, e, "stats", "nothing")
	assert.ErrorContains(t, err, "no such container")
}

func TestDiff(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"GET /v1.24/containers/web/changes": enginetest.JSON(200,
			`[{"Path":"/etc","Kind":0},{"Path":"/etc/nginx.conf","Kind":1},{"Path":"/tmp","Kind":2}]`),
	})

	output, err := execute(t, e, "diff", "web")
	require.NoError(t, err)
	assert.Equal(t, "C /etc\nA /etc/nginx.conf\nD /tmp\n", output)
}

func TestExport(t *testing.T) {
	payload := "tar\x00\x01\xff"
	e := engine(t, map[string]enginetest.Handler{
		"GET /v1.24/containers/web/export": enginetest.Raw(
			"HTTP/1.1 200 OK\r\nContent-Type: application/x-tar\r\nContent-Length: 6\r\n\r\n"+payload, false),
	})

	target := filepath.Join(t.TempDir(), "web.tar")
	_, err := execute(t, e, "export", "web", "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte(payload), data)

	output, err := execute(t, e, "export", "web")
	require.NoError(t, err)
	assert.Equal(t, payload, output)
}

func TestImages(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"GET /v1.24/images/json?all=1": enginetest.JSON(200, `[
			{"Id":"sha256:aaaaaaaaaaaaaaaaaaaa","RepoTags":["busybox:latest","localhost:5000/busybox:1.36"],"Size":4261550,"Created":1700000000},
			{"Id":"sha256:bbbbbbbbbbbbbbbbbbbb","RepoTags":null,"Size":1000,"Created":1700000000}
		]`),
	})

	output, err := execute(t, e, "images", "-a")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"busybox", "latest", "aaaaaaaaaaaa"}, strings.Fields(lines[1])[:3])
	assert.Equal(t, []string{"localhost:5000/busybox", "1.36"}, strings.Fields(lines[2])[:2])
	assert.Equal(t, []string{"<none>", "<none>", "bbbbbbbbbbbb"}, strings.Fields(lines[3])[:3])
	assert.Contains(t, lines[1], "4.26MB")
}

func TestPull(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"POST /v1.24/images/create?fromImage=localhost%3A5000%2Fapp&tag=1.2": chunked(
			`{"status":"Pulling from app","id":"1.2"}{"status":"Digest: sha256:abc"}{"status":"Status: Downloaded newer image for localhost:5000/app:1.2"}`),
		"POST /v1.24/images/create?fromImage=missing&tag=latest": chunked(
			`{"status":"Pulling repository missing"}{"errorDetail":{"message":"manifest unknown"},"error":"manifest unknown"}`),
	})

	output, err := execute(t, e, "pull", "localhost:5000/app:1.2")
	require.NoError(t, err)
	assert.Contains(t, output, "Pulling from app")
	assert.Contains(t, output, "Status: Downloaded newer image for localhost:5000/app:1.2")

	_, err = execute(t, e, "pull", "missing")
	assert.ErrorContains(t, err, "manifest unknown")
}

func TestBuild(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"POST /v1.24/build?t=app%3Adev": chunked(`{"stream":"Step 1/1 : FROM scratch\n"}{"stream":"Successfully built 42\n"}`),
	})
	context := filepath.Join(t.TempDir(), "ctx.tar")
	require.NoError(t, os.WriteFile(context, []byte("tar-bytes"), 0o600))

	output, err := execute(t, e, "build", "-t", "app:dev", context)
	require.NoError(t, err)
	assert.Contains(t, output, "Successfully built 42")

	reqs := e.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "tar-bytes", string(reqs[0].Body))
	assert.Equal(t, "application/x-tar", reqs[0].Header.Get("Content-Type"))
}

func TestNetwork(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"GET /v1.24/networks":         enginetest.JSON(200, `[{"Name":"bridge","Id":"f00dfacef00dface","Driver":"bridge","Scope":"local"}]`),
		"POST /v1.24/networks/create": enginetest.JSON(201, `{"Id":"n1"}`),
		"DELETE /v1.24/networks/n1":   noContent,
	})

	output, err := execute(t, e, "network", "ls")
	require.NoError(t, err)
	assert.Contains(t, output, "f00dfacef00d")
	assert.Contains(t, output, "bridge")

	output, err = execute(t, e, "network", "create", "--internal", "--label", "tier=db", "db-net")
	require.NoError(t, err)
	assert.Equal(t, "n1\n", output)
	assert.JSONEq(t, `{"Name":"db-net","CheckDuplicate":true,"Internal":true,"Labels":{"tier":"db"}}`,
		string(e.Requests()[1].Body))

	output, err = execute(t, e, "network", "rm", "n1", "ghost")
	assert.ErrorContains(t, err, "ghost")
	assert.Contains(t, output, "n1\n")

	_, err = execute(t, e, "network", "create", "--label", "novalue", "x")
	assert.ErrorContains(t, err, "expected key=value")
}

func TestEvents(t *testing.T) {
	e := enginetest.NewUnix(t, func(req *enginetest.Request, w io.Writer) bool {
		io.WriteString(w, "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n"+
			`{"Type":"container","Action":"start","Actor":{"ID":"abc","Attributes":{"name":"web","image":"nginx"}},"time":1700000000}`)
		return false
	})

	output, err := execute(t, e, "events", "--since", "1699999999", "--until", "1700000001", "--filter", "type=container")
	require.NoError(t, err)
	assert.Contains(t, output, "container start abc (image=nginx, name=web)")

	reqs := e.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Target, "until=1700000001")

	_, err = execute(t, e, "events", "--filter", "bogus")
	assert.ErrorContains(t, err, "expected key=value")
}

func TestEventsQueryDefaultsUntilToNow(t *testing.T) {
	opts := &EventsOptions{Since: "10m"}
	q, err := opts.query(time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.Equal(t, "1700000000", q.Until)
	assert.Equal(t, "10m", q.Since)
	assert.Equal(t, 0, q.Filters.Len())
}

func TestVersionInfoPing(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"GET /v1.24/version": enginetest.JSON(200, `{"Version":"24.0.7","ApiVersion":"1.43","MinAPIVersion":"1.12","Os":"linux","Arch":"arm64"}`),
		"GET /v1.24/info":    enginetest.JSON(200, `{"Containers":2,"ContainersRunning":1,"Images":5,"NCPU":8,"MemTotal":2147483648,"Name":"host1"}`),
		"GET /v1.24/_ping":   enginetest.JSON(200, "OK"),
	})

	output, err := execute(t, e, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "Client:")
	assert.Contains(t, output, "API version: 1.43 (minimum 1.12)")
	assert.Contains(t, output, "OS/Arch:     linux/arm64")

	output, err = execute(t, e, "version", "--client")
	require.NoError(t, err)
	assert.NotContains(t, output, "Server:")

	output, err = execute(t, e, "info")
	require.NoError(t, err)
	assert.Contains(t, output, "Total Memory: 2GiB")
	assert.Contains(t, output, "CPUs: 8")

	output, err = execute(t, e, "ping")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(output, "OK ("))
}

func TestConfigLayering(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"GET /v1.30/_ping": enginetest.JSON(200, "OK"),
	})
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("host: tcp://127.0.0.1:1\napi_version: \"1.30\"\n"), 0o600))

	// The file points at a dead port; --host overrides it.
	output, err := execute(t, e, "--config", cfgFile, "ping")
	require.NoError(t, err)
	assert.Contains(t, output, "OK")

	_, err = execute(t, nil, "--config", cfgFile, "ping")
	assert.ErrorIs(t, err, api.ErrConnect)

	_, err = execute(t, nil, "--host", "ftp://example", "ping")
	assert.ErrorIs(t, err, api.ErrInvalidAddress)

	_, err = execute(t, nil, "--host", "unix:///tmp/engine.sock", "--tlsverify", "--tlscert", "c", "--tlskey", "k", "--tlscacert", "a", "ping")
	assert.ErrorIs(t, err, api.ErrInvalidAddress)
}

func TestVerboseEnablesDebugLogging(t *testing.T) {
	e := engine(t, map[string]enginetest.Handler{
		"GET /v1.24/_ping": enginetest.JSON(200, "OK"),
	})

	_, err := execute(t, e, "--verbose", "ping")
	require.NoError(t, err)
	assert.True(t, logger.Enabled(zapcore.DebugLevel))

	_, err = execute(t, e, "ping")
	require.NoError(t, err)
	assert.False(t, logger.Enabled(zapcore.DebugLevel))
}

func TestSplitReference(t *testing.T) {
	cases := map[string][2]string{
		"busybox":                {"busybox", ""},
		"busybox:1.36":           {"busybox", "1.36"},
		"localhost:5000/app":     {"localhost:5000/app", ""},
		"localhost:5000/app:1.2": {"localhost:5000/app", "1.2"},
	}
	for in, want := range cases {
		repo, tag := splitReference(in)
		assert.Equal(t, want, [2]string{repo, tag}, in)
	}
}

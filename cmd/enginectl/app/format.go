package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/samber/lo"

	"github.com/tsingmao/enginectl/internal/api"
)

const shortIDLength = 12

var (
	runningColor = color.New(color.FgGreen).SprintFunc()
	stoppedColor = color.New(color.FgRed).SprintFunc()
	pausedColor  = color.New(color.FgYellow).SprintFunc()
)

// newTable returns a tabwriter laid out like the rest of the CLI output.
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
}

// shortID trims an ID, and any "sha256:" prefix, to 12 characters.
func shortID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

// since renders a unix timestamp as "3 hours ago".
func since(ts int64) string {
	if ts <= 0 {
		return "-"
	}
	return units.HumanDuration(time.Since(time.Unix(ts, 0))) + " ago"
}

func humanSize(n int64) string {
	return units.HumanSizeWithPrecision(float64(n), 3)
}

// formatPorts renders published ports as "0.0.0.0:8080->80/tcp".
func formatPorts(ports []api.Port) string {
	rendered := lo.FilterMap(ports, func(p api.Port, _ int) (string, bool) {
		proto := lo.Ternary(p.Type == "", "tcp", p.Type)
		port, err := nat.NewPort(proto, strconv.Itoa(p.PrivatePort))
		if err != nil {
			return "", false
		}
		if p.PublicPort == 0 {
			return string(port), true
		}
		ip := lo.Ternary(p.IP == "", "0.0.0.0", p.IP)
		return fmt.Sprintf("%s:%d->%s", ip, p.PublicPort, port), true
	})
	return strings.Join(rendered, ", ")
}

// formatNames drops the leading slash the engine puts on container names.
func formatNames(names []string) string {
	return strings.Join(lo.Map(names, func(n string, _ int) string {
		return strings.TrimPrefix(n, "/")
	}), ",")
}

// colorStatus colors a container status string by its state.
func colorStatus(status string) string {
	switch {
	case strings.Contains(status, "Paused"):
		return pausedColor(status)
	case strings.HasPrefix(status, "Up"):
		return runningColor(status)
	case strings.HasPrefix(status, "Exited"), strings.HasPrefix(status, "Dead"):
		return stoppedColor(status)
	default:
		return status
	}
}

// splitReference splits "repo[:tag]" into its parts. A colon inside the
// registry host (e.g. "localhost:5000/app") is not a tag separator.
func splitReference(ref string) (string, string) {
	i := strings.LastIndex(ref, ":")
	if i < 0 || strings.Contains(ref[i+1:], "/") {
		return ref, ""
	}
	return ref[:i], ref[i+1:]
}

// repoTag splits "repo:tag" for the images table.
func repoTag(s string) (string, string) {
	repo, tag := splitReference(s)
	if tag == "" {
		return repo, "<none>"
	}
	return repo, tag
}

// Package client - containers.go implements container operations.
//
// This file provides methods for listing, inspecting and controlling
// containers, and for reading their process table, resource usage,
// filesystem changes and exported filesystem.
package client

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tsingmao/enginectl/internal/api"
)

// ErrContainerNotRunning is returned by ContainerStats for a container whose
// status does not report it as up.
var ErrContainerNotRunning = errors.New("the container is already stopped")

// ListContainers retrieves the container list with sizes.
//
// Parameters:
//   - all: Include stopped containers
//
// Returns:
//   - The containers reported by the engine
//   - An error if the request fails
//
// Example:
//
//	containers, err := client.ListContainers(true)
//	for _, ctr := range containers {
//	    fmt.Printf("%s %s\n", ctr.ID[:12], ctr.Status)
//	}
func (c *Client) ListContainers(all bool) ([]api.Container, error) {
	query := url.Values{}
	query.Set("all", boolParam(all))
	query.Set("size", "1")

	var containers []api.Container
	if err := c.doRequest("GET", "/containers/json", query, nil, &containers); err != nil {
		return nil, err
	}
	return containers, nil
}

// InspectContainer returns the detailed record of one container.
func (c *Client) InspectContainer(id string) (*api.ContainerInfo, error) {
	var info api.ContainerInfo
	if err := c.doRequest("GET", "/containers/"+segment(id)+"/json", nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CreateContainer creates a container from spec. An empty name lets the
// engine pick one.
//
// Returns:
//   - The create response with the new container ID and any warnings
//   - An error if the engine rejects the request
func (c *Client) CreateContainer(name string, spec api.ContainerCreate) (*api.ContainerCreateResponse, error) {
	var query url.Values
	if name != "" {
		query = url.Values{"name": {name}}
	}

	var resp api.ContainerCreateResponse
	if err := c.doRequest("POST", "/containers/create", query, spec, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartContainer starts a created or stopped container.
func (c *Client) StartContainer(id string) error {
	return c.doRequest("POST", "/containers/"+segment(id)+"/start", nil, nil, nil)
}

// StopContainer stops a container, killing it after timeout seconds. A
// negative timeout leaves the choice to the engine.
func (c *Client) StopContainer(id string, timeout int) error {
	var query url.Values
	if timeout >= 0 {
		query = url.Values{"t": {strconv.Itoa(timeout)}}
	}
	return c.doRequest("POST", "/containers/"+segment(id)+"/stop", query, nil, nil)
}

// RemoveContainer deletes a container.
//
// Parameters:
//   - id: Container ID or name
//   - force: Kill the container first if it is running
//   - volumes: Also remove anonymous volumes
func (c *Client) RemoveContainer(id string, force, volumes bool) error {
	query := url.Values{}
	if force {
		query.Set("force", "1")
	}
	if volumes {
		query.Set("v", "1")
	}
	return c.doRequest("DELETE", "/containers/"+segment(id), query, nil, nil)
}

// ContainerChanges lists the paths changed in the container filesystem.
func (c *Client) ContainerChanges(id string) ([]api.FilesystemChange, error) {
	var changes []api.FilesystemChange
	if err := c.doRequest("GET", "/containers/"+segment(id)+"/changes", nil, nil, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// ContainerStats takes one resource usage sample.
//
// The container must be up; this is checked against the status string of
// the list record before any request is sent.
//
// Returns:
//   - The stats sample
//   - ErrContainerNotRunning if the container is not up
//   - An error if the request fails
func (c *Client) ContainerStats(ctr api.Container) (*api.Stats, error) {
	if !strings.Contains(ctr.Status, "Up") {
		return nil, fmt.Errorf("%w: %s", ErrContainerNotRunning, ctr.ID)
	}

	query := url.Values{"stream": {"0"}}
	var stats api.Stats
	if err := c.doRequest("GET", "/containers/"+segment(ctr.ID)+"/stats", query, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ContainerTop lists the processes running in a container.
//
// The engine answers with a title row and value rows; each value is placed
// in the Process field named by its column title. Unknown columns are
// dropped.
//
// Parameters:
//   - id: Container ID or name
//   - psArgs: Arguments for ps inside the container (empty for the engine
//     default)
func (c *Client) ContainerTop(id, psArgs string) ([]api.Process, error) {
	var query url.Values
	if psArgs != "" {
		query = url.Values{"ps_args": {psArgs}}
	}

	var top api.Top
	if err := c.doRequest("GET", "/containers/"+segment(id)+"/top", query, nil, &top); err != nil {
		return nil, err
	}
	return topProcesses(top)
}

func topProcesses(top api.Top) ([]api.Process, error) {
	processes := make([]api.Process, 0, len(top.Processes))
	for row, values := range top.Processes {
		if len(values) > len(top.Titles) {
			return nil, fmt.Errorf("process row %d has %d columns, expected at most %d", row, len(values), len(top.Titles))
		}
		var p api.Process
		for i, value := range values {
			setProcessField(&p, top.Titles[i], value)
		}
		processes = append(processes, p)
	}
	return processes, nil
}

func setProcessField(p *api.Process, title, value string) {
	v := value
	switch title {
	case "USER", "UID":
		p.User = v
	case "PID":
		p.PID = v
	case "%CPU":
		p.CPU = &v
	case "%MEM":
		p.Memory = &v
	case "VSZ":
		p.VSZ = &v
	case "RSS":
		p.RSS = &v
	case "TTY":
		p.TTY = &v
	case "STAT":
		p.Stat = &v
	case "START", "STIME":
		p.Start = &v
	case "TIME":
		p.Time = &v
	case "COMMAND", "CMD":
		p.Command = v
	}
}

// ExportContainer returns the container filesystem as a tar archive.
func (c *Client) ExportContainer(id string) ([]byte, error) {
	return c.doRaw("GET", "/containers/"+segment(id)+"/export", nil)
}

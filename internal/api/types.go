// Package api defines the API types and contracts for the engine client.
//
// This package contains all the data structures exchanged with the engine
// control plane. It defines:
//   - Entity records returned by the engine (containers, images, networks, events)
//   - Request payloads sent to the engine (container and network creation)
//   - The error taxonomy every call resolves to (see errors.go)
//
// All types in this package are designed to be JSON-serializable and use the
// engine's own field names, so they can be decoded straight from a response
// body without any mapping layer.
package api

import (
	"github.com/docker/docker/pkg/jsonmessage"
)

// DefaultVersion is the engine API version prefixed to every request path.
const DefaultVersion = "1.24"

// Container is one entry of the container list endpoint.
type Container struct {
	// ID is the full container identifier.
	ID string `json:"Id"`

	// Image is the image reference the container was created from.
	Image string `json:"Image"`

	// Status is the human-readable state, e.g. "Up 3 minutes" or "Exited (0)".
	Status string `json:"Status"`

	// State is the machine-readable state ("running", "exited", ...).
	State string `json:"State,omitempty"`

	Command string   `json:"Command"`
	Created int64    `json:"Created"`
	Names   []string `json:"Names"`
	Ports   []Port   `json:"Ports"`

	// SizeRw is only reported when the list was requested with size=1, and
	// not by every platform.
	SizeRw *int64 `json:"SizeRw,omitempty"`

	SizeRootFs int64             `json:"SizeRootFs"`
	Labels     map[string]string `json:"Labels,omitempty"`
	HostConfig HostConfig        `json:"HostConfig"`
}

// String returns the container ID.
func (c Container) String() string {
	return c.ID
}

// Port is a published or exposed container port.
type Port struct {
	IP          string `json:"IP,omitempty"`
	PrivatePort int    `json:"PrivatePort"`
	PublicPort  int    `json:"PublicPort,omitempty"`
	Type        string `json:"Type"`
}

// HostConfig is the subset of host configuration reported in container lists.
type HostConfig struct {
	NetworkMode string `json:"NetworkMode"`
}

// ContainerInfo is the detailed record returned by the inspect endpoint.
type ContainerInfo struct {
	ID              string          `json:"Id"`
	Name            string          `json:"Name"`
	Image           string          `json:"Image"`
	Created         string          `json:"Created"`
	Path            string          `json:"Path"`
	Args            []string        `json:"Args"`
	Driver          string          `json:"Driver"`
	ExecDriver      string          `json:"ExecDriver,omitempty"`
	AppArmorProfile string          `json:"AppArmorProfile"`
	HostnamePath    string          `json:"HostnamePath"`
	HostsPath       string          `json:"HostsPath"`
	LogPath         string          `json:"LogPath"`
	MountLabel      string          `json:"MountLabel"`
	ProcessLabel    string          `json:"ProcessLabel"`
	ResolvConfPath  string          `json:"ResolvConfPath"`
	RestartCount    int             `json:"RestartCount"`
	State           *ContainerState `json:"State,omitempty"`

	// Volumes and VolumesRW are only reported by older engines.
	Volumes   map[string]string `json:"Volumes,omitempty"`
	VolumesRW map[string]bool   `json:"VolumesRW,omitempty"`
}

// String returns the container ID.
func (c ContainerInfo) String() string {
	return c.ID
}

// ContainerState is the runtime state block of an inspected container.
type ContainerState struct {
	Status     string `json:"Status"`
	Running    bool   `json:"Running"`
	Paused     bool   `json:"Paused"`
	Restarting bool   `json:"Restarting"`
	OOMKilled  bool   `json:"OOMKilled"`
	Dead       bool   `json:"Dead"`
	Pid        int    `json:"Pid"`
	ExitCode   int    `json:"ExitCode"`
	Error      string `json:"Error"`
	StartedAt  string `json:"StartedAt"`
	FinishedAt string `json:"FinishedAt"`
}

// PortBinding binds a container port to a host address.
type PortBinding struct {
	HostIP   string `json:"HostIp,omitempty"`
	HostPort string `json:"HostPort"`
}

// HostConfigCreate is the host configuration sent with a create request.
type HostConfigCreate struct {
	NetworkMode     string                   `json:"NetworkMode,omitempty"`
	PublishAllPorts bool                     `json:"PublishAllPorts,omitempty"`
	PortBindings    map[string][]PortBinding `json:"PortBindings,omitempty"`
}

// ContainerCreate is the payload of the container create endpoint.
type ContainerCreate struct {
	Image        string              `json:"Image"`
	Cmd          []string            `json:"Cmd,omitempty"`
	Env          []string            `json:"Env,omitempty"`
	Labels       map[string]string   `json:"Labels,omitempty"`
	ExposedPorts map[string]struct{} `json:"ExposedPorts,omitempty"`
	HostConfig   *HostConfigCreate   `json:"HostConfig,omitempty"`
}

// ContainerCreateResponse is returned by the container create endpoint.
type ContainerCreateResponse struct {
	ID       string   `json:"Id"`
	Warnings []string `json:"Warnings"`
}

// Network is one entry of the network list endpoint.
type Network struct {
	Name       string            `json:"Name"`
	ID         string            `json:"Id"`
	Created    string            `json:"Created"`
	Scope      string            `json:"Scope"`
	Driver     string            `json:"Driver,omitempty"`
	EnableIPv6 bool              `json:"EnableIPv6"`
	Internal   bool              `json:"Internal"`
	Attachable bool              `json:"Attachable"`
	Ingress    bool              `json:"Ingress"`
	Options    map[string]string `json:"Options"`
	Labels     map[string]string `json:"Labels,omitempty"`
}

// String returns the network ID.
func (n Network) String() string {
	return n.ID
}

// NetworkCreate is the payload of the network create endpoint.
//
// Only Name is required; every other field is sent only when set.
type NetworkCreate struct {
	Name           string            `json:"Name"`
	CheckDuplicate *bool             `json:"CheckDuplicate,omitempty"`
	Driver         string            `json:"Driver,omitempty"`
	Internal       *bool             `json:"Internal,omitempty"`
	Attachable     *bool             `json:"Attachable,omitempty"`
	Ingress        *bool             `json:"Ingress,omitempty"`
	EnableIPv6     *bool             `json:"EnableIPv6,omitempty"`
	Options        map[string]string `json:"Options,omitempty"`
	Labels         map[string]string `json:"Labels,omitempty"`
}

// NetworkCreateResponse is returned by the network create endpoint.
type NetworkCreateResponse struct {
	ID      string `json:"Id"`
	Warning string `json:"Warning,omitempty"`
}

// Image is one entry of the image list endpoint.
type Image struct {
	ID          string   `json:"Id"`
	ParentID    string   `json:"ParentId"`
	Created     int64    `json:"Created"`
	RepoTags    []string `json:"RepoTags"`
	Size        int64    `json:"Size"`
	VirtualSize int64    `json:"VirtualSize"`
}

// ImageStatus is one record of a pull or build progress stream.
//
// The engine writes these records back to back without separators; the
// client repairs the stream into a JSON array before decoding it.
type ImageStatus = jsonmessage.JSONMessage

// Event is one record of the event stream.
type Event struct {
	Type         string `json:"Type"`
	Action       string `json:"Action"`
	Status       string `json:"status,omitempty"`
	ID           string `json:"id,omitempty"`
	From         string `json:"from,omitempty"`
	Actor        Actor  `json:"Actor"`
	Scope        string `json:"scope,omitempty"`
	Time         int64  `json:"time"`
	TimeNano     int64  `json:"timeNano,omitempty"`
	Experimental bool   `json:"Experimental,omitempty"`
}

// Actor describes the object an event refers to.
type Actor struct {
	ID         string            `json:"ID"`
	Attributes map[string]string `json:"Attributes"`
}

// FilesystemChange is one entry of the container changes endpoint.
//
// Kind is 0 for modified, 1 for added and 2 for deleted paths.
type FilesystemChange struct {
	Path string `json:"Path"`
	Kind int    `json:"Kind"`
}

// Filesystem change kinds.
const (
	ChangeModify = 0
	ChangeAdd    = 1
	ChangeDelete = 2
)

// Top is the raw process table returned by the container top endpoint.
type Top struct {
	Titles    []string   `json:"Titles"`
	Processes [][]string `json:"Processes"`
}

// Process is one row of a container process table.
//
// User, PID and Command are always present; the other columns depend on the
// ps arguments the engine ran with.
type Process struct {
	User    string  `json:"user"`
	PID     string  `json:"pid"`
	CPU     *string `json:"cpu,omitempty"`
	Memory  *string `json:"memory,omitempty"`
	VSZ     *string `json:"vsz,omitempty"`
	RSS     *string `json:"rss,omitempty"`
	TTY     *string `json:"tty,omitempty"`
	Stat    *string `json:"stat,omitempty"`
	Start   *string `json:"start,omitempty"`
	Time    *string `json:"time,omitempty"`
	Command string  `json:"command"`
}

// Stats is a single resource usage sample for a container.
type Stats struct {
	Read        string                  `json:"read"`
	CPUStats    CPUStats                `json:"cpu_stats"`
	PreCPUStats CPUStats                `json:"precpu_stats"`
	MemoryStats MemoryStats             `json:"memory_stats"`
	Networks    map[string]NetworkStats `json:"networks,omitempty"`
}

// CPUStats is the CPU block of a stats sample.
type CPUStats struct {
	CPUUsage struct {
		TotalUsage  uint64   `json:"total_usage"`
		PercpuUsage []uint64 `json:"percpu_usage,omitempty"`
	} `json:"cpu_usage"`
	SystemUsage uint64 `json:"system_cpu_usage"`
	OnlineCPUs  int    `json:"online_cpus,omitempty"`
}

// MemoryStats is the memory block of a stats sample.
type MemoryStats struct {
	Usage    uint64 `json:"usage"`
	MaxUsage uint64 `json:"max_usage"`
	Limit    uint64 `json:"limit"`
}

// NetworkStats is the per-interface block of a stats sample.
type NetworkStats struct {
	RxBytes uint64 `json:"rx_bytes"`
	TxBytes uint64 `json:"tx_bytes"`
}

// SystemInfo is the subset of the info endpoint the client reports.
type SystemInfo struct {
	ID                string `json:"ID"`
	Name              string `json:"Name"`
	Containers        int    `json:"Containers"`
	ContainersRunning int    `json:"ContainersRunning"`
	ContainersPaused  int    `json:"ContainersPaused"`
	ContainersStopped int    `json:"ContainersStopped"`
	Images            int    `json:"Images"`
	Driver            string `json:"Driver"`
	KernelVersion     string `json:"KernelVersion"`
	OperatingSystem   string `json:"OperatingSystem"`
	Architecture      string `json:"Architecture"`
	NCPU              int    `json:"NCPU"`
	MemTotal          int64  `json:"MemTotal"`
	ServerVersion     string `json:"ServerVersion"`
}

// Version is returned by the version endpoint.
type Version struct {
	Version       string `json:"Version"`
	APIVersion    string `json:"ApiVersion"`
	MinAPIVersion string `json:"MinAPIVersion,omitempty"`
	GitCommit     string `json:"GitCommit"`
	GoVersion     string `json:"GoVersion"`
	Os            string `json:"Os"`
	Arch          string `json:"Arch"`
	KernelVersion string `json:"KernelVersion,omitempty"`
	BuildTime     string `json:"BuildTime,omitempty"`
}

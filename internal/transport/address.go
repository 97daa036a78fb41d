// Package transport opens and owns the byte stream to the engine.
//
// An engine is reachable either through a local domain socket or a TCP
// endpoint, optionally secured with TLS. The choice is made once, when a
// connection string is parsed into an Address, and dispatched on by Dial.
//
//	addr, err := transport.ParseAddress("unix:///var/run/docker.sock")
//	conn, err := transport.Dial(addr)
//	defer conn.Close()
package transport

import (
	"fmt"
	"net"
	"strings"

	"github.com/tsingmao/enginectl/internal/api"
)

// Kind selects the substrate of an Address.
type Kind int

const (
	// KindUnix is a local domain socket.
	KindUnix Kind = iota + 1
	// KindTCP is a TCP endpoint, optionally with TLS.
	KindTCP
)

// Supported connection string schemes.
const (
	SchemeUnix = "unix"
	SchemeTCP  = "tcp"
)

func (k Kind) String() string {
	switch k {
	case KindUnix:
		return SchemeUnix
	case KindTCP:
		return SchemeTCP
	default:
		return "unknown"
	}
}

// TLSBundle holds the paths of the client key, client certificate and CA
// certificate used to secure a TCP connection.
type TLSBundle struct {
	KeyFile  string
	CertFile string
	CAFile   string
}

// Address is a parsed connection string. Exactly one of the unix or tcp
// variants is active, selected by Kind.
type Address struct {
	Kind Kind

	// Location is the exact text that followed "://".
	Location string

	// Path is set for KindUnix.
	Path string

	// Host and Port are set for KindTCP.
	Host string
	Port string

	// TLS is only ever attached to KindTCP.
	TLS *TLSBundle
}

// ParseAddress parses a "<unix|tcp>://<location>" connection string.
//
// The string must contain exactly one "://". Unsupported or empty schemes,
// empty locations and tcp locations without a port are rejected with
// api.ErrInvalidAddress. ParseAddress performs no I/O.
func ParseAddress(s string) (*Address, error) {
	parts := strings.Split(s, "://")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %q is not of the form <scheme>://<location>", api.ErrInvalidAddress, s)
	}
	scheme, location := parts[0], parts[1]
	if location == "" {
		return nil, fmt.Errorf("%w: %q has an empty location", api.ErrInvalidAddress, s)
	}

	switch scheme {
	case SchemeUnix:
		return &Address{Kind: KindUnix, Location: location, Path: location}, nil
	case SchemeTCP:
		host, port, err := net.SplitHostPort(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", api.ErrInvalidAddress, s, err)
		}
		if port == "" {
			return nil, fmt.Errorf("%w: %q has an empty port", api.ErrInvalidAddress, s)
		}
		return &Address{Kind: KindTCP, Location: location, Host: host, Port: port}, nil
	case "":
		return nil, fmt.Errorf("%w: %q has no scheme", api.ErrInvalidAddress, s)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", api.ErrInvalidAddress, scheme)
	}
}

// WithTLS returns a copy of a with bundle attached. Only tcp addresses can
// carry TLS material.
func (a *Address) WithTLS(bundle TLSBundle) (*Address, error) {
	if a.Kind != KindTCP {
		return nil, fmt.Errorf("%w: tls requires a tcp address, got %s", api.ErrInvalidAddress, a.Kind)
	}
	cp := *a
	cp.TLS = &bundle
	return &cp, nil
}

// HostHeader is the value sent in the Host header of every request.
func (a *Address) HostHeader() string {
	if a.Kind == KindTCP {
		return a.Location
	}
	// The engine ignores the host on a domain socket, but HTTP/1.1
	// requires the header to be present.
	return "localhost"
}

// String renders the address back into connection string form.
func (a *Address) String() string {
	return a.Kind.String() + "://" + a.Location
}

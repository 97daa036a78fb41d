package transport

import (
	"crypto/tls"
	"fmt"

	"github.com/docker/go-connections/tlsconfig"

	"github.com/tsingmao/enginectl/internal/api"
)

// LoadTLSConfig builds the client TLS context for bundle.
//
// All three files are required. Any failure to read or validate them is
// returned as api.ErrTLSConfiguration; it is never retried.
func LoadTLSConfig(bundle TLSBundle, serverName string) (*tls.Config, error) {
	missing := ""
	switch {
	case bundle.KeyFile == "":
		missing = "key"
	case bundle.CertFile == "":
		missing = "certificate"
	case bundle.CAFile == "":
		missing = "CA"
	}
	if missing != "" {
		return nil, fmt.Errorf("%w: no %s file given", api.ErrTLSConfiguration, missing)
	}

	cfg, err := tlsconfig.Client(tlsconfig.Options{
		CAFile:             bundle.CAFile,
		CertFile:           bundle.CertFile,
		KeyFile:            bundle.KeyFile,
		ExclusiveRootPools: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrTLSConfiguration, err)
	}
	if len(cfg.Certificates) == 0 {
		return nil, fmt.Errorf("%w: no client certificate loaded from %s", api.ErrTLSConfiguration, bundle.CertFile)
	}
	if cfg.ServerName == "" {
		cfg.ServerName = serverName
	}
	return cfg, nil
}

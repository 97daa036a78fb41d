// Package config provides configuration management for enginectl.
//
// This package handles all configuration-related functionality including:
//   - The engine connection string and API version
//   - TLS client material for tcp engines
//   - Log level and optional rotated log file
//
// Values are layered in a fixed order, each layer overriding the previous
// one: built-in defaults, the YAML config file, the DOCKER_* environment
// variables, and finally command line flags (applied by the CLI).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsingmao/enginectl/internal/api"
	"github.com/tsingmao/enginectl/internal/client"
	"github.com/tsingmao/enginectl/internal/logger"
	"github.com/tsingmao/enginectl/internal/transport"
)

const (
	// DefaultHost is the engine socket used when nothing else is configured.
	DefaultHost = "unix:///var/run/docker.sock"

	// DefaultConfigDirName is the configuration directory name.
	// This directory is created in the user's home directory.
	DefaultConfigDirName = ".enginectl"

	// DefaultConfigFileName is the configuration file inside the config dir.
	DefaultConfigFileName = "config.yaml"

	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"
)

// File names expected inside DOCKER_CERT_PATH.
const (
	CertPathKey  = "key.pem"
	CertPathCert = "cert.pem"
	CertPathCA   = "ca.pem"
)

// Environment variables read by ApplyEnv.
const (
	EnvHost       = "DOCKER_HOST"
	EnvCertPath   = "DOCKER_CERT_PATH"
	EnvTLSVerify  = "DOCKER_TLS_VERIFY"
	EnvAPIVersion = "DOCKER_API_VERSION"
)

// Config represents the complete client configuration.
//
// The struct can be serialized to and from YAML; the same field names are
// used in ~/.enginectl/config.yaml.
type Config struct {
	// Host is the engine connection string, "unix://<path>" or
	// "tcp://<host:port>".
	Host string `yaml:"host"`

	// TLS holds the client certificate material for tcp engines.
	TLS TLSConfig `yaml:"tls"`

	// APIVersion is the engine API version prefixed to every path.
	APIVersion string `yaml:"api_version"`

	// Log configures the process logger.
	Log LogConfig `yaml:"log"`
}

// TLSConfig holds the client-side TLS settings.
type TLSConfig struct {
	// Verify enables TLS with client certificates.
	Verify bool `yaml:"verify"`

	// CertPath is a directory holding key.pem, cert.pem and ca.pem. Files
	// set explicitly below take precedence.
	CertPath string `yaml:"cert_path,omitempty"`

	KeyFile  string `yaml:"key_file,omitempty"`
	CertFile string `yaml:"cert_file,omitempty"`
	CAFile   string `yaml:"ca_file,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

// NewDefaultConfig creates a new configuration instance with default values.
//
// Returns:
//   - A Config pointing at the local engine socket, API version
//     api.DefaultVersion, info-level logging and TLS disabled.
//
// Example:
//
//	cfg := config.NewDefaultConfig()
//	fmt.Printf("Engine: %s\n", cfg.Host)
func NewDefaultConfig() *Config {
	return &Config{
		Host:       DefaultHost,
		APIVersion: api.DefaultVersion,
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// DefaultConfigPath returns ~/.enginectl/config.yaml.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "/tmp"
	}
	return filepath.Join(homeDir, DefaultConfigDirName, DefaultConfigFileName)
}

// Load builds a configuration from defaults, the YAML file and the process
// environment.
//
// Configuration File Location Priority:
//  1. Provided path parameter (the file must exist)
//  2. Default: ~/.enginectl/config.yaml (skipped when absent)
//
// Parameters:
//   - path: Optional path to a config file (empty string for default)
//
// Returns:
//   - The layered configuration, not yet validated
//   - Error if the file cannot be read or parsed
//
// Example:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatalf("Failed to load config: %v", err)
//	}
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	required := path != ""
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := cfg.LoadFile(path, required); err != nil {
		return nil, err
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c. Fields absent from the
// file keep their current values. A missing file is only an error when
// required is set.
func (c *Config) LoadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			logger.Debug("No config file at %s, using defaults", path)
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	logger.Debug("Loaded config file %s", path)
	return nil
}

// ApplyEnv overlays the DOCKER_* variables onto c.
//
// DOCKER_TLS_VERIFY enables TLS when set to anything but an empty string,
// "0" or "false". DOCKER_CERT_PATH replaces the certificate directory.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvHost); v != "" {
		c.Host = v
	}
	if v := getenv(EnvCertPath); v != "" {
		c.TLS.CertPath = v
	}
	if v := getenv(EnvTLSVerify); v != "" {
		verify, err := strconv.ParseBool(v)
		c.TLS.Verify = err != nil || verify
	}
	if v := getenv(EnvAPIVersion); v != "" {
		c.APIVersion = v
	}
}

// TLSBundle returns the key/cert/CA triple to use, or nil when TLS is off.
// Files not set explicitly are taken from CertPath.
func (c *Config) TLSBundle() *transport.TLSBundle {
	if !c.TLS.Verify {
		return nil
	}
	pick := func(explicit, name string) string {
		if explicit != "" || c.TLS.CertPath == "" {
			return explicit
		}
		return filepath.Join(c.TLS.CertPath, name)
	}
	return &transport.TLSBundle{
		KeyFile:  pick(c.TLS.KeyFile, CertPathKey),
		CertFile: pick(c.TLS.CertFile, CertPathCert),
		CAFile:   pick(c.TLS.CAFile, CertPathCA),
	}
}

// Validate checks that the configuration can be used to connect.
//
// Validation checks:
//   - Host is a valid unix:// or tcp:// connection string
//   - TLS is only enabled for tcp hosts
//   - APIVersion has the form "<major>.<minor>"
//   - Log level is known
//
// Returns:
//   - nil if valid
//   - Error describing the first failure; host problems wrap
//     api.ErrInvalidAddress
func (c *Config) Validate() error {
	addr, err := transport.ParseAddress(c.Host)
	if err != nil {
		return fmt.Errorf("invalid host: %w", err)
	}
	if bundle := c.TLSBundle(); bundle != nil {
		if _, err := addr.WithTLS(*bundle); err != nil {
			return fmt.Errorf("invalid tls setting: %w", err)
		}
	}
	if !validAPIVersion(c.APIVersion) {
		return fmt.Errorf("invalid api version %q: expected <major>.<minor>", c.APIVersion)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// ClientOptions converts the configuration into dispatcher options.
func (c *Config) ClientOptions() client.Options {
	return client.Options{
		Host:       c.Host,
		TLS:        c.TLSBundle(),
		APIVersion: c.APIVersion,
	}
}

// LoggerOptions converts the log section into logger options.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	}
}

// Save writes c as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func validAPIVersion(v string) bool {
	major, minor, ok := strings.Cut(strings.TrimPrefix(v, "v"), ".")
	if !ok {
		return false
	}
	for _, part := range []string{major, minor} {
		if _, err := strconv.ParseUint(part, 10, 16); err != nil {
			return false
		}
	}
	return true
}

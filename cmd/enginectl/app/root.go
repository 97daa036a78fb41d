// Package app provides the command-line interface implementation for
// enginectl.
//
// This package contains all CLI commands and their implementations, built
// with cobra. Commands are organized hierarchically with a root command and
// subcommands, one file per command.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
	"github.com/tsingmao/enginectl/internal/config"
	"github.com/tsingmao/enginectl/internal/logger"
)

const (
	// cliName is the name of the CLI application
	cliName = "enginectl"

	// cliDescription is the short description shown in help text
	cliDescription = "enginectl - talk to a container engine over its JSON API"
)

// Build information, set with -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// GlobalOptions holds options that are common to all commands
type GlobalOptions struct {
	// ConfigFile overrides the default config file location.
	ConfigFile string

	// Host is the engine connection string.
	Host string

	// TLSVerify enables TLS with client certificates.
	TLSVerify bool

	// TLSCACert, TLSCert and TLSKey override the certificate files.
	TLSCACert string
	TLSCert   string
	TLSKey    string

	// Verbose enables debug logging
	Verbose bool

	// config is the resolved configuration, set before any command runs.
	config *config.Config
}

// NewEnginectlCommand creates the root enginectl command with all
// subcommands.
//
// The root command provides the main entry point for the CLI. It sets up
// global flags, resolves the configuration before any subcommand runs, and
// registers all subcommands.
//
// Returns:
//   - A configured cobra.Command ready for execution
//
// Example:
//
//	cmd := NewEnginectlCommand()
//	if err := cmd.Execute(); err != nil {
//	    os.Exit(1)
//	}
func NewEnginectlCommand() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   cliName,
		Short: cliDescription,
		Long: `enginectl is a command-line client for container engines that expose the
Docker-compatible JSON API on a unix socket or a TCP port.

The engine address is taken from --host, DOCKER_HOST, the config file
(~/.enginectl/config.yaml) or the default unix:///var/run/docker.sock, in
that order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "",
		"config file (default: ~/.enginectl/config.yaml)")
	flags.StringVarP(&opts.Host, "host", "H", "",
		"engine address, unix:///path or tcp://host:port")
	flags.BoolVar(&opts.TLSVerify, "tlsverify", false,
		"use TLS with client certificates")
	flags.StringVar(&opts.TLSCACert, "tlscacert", "",
		"trust certs signed only by this CA")
	flags.StringVar(&opts.TLSCert, "tlscert", "",
		"path to TLS certificate file")
	flags.StringVar(&opts.TLSKey, "tlskey", "",
		"path to TLS key file")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false,
		"verbose output")

	cmd.AddCommand(
		NewPsCommand(opts),
		NewInspectCommand(opts),
		NewTopCommand(opts),
		NewStatsCommand(opts),
		NewDiffCommand(opts),
		NewExportCommand(opts),
		NewImagesCommand(opts),
		NewPullCommand(opts),
		NewBuildCommand(opts),
		NewNetworkCommand(opts),
		NewEventsCommand(opts),
		NewVersionCommand(opts),
		NewInfoCommand(opts),
		NewPingCommand(opts),
	)

	return cmd
}

// resolve layers the configuration: defaults, config file and environment
// first, then the flags that were set on the command line.
func (o *GlobalOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = o.Host
	}
	if flags.Changed("tlsverify") {
		cfg.TLS.Verify = o.TLSVerify
	}
	if flags.Changed("tlscacert") {
		cfg.TLS.CAFile = o.TLSCACert
	}
	if flags.Changed("tlscert") {
		cfg.TLS.CertFile = o.TLSCert
	}
	if flags.Changed("tlskey") {
		cfg.TLS.KeyFile = o.TLSKey
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Init(cfg.LoggerOptions()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("Using engine %s (API %s)", cfg.Host, cfg.APIVersion)

	o.config = cfg
	return nil
}

// getClient connects to the configured engine.
//
// Parameters:
//   - opts: Global options holding the resolved configuration
//
// Returns:
//   - A connected client; the caller closes it
//   - An error if the engine cannot be reached
func getClient(opts *GlobalOptions) (*client.Client, error) {
	cfg := opts.config
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return client.NewClient(cfg.ClientOptions())
}

// withClient runs fn with a connected client and closes it afterwards.
func withClient(opts *GlobalOptions, fn func(c *client.Client) error) error {
	c, err := getClient(opts)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

// checkError prints an error and exits if err is not nil.
//
// This is a convenience function for fatal error handling in main. It
// prints the error to stderr and exits with code 1.
//
// Parameters:
//   - err: The error to check
func checkError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := NewEnginectlCommand()
	cmd.SilenceErrors = true
	checkError(cmd.Execute())
	logger.Sync()
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

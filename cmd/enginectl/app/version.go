package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
)

// VersionOptions holds options for the version command
type VersionOptions struct {
	*GlobalOptions

	// Client shows only client version
	Client bool

	// Server shows only engine version
	Server bool
}

// NewVersionCommand creates the version command.
//
// The version command displays version information for the CLI client
// and/or the engine.
//
// Usage:
//
//	enginectl version [--client] [--server]
//
// Examples:
//
//	# Show both client and engine versions
//	enginectl version
//
//	# Show only client version
//	enginectl version --client
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for displaying version info
func NewVersionCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &VersionOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long: `Display version information for the enginectl client and the engine.

By default, shows version information for both. Use --client or --server to
show only one.`,
		Example: `  # Show both client and engine versions
  enginectl version

  # Show only client version
  enginectl version --client

  # Show only engine version
  enginectl version --server`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Client, "client", false,
		"show client version only")
	cmd.Flags().BoolVar(&opts.Server, "server", false,
		"show engine version only")

	return cmd
}

// runVersion executes the version command logic.
//
// Returns:
//   - nil on success
//   - error if the engine query fails (when requesting the engine version)
func runVersion(cmd *cobra.Command, opts *VersionOptions) error {
	showClient := opts.Client || !opts.Server
	showServer := opts.Server || !opts.Client
	w := out(cmd)

	if showClient {
		fmt.Fprintln(w, "Client:")
		fmt.Fprintf(w, "  Version:     %s\n", Version)
		fmt.Fprintf(w, "  API version: %s\n", opts.config.APIVersion)
		fmt.Fprintf(w, "  Git commit:  %s\n", GitCommit)
		fmt.Fprintf(w, "  Built:       %s\n", BuildTime)
	}

	if !showServer {
		return nil
	}
	if showClient {
		fmt.Fprintln(w)
	}

	return withClient(opts.GlobalOptions, func(c *client.Client) error {
		ver, err := c.Version()
		if err != nil {
			return fmt.Errorf("failed to get engine version: %w", err)
		}
		fmt.Fprintln(w, "Server:")
		fmt.Fprintf(w, "  Version:     %s\n", ver.Version)
		fmt.Fprintf(w, "  API version: %s (minimum %s)\n", ver.APIVersion, ver.MinAPIVersion)
		fmt.Fprintf(w, "  Go version:  %s\n", ver.GoVersion)
		fmt.Fprintf(w, "  Git commit:  %s\n", ver.GitCommit)
		fmt.Fprintf(w, "  OS/Arch:     %s/%s\n", ver.Os, ver.Arch)
		return nil
	})
}

package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
	"github.com/tsingmao/enginectl/internal/logger"
)

// ExportOptions holds options for the export command
type ExportOptions struct {
	*GlobalOptions

	// Output is the file to write; empty means stdout.
	Output string
}

// NewExportCommand creates the export command, which writes a container's
// filesystem as a tar archive.
func NewExportCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &ExportOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "export CONTAINER",
		Short: "Export a container's filesystem as a tar archive",
		Example: `  enginectl export web -o web.tar
  enginectl export web > web.tar`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts.GlobalOptions, func(c *client.Client) error {
				return runExport(cmd, c, args[0], opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "",
		"write to a file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, c *client.Client, id string, opts *ExportOptions) error {
	data, err := c.ExportContainer(id)
	if err != nil {
		return fmt.Errorf("failed to export container %s: %w", id, err)
	}

	if opts.Output == "" {
		_, err := out(cmd).Write(data)
		return err
	}
	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}
	logger.Debug("Exported %s to %s (%d bytes)", id, opts.Output, len(data))
	return nil
}

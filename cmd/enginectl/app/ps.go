package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
)

// PsOptions holds options for the ps command
type PsOptions struct {
	*GlobalOptions

	// All shows all containers (including stopped)
	All bool
}

// NewPsCommand creates the ps command.
//
// The ps command lists containers, running ones by default.
//
// Usage:
//
//	enginectl ps [OPTIONS]
//
// Examples:
//
//	# List running containers
//	enginectl ps
//
//	# List all containers (including stopped)
//	enginectl ps --all
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for listing containers
func NewPsCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &PsOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List containers",
		Long: `List containers with their image, state, ports and writable layer size.

Only running containers are shown unless --all is given.`,
		Example: `  # List running containers
  enginectl ps

  # List all containers
  enginectl ps -a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts.GlobalOptions, func(c *client.Client) error {
				return runPs(cmd, c, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false,
		"show all containers (default shows just running)")

	return cmd
}

// runPs executes the ps command logic
func runPs(cmd *cobra.Command, c *client.Client, opts *PsOptions) error {
	containers, err := c.ListContainers(opts.All)
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	if len(containers) == 0 {
		fmt.Fprintln(out(cmd), "No containers found")
		return nil
	}

	w := newTable(out(cmd))
	fmt.Fprintln(w, "CONTAINER ID\tIMAGE\tCOMMAND\tCREATED\tSTATUS\tPORTS\tNAMES\tSIZE")
	for _, ctr := range containers {
		size := "-"
		if ctr.SizeRw != nil {
			size = humanSize(*ctr.SizeRw)
		}
		fmt.Fprintf(w, "%s\t%s\t%q\t%s\t%s\t%s\t%s\t%s\n",
			shortID(ctr.ID),
			ctr.Image,
			ctr.Command,
			since(ctr.Created),
			colorStatus(ctr.Status),
			formatPorts(ctr.Ports),
			formatNames(ctr.Names),
			size)
	}
	return w.Flush()
}

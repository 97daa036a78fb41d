package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
	"github.com/tsingmao/enginectl/internal/api"
	"github.com/tsingmao/enginectl/internal/logger"
)

// PullOptions holds options for the pull command
type PullOptions struct {
	*GlobalOptions

	// Image is the reference to pull, "repo[:tag]"
	Image string
}

// NewPullCommand creates the pull command.
//
// The pull command downloads an image from its registry. Progress records
// are printed once the engine has finished the pull.
//
// Usage:
//
//	enginectl pull IMAGE[:TAG]
//
// Examples:
//
//	enginectl pull busybox
//	enginectl pull localhost:5000/app:1.2
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for pulling images
func NewPullCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &PullOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "pull IMAGE[:TAG]",
		Short: "Pull an image from a registry",
		Example: `  enginectl pull busybox
  enginectl pull localhost:5000/app:1.2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Image = args[0]
			return withClient(opts.GlobalOptions, func(c *client.Client) error {
				return runPull(cmd, c, opts)
			})
		},
	}

	return cmd
}

// runPull executes the pull command logic.
func runPull(cmd *cobra.Command, c *client.Client, opts *PullOptions) error {
	repo, tag := splitReference(opts.Image)
	logger.Debug("Pulling %s (tag %q)", repo, tag)

	_, err := c.PullImage(repo, tag, printProgress(cmd))
	if err != nil {
		return fmt.Errorf("failed to pull %s: %w", opts.Image, err)
	}
	return nil
}

// printProgress renders progress records as plain lines.
func printProgress(cmd *cobra.Command) client.ProgressFunc {
	return func(msg *api.ImageStatus) {
		if err := msg.Display(out(cmd), false); err != nil {
			logger.Warn("Failed to display progress record: %v", err)
		}
	}
}

package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
	"github.com/tsingmao/enginectl/internal/api"
)

var changeMarks = map[int]string{
	api.ChangeModify: "C",
	api.ChangeAdd:    "A",
	api.ChangeDelete: "D",
}

// NewDiffCommand creates the diff command, which lists the files changed
// in a container's filesystem.
//
// Each line is prefixed with A (added), C (changed) or D (deleted).
func NewDiffCommand(globalOpts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "diff CONTAINER",
		Short:   "Inspect changes to files on a container's filesystem",
		Example: `  enginectl diff web`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(globalOpts, func(c *client.Client) error {
				changes, err := c.ContainerChanges(args[0])
				if err != nil {
					return fmt.Errorf("failed to get changes of %s: %w", args[0], err)
				}
				for _, ch := range changes {
					mark, ok := changeMarks[ch.Kind]
					if !ok {
						mark = "?"
					}
					fmt.Fprintf(out(cmd), "%s %s\n", mark, ch.Path)
				}
				return nil
			})
		},
	}
}

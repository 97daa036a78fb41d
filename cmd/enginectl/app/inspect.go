package app

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewInspectCommand creates the inspect command, which prints the detailed
// record of a container as indented JSON.
func NewInspectCommand(globalOpts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "inspect CONTAINER",
		Short:   "Display detailed information on a container",
		Example: `  enginectl inspect web`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(globalOpts, func(c *client.Client) error {
				info, err := c.InspectContainer(args[0])
				if err != nil {
					return fmt.Errorf("failed to inspect container %s: %w", args[0], err)
				}
				data, err := json.MarshalIndent(info, "", "    ")
				if err != nil {
					return fmt.Errorf("failed to render container %s: %w", args[0], err)
				}
				fmt.Fprintln(out(cmd), string(data))
				return nil
			})
		},
	}
}

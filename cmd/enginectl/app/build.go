package app

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
)

// BuildOptions holds options for the build command
type BuildOptions struct {
	*GlobalOptions

	// Tag names the resulting image
	Tag string

	// Context is the path of the context tar archive, "-" for stdin
	Context string
}

// NewBuildCommand creates the build command.
//
// The build context must already be a tar archive holding a Dockerfile at
// its root; it is uploaded as is.
func NewBuildCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &BuildOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "build CONTEXT.tar|-",
		Short: "Build an image from a tar build context",
		Example: `  enginectl build -t app:dev context.tar
  tar -C src -c . | enginectl build -t app:dev -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Context = args[0]
			return withClient(opts.GlobalOptions, func(c *client.Client) error {
				return runBuild(cmd, c, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Tag, "tag", "t", "",
		"name and optionally a tag in the name:tag format")

	return cmd
}

func runBuild(cmd *cobra.Command, c *client.Client, opts *BuildOptions) error {
	var (
		buildContext []byte
		err          error
	)
	if opts.Context == "-" {
		buildContext, err = io.ReadAll(cmd.InOrStdin())
	} else {
		buildContext, err = os.ReadFile(opts.Context)
	}
	if err != nil {
		return fmt.Errorf("failed to read build context: %w", err)
	}

	if _, err := c.BuildImage(buildContext, opts.Tag, printProgress(cmd)); err != nil {
		return fmt.Errorf("failed to build image: %w", err)
	}
	return nil
}

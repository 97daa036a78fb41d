package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
)

// ImagesOptions holds options for the images command
type ImagesOptions struct {
	*GlobalOptions

	// All includes intermediate images
	All bool
}

// NewImagesCommand creates the images command.
//
// Usage:
//
//	enginectl images [-a]
//
// Images with several tags are listed once per tag; untagged images are
// shown as <none>.
func NewImagesCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &ImagesOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "images",
		Short: "List images",
		Example: `  enginectl images
  enginectl images -a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts.GlobalOptions, func(c *client.Client) error {
				return runImages(cmd, c, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false,
		"show all images (default hides intermediate images)")

	return cmd
}

func runImages(cmd *cobra.Command, c *client.Client, opts *ImagesOptions) error {
	images, err := c.ListImages(opts.All)
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}

	w := newTable(out(cmd))
	fmt.Fprintln(w, "REPOSITORY\tTAG\tIMAGE ID\tCREATED\tSIZE")
	for _, img := range images {
		tags := img.RepoTags
		if len(tags) == 0 {
			tags = []string{"<none>:<none>"}
		}
		for _, t := range tags {
			repo, tag := repoTag(t)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				repo, tag, shortID(img.ID), since(img.Created), humanSize(img.Size))
		}
	}
	return w.Flush()
}

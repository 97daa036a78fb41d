package app

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
)

// NewTopCommand creates the top command.
//
// Usage:
//
//	enginectl top CONTAINER [ps OPTIONS]
//
// Extra arguments are passed to ps inside the container.
func NewTopCommand(globalOpts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "top CONTAINER [ps OPTIONS]",
		Short: "Display the running processes of a container",
		Example: `  enginectl top web
  enginectl top web aux`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(globalOpts, func(c *client.Client) error {
				return runTop(cmd, c, args[0], strings.Join(args[1:], " "))
			})
		},
	}
}

func runTop(cmd *cobra.Command, c *client.Client, id, psArgs string) error {
	procs, err := c.ContainerTop(id, psArgs)
	if err != nil {
		return fmt.Errorf("failed to list processes of %s: %w", id, err)
	}

	w := newTable(out(cmd))
	fmt.Fprintln(w, "USER\tPID\t%CPU\t%MEM\tSTAT\tTIME\tCOMMAND")
	for _, p := range procs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.User,
			p.PID,
			lo.FromPtrOr(p.CPU, "-"),
			lo.FromPtrOr(p.Memory, "-"),
			lo.FromPtrOr(p.Stat, "-"),
			lo.FromPtrOr(p.Time, "-"),
			p.Command)
	}
	return w.Flush()
}

package app

import (
	"fmt"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
)

// NewInfoCommand creates the info command, which prints engine host and
// resource information.
func NewInfoCommand(globalOpts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display engine-wide information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(globalOpts, func(c *client.Client) error {
				info, err := c.Info()
				if err != nil {
					return fmt.Errorf("failed to get engine info: %w", err)
				}
				w := out(cmd)
				fmt.Fprintf(w, "Containers: %d\n", info.Containers)
				fmt.Fprintf(w, " Running: %d\n", info.ContainersRunning)
				fmt.Fprintf(w, " Paused: %d\n", info.ContainersPaused)
				fmt.Fprintf(w, " Stopped: %d\n", info.ContainersStopped)
				fmt.Fprintf(w, "Images: %d\n", info.Images)
				fmt.Fprintf(w, "Server Version: %s\n", info.ServerVersion)
				fmt.Fprintf(w, "Storage Driver: %s\n", info.Driver)
				fmt.Fprintf(w, "Kernel Version: %s\n", info.KernelVersion)
				fmt.Fprintf(w, "Operating System: %s\n", info.OperatingSystem)
				fmt.Fprintf(w, "Architecture: %s\n", info.Architecture)
				fmt.Fprintf(w, "CPUs: %d\n", info.NCPU)
				fmt.Fprintf(w, "Total Memory: %s\n", units.BytesSize(float64(info.MemTotal)))
				fmt.Fprintf(w, "Name: %s\n", info.Name)
				fmt.Fprintf(w, "ID: %s\n", info.ID)
				return nil
			})
		},
	}
}

// NewPingCommand creates the ping command, which checks that the engine
// answers.
func NewPingCommand(globalOpts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the engine is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(globalOpts, func(c *client.Client) error {
				pong, err := c.Ping()
				if err != nil {
					return fmt.Errorf("engine did not answer: %w", err)
				}
				fmt.Fprintf(out(cmd), "%s (%s)\n", pong, c.Host())
				return nil
			})
		},
	}
}

package app

import (
	"fmt"
	"strings"

	"github.com/docker/go-units"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
	"github.com/tsingmao/enginectl/internal/api"
)

// NewStatsCommand creates the stats command, which prints one resource
// usage sample of a running container.
func NewStatsCommand(globalOpts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "stats CONTAINER",
		Short:   "Display a resource usage sample of a container",
		Example: `  enginectl stats web`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(globalOpts, func(c *client.Client) error {
				return runStats(cmd, c, args[0])
			})
		},
	}
}

func runStats(cmd *cobra.Command, c *client.Client, ref string) error {
	ctr, err := findContainer(c, ref)
	if err != nil {
		return err
	}

	stats, err := c.ContainerStats(ctr)
	if err != nil {
		return fmt.Errorf("failed to get stats of %s: %w", ref, err)
	}

	var rx, tx uint64
	for _, n := range stats.Networks {
		rx += n.RxBytes
		tx += n.TxBytes
	}

	w := newTable(out(cmd))
	fmt.Fprintln(w, "CONTAINER ID\tNAME\tCPU %\tMEM USAGE / LIMIT\tMEM %\tNET I/O")
	fmt.Fprintf(w, "%s\t%s\t%.2f%%\t%s / %s\t%.2f%%\t%s / %s\n",
		shortID(ctr.ID),
		formatNames(ctr.Names),
		cpuPercent(stats),
		units.BytesSize(float64(stats.MemoryStats.Usage)),
		units.BytesSize(float64(stats.MemoryStats.Limit)),
		memPercent(stats),
		units.HumanSizeWithPrecision(float64(rx), 3),
		units.HumanSizeWithPrecision(float64(tx), 3))
	return w.Flush()
}

// findContainer resolves an ID prefix or name to its list record, which
// carries the status string the stats call is checked against.
func findContainer(c *client.Client, ref string) (api.Container, error) {
	containers, err := c.ListContainers(true)
	if err != nil {
		return api.Container{}, fmt.Errorf("failed to list containers: %w", err)
	}
	ctr, ok := lo.Find(containers, func(ctr api.Container) bool {
		return strings.HasPrefix(ctr.ID, ref) || lo.Contains(ctr.Names, "/"+ref)
	})
	if !ok {
		return api.Container{}, fmt.Errorf("no such container: %s", ref)
	}
	return ctr, nil
}

// cpuPercent compares the sample with the previous one taken by the engine.
func cpuPercent(s *api.Stats) float64 {
	cpuDelta := float64(s.CPUStats.CPUUsage.TotalUsage) - float64(s.PreCPUStats.CPUUsage.TotalUsage)
	sysDelta := float64(s.CPUStats.SystemUsage) - float64(s.PreCPUStats.SystemUsage)
	if cpuDelta <= 0 || sysDelta <= 0 {
		return 0
	}
	cpus := s.CPUStats.OnlineCPUs
	if cpus == 0 {
		cpus = len(s.CPUStats.CPUUsage.PercpuUsage)
	}
	if cpus == 0 {
		cpus = 1
	}
	return cpuDelta / sysDelta * float64(cpus) * 100
}

func memPercent(s *api.Stats) float64 {
	if s.MemoryStats.Limit == 0 {
		return 0
	}
	return float64(s.MemoryStats.Usage) / float64(s.MemoryStats.Limit) * 100
}

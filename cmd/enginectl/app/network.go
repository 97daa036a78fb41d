package app

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
	"github.com/tsingmao/enginectl/internal/api"
)

// NetworkCreateOptions holds options for the network create command
type NetworkCreateOptions struct {
	*GlobalOptions

	Driver     string
	Internal   bool
	Attachable bool
	IPv6       bool
	Labels     []string
	DriverOpts []string
}

// NewNetworkCommand creates the network command group.
//
// Usage:
//
//	enginectl network ls
//	enginectl network create [OPTIONS] NAME
//	enginectl network rm NETWORK...
func NewNetworkCommand(globalOpts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Manage networks",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(
		newNetworkListCommand(globalOpts),
		newNetworkCreateCommand(globalOpts),
		newNetworkRemoveCommand(globalOpts),
	)
	return cmd
}

func newNetworkListCommand(globalOpts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List networks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(globalOpts, func(c *client.Client) error {
				networks, err := c.ListNetworks()
				if err != nil {
					return fmt.Errorf("failed to list networks: %w", err)
				}
				w := newTable(out(cmd))
				fmt.Fprintln(w, "NETWORK ID\tNAME\tDRIVER\tSCOPE")
				for _, n := range networks {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(n.ID), n.Name, n.Driver, n.Scope)
				}
				return w.Flush()
			})
		},
	}
}

func newNetworkCreateCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &NetworkCreateOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "create [OPTIONS] NAME",
		Short: "Create a network",
		Example: `  enginectl network create backend
  enginectl network create --internal --label tier=db db-net`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := opts.spec(cmd, args[0])
			if err != nil {
				return err
			}
			return withClient(opts.GlobalOptions, func(c *client.Client) error {
				id, err := c.CreateNetwork(spec)
				if err != nil {
					return fmt.Errorf("failed to create network %s: %w", args[0], err)
				}
				fmt.Fprintln(out(cmd), id)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Driver, "driver", "d", "", "driver to manage the network")
	flags.BoolVar(&opts.Internal, "internal", false, "restrict external access to the network")
	flags.BoolVar(&opts.Attachable, "attachable", false, "enable manual container attachment")
	flags.BoolVar(&opts.IPv6, "ipv6", false, "enable IPv6 networking")
	flags.StringArrayVar(&opts.Labels, "label", nil, "set metadata on the network (key=value)")
	flags.StringArrayVarP(&opts.DriverOpts, "opt", "o", nil, "set driver specific options (key=value)")

	return cmd
}

// spec builds the create payload. Boolean options are only sent when given
// on the command line.
func (o *NetworkCreateOptions) spec(cmd *cobra.Command, name string) (api.NetworkCreate, error) {
	labels, err := parseKeyValues(o.Labels)
	if err != nil {
		return api.NetworkCreate{}, fmt.Errorf("invalid --label: %w", err)
	}
	driverOpts, err := parseKeyValues(o.DriverOpts)
	if err != nil {
		return api.NetworkCreate{}, fmt.Errorf("invalid --opt: %w", err)
	}

	flags := cmd.Flags()
	optional := func(flag string, v bool) *bool {
		if !flags.Changed(flag) {
			return nil
		}
		return lo.ToPtr(v)
	}

	return api.NetworkCreate{
		Name:           name,
		CheckDuplicate: lo.ToPtr(true),
		Driver:         o.Driver,
		Internal:       optional("internal", o.Internal),
		Attachable:     optional("attachable", o.Attachable),
		EnableIPv6:     optional("ipv6", o.IPv6),
		Options:        driverOpts,
		Labels:         labels,
	}, nil
}

func newNetworkRemoveCommand(globalOpts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NETWORK...",
		Aliases: []string{"remove"},
		Short:   "Remove one or more networks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(globalOpts, func(c *client.Client) error {
				var failed []string
				for _, name := range args {
					if err := c.DeleteNetwork(name); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Error: failed to remove network %s: %v\n", name, err)
						failed = append(failed, name)
						continue
					}
					fmt.Fprintln(out(cmd), name)
				}
				if len(failed) > 0 {
					return fmt.Errorf("failed to remove network(s): %s", strings.Join(failed, ", "))
				}
				return nil
			})
		},
	}
}

// parseKeyValues turns "k=v" items into a map. Nil in, nil out.
func parseKeyValues(items []string) (map[string]string, error) {
	if len(items) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(items))
	for _, item := range items {
		k, v, ok := strings.Cut(item, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", item)
		}
		m[k] = v
	}
	return m, nil
}

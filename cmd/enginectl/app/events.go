package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/filters"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tsingmao/enginectl/cmd/enginectl/client"
	"github.com/tsingmao/enginectl/internal/api"
)

// EventsOptions holds options for the events command
type EventsOptions struct {
	*GlobalOptions

	Since   string
	Until   string
	Filters []string
}

// NewEventsCommand creates the events command.
//
// The command prints past events in a bounded window. When --until is not
// given the window ends now, so the command always terminates.
//
// Examples:
//
//	enginectl events --since 10m
//	enginectl events --since 1700000000 --until 1700003600 --filter type=container
func NewEventsCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &EventsOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show engine events in a time window",
		Example: `  enginectl events --since 10m
  enginectl events --since 1700000000 --until 1700003600 --filter type=container`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := opts.query(time.Now())
			if err != nil {
				return err
			}
			return withClient(opts.GlobalOptions, func(c *client.Client) error {
				events, err := c.Events(query)
				if err != nil {
					return fmt.Errorf("failed to get events: %w", err)
				}
				for _, e := range events {
					fmt.Fprintln(out(cmd), formatEvent(e))
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Since, "since", "", "show events created since timestamp or duration (e.g. 10m)")
	flags.StringVar(&opts.Until, "until", "", "show events created until timestamp or duration (default: now)")
	flags.StringArrayVarP(&opts.Filters, "filter", "f", nil, "filter output (key=value, repeatable)")

	return cmd
}

func (o *EventsOptions) query(now time.Time) (client.EventsOptions, error) {
	args := filters.NewArgs()
	for _, f := range o.Filters {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return client.EventsOptions{}, fmt.Errorf("invalid --filter %q: expected key=value", f)
		}
		args.Add(k, v)
	}

	until := o.Until
	if until == "" {
		until = strconv.FormatInt(now.Unix(), 10)
	}
	return client.EventsOptions{Since: o.Since, Until: until, Filters: args}, nil
}

// formatEvent renders an event the way the engine's own CLI does:
// time, type, action, actor and sorted attributes.
func formatEvent(e api.Event) string {
	ts := time.Unix(e.Time, 0)
	if e.TimeNano != 0 {
		ts = time.Unix(0, e.TimeNano)
	}

	actorID := lo.Ternary(e.Actor.ID != "", e.Actor.ID, e.ID)
	line := fmt.Sprintf("%s %s %s %s", ts.Format(time.RFC3339Nano), e.Type, e.Action, actorID)

	if len(e.Actor.Attributes) == 0 {
		return line
	}
	keys := lo.Keys(e.Actor.Attributes)
	sort.Strings(keys)
	attrs := lo.Map(keys, func(k string, _ int) string {
		return k + "=" + e.Actor.Attributes[k]
	})
	return line + " (" + strings.Join(attrs, ", ") + ")"
}

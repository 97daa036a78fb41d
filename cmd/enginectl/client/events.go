// Package client - events.go implements the event history query.
package client

import (
	"fmt"
	"net/url"

	"github.com/docker/docker/api/types/filters"

	"github.com/tsingmao/enginectl/internal/api"
)

// EventsOptions selects a window of the event history.
type EventsOptions struct {
	// Since and Until are unix timestamps or durations relative to now, as
	// accepted by the engine. Empty means unbounded.
	Since string
	Until string

	// Filters restricts the event types, e.g. type=container.
	Filters filters.Args
}

// Events returns the events in the requested window.
//
// The engine keeps the response open while new events arrive, so Until
// should be set; the body then ends when the engine closes the connection.
// After that the client must be reconnected before the next call.
//
// Parameters:
//   - opts: Time window and filters
//
// Returns:
//   - The events in stream order
//   - An error if the filters cannot be encoded or the call fails
func (c *Client) Events(opts EventsOptions) ([]api.Event, error) {
	query := url.Values{}
	if opts.Since != "" {
		query.Set("since", opts.Since)
	}
	if opts.Until != "" {
		query.Set("until", opts.Until)
	}
	if opts.Filters.Len() > 0 {
		encoded, err := filters.ToJSON(opts.Filters)
		if err != nil {
			return nil, fmt.Errorf("failed to encode event filters: %w", err)
		}
		query.Set("filters", encoded)
	}

	var events []api.Event
	if err := c.doStream("GET", "/events", query, nil, "", &events); err != nil {
		return nil, err
	}
	return events, nil
}

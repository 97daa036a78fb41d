// Package client - networks.go implements network management operations.
package client

import (
	"fmt"

	"github.com/tsingmao/enginectl/internal/api"
)

// ListNetworks returns every network known to the engine.
func (c *Client) ListNetworks() ([]api.Network, error) {
	var networks []api.Network
	if err := c.doRequest("GET", "/networks", nil, nil, &networks); err != nil {
		return nil, err
	}
	return networks, nil
}

// CreateNetwork creates a network and returns its ID.
//
// Parameters:
//   - spec: Network definition; only Name is required
//
// Returns:
//   - The ID of the new network
//   - An error if the engine rejects the request or returns no ID
//
// Example:
//
//	id, err := client.CreateNetwork(api.NetworkCreate{Name: "backend"})
func (c *Client) CreateNetwork(spec api.NetworkCreate) (string, error) {
	if spec.Name == "" {
		return "", fmt.Errorf("network name is required")
	}

	var resp api.NetworkCreateResponse
	if err := c.doRequest("POST", "/networks/create", nil, spec, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("engine returned no id for network %s", spec.Name)
	}
	return resp.ID, nil
}

// DeleteNetwork removes the network with the given ID or name.
func (c *Client) DeleteNetwork(idOrName string) error {
	return c.doRequest("DELETE", "/networks/"+segment(idOrName), nil, nil, nil)
}

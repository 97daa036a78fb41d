// Package client - system.go implements system information operations.
//
// This file provides methods for querying engine liveness, version
// information and host details.
package client

import (
	"strings"

	"github.com/tsingmao/enginectl/internal/api"
)

// Ping checks that the engine answers and returns its reply, normally "OK".
func (c *Client) Ping() (string, error) {
	text, err := c.doText("GET", "/_ping", nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Version retrieves version and build information from the engine.
//
// Returns:
//   - A pointer to Version with engine version details
//   - An error if the request fails
//
// Example:
//
//	ver, err := client.Version()
//	if err != nil {
//	    log.Fatalf("Failed to get version: %v", err)
//	}
//	fmt.Printf("Engine %s (API %s, commit %s)\n",
//	    ver.Version, ver.APIVersion, ver.GitCommit)
func (c *Client) Version() (*api.Version, error) {
	var resp api.Version
	if err := c.doRequest("GET", "/version", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Info retrieves host and resource information from the engine.
func (c *Client) Info() (*api.SystemInfo, error) {
	var resp api.SystemInfo
	if err := c.doRequest("GET", "/info", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

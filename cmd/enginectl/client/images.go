// Package client - images.go implements image operations.
//
// This file provides listing, pulling and building images. Pull and build
// are streaming endpoints; their progress records are delivered through a
// ProgressFunc after the call completes.
package client

import (
	"fmt"
	"net/url"

	"github.com/tsingmao/enginectl/internal/api"
	"github.com/tsingmao/enginectl/internal/httpwire"
)

// ListImages retrieves the image list.
//
// Parameters:
//   - all: Include intermediate layers
func (c *Client) ListImages(all bool) ([]api.Image, error) {
	query := url.Values{"all": {boolParam(all)}}

	var images []api.Image
	if err := c.doRequest("GET", "/images/json", query, nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// PullImage pulls an image from its registry.
//
// Parameters:
//   - ref: Image reference without tag (e.g., "library/busybox")
//   - tag: Tag to pull (empty for "latest")
//   - progress: Optional callback for each progress record
//
// Returns:
//   - All progress records
//   - An error if the call fails or the stream reports an error
//
// Example:
//
//	_, err := client.PullImage("busybox", "", func(m *api.ImageStatus) {
//	    fmt.Println(m.Status)
//	})
func (c *Client) PullImage(ref, tag string, progress ProgressFunc) ([]api.ImageStatus, error) {
	if ref == "" {
		return nil, fmt.Errorf("image reference is required")
	}
	if tag == "" {
		tag = "latest"
	}
	query := url.Values{"fromImage": {ref}, "tag": {tag}}

	var msgs []api.ImageStatus
	if err := c.doStream("POST", "/images/create", query, nil, "", &msgs); err != nil {
		return nil, err
	}
	return processProgress("pull", msgs, progress)
}

// BuildImage builds an image from a tar archive of the build context.
//
// Parameters:
//   - buildContext: Tar archive holding the Dockerfile and context files
//   - tag: Name and optional tag for the result (empty for none)
//   - progress: Optional callback for each progress record
func (c *Client) BuildImage(buildContext []byte, tag string, progress ProgressFunc) ([]api.ImageStatus, error) {
	var query url.Values
	if tag != "" {
		query = url.Values{"t": {tag}}
	}

	var msgs []api.ImageStatus
	if err := c.doStream("POST", "/build", query, buildContext, httpwire.ContentTypeTar, &msgs); err != nil {
		return nil, err
	}
	return processProgress("build", msgs, progress)
}

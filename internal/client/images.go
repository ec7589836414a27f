package client

import (
	"context"
	"fmt"

	"github.com/kaigouthro/nimbus/internal/http"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

type rawImage struct {
	ID              string  `json:"id"`
	Name            *string `json:"name"`
	Status          string  `json:"status"`
	Visibility      string  `json:"visibility"`
	Size            *int64  `json:"size"`
	MinDisk         flexInt `json:"min_disk"`
	MinRAM          flexInt `json:"min_ram"`
	DiskFormat      *string `json:"disk_format"`
	ContainerFormat *string `json:"container_format"`
	OSDistro        string  `json:"os_distro"`
	Owner           string  `json:"owner"`
	CreatedAt       *string `json:"created_at"`
}

// ImagesClient implements openstack.ImagesClient.
type ImagesClient struct {
	httpClient *http.Client
	resolver   resolver
}

// NewImagesClient creates a new image client.
func NewImagesClient(httpClient *http.Client, r resolver) *ImagesClient {
	return &ImagesClient{
		httpClient: httpClient,
		resolver:   r,
	}
}

// List implements openstack.ImagesClient.List.
func (c *ImagesClient) List(ctx context.Context, session *openstack.Session) ([]openstack.Image, error) {
	baseURL, _, err := c.resolver.endpoint(session, openstack.ServiceImage)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	endpoint := openstack.BuildPath(baseURL, openstack.ImageAPIVersion, "images")

	resp, err := c.httpClient.Get(ctx, openstack.ServiceImage, endpoint, session.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	var body struct {
		Images []rawImage `json:"images"`
	}

	err = decode(resp, &body, "images list")
	if err != nil {
		return nil, err
	}

	images := make([]openstack.Image, 0, len(body.Images))
	for _, raw := range body.Images {
		image := openstack.Image{
			ID:              raw.ID,
			Name:            stringValue(raw.Name),
			Status:          raw.Status,
			Visibility:      raw.Visibility,
			MinDiskGB:       int(raw.MinDisk),
			MinRAMMB:        int(raw.MinRAM),
			DiskFormat:      stringValue(raw.DiskFormat),
			ContainerFormat: stringValue(raw.ContainerFormat),
			OSDistro:        raw.OSDistro,
			Owner:           raw.Owner,
			CreatedAt:       parseTime(raw.CreatedAt),
		}

		if raw.Size != nil {
			image.SizeBytes = *raw.Size
		}

		images = append(images, image)
	}

	return images, nil
}

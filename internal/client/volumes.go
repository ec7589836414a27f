package client

import (
	"context"
	"fmt"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/kaigouthro/nimbus/internal/http"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

type rawVolume struct {
	ID               string   `json:"id"`
	Name             *string  `json:"name"`
	Size             flexInt  `json:"size"`
	Status           string   `json:"status"`
	VolumeType       *string  `json:"volume_type"`
	Bootable         flexBool `json:"bootable"`
	AvailabilityZone string   `json:"availability_zone"`
	CreatedAt        *string  `json:"created_at"`
	Attachments      []struct {
		AttachmentID string `json:"attachment_id"`
		ID           string `json:"id"`
		ServerID     string `json:"server_id"`
		Device       string `json:"device"`
	} `json:"attachments"`
}

type rawSnapshot struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	VolumeID    string  `json:"volume_id"`
	Status      string  `json:"status"`
	Size        flexInt `json:"size"`
	Description *string `json:"description"`
}

// VolumesClient implements openstack.VolumesClient.
type VolumesClient struct {
	httpClient *http.Client
	resolver   resolver
}

// NewVolumesClient creates a new block storage client.
func NewVolumesClient(httpClient *http.Client, r resolver) *VolumesClient {
	return &VolumesClient{
		httpClient: httpClient,
		resolver:   r,
	}
}

func (c *VolumesClient) url(session *openstack.Session, segments ...string) (string, error) {
	baseURL, _, err := c.resolver.endpoint(session, openstack.VolumeServiceTypes...)
	if err != nil {
		return "", err
	}

	return openstack.JoinPath(baseURL, segments...), nil
}

func toVolume(raw *rawVolume) openstack.Volume {
	volume := openstack.Volume{
		ID:               raw.ID,
		Name:             stringValue(raw.Name),
		SizeGB:           int(raw.Size),
		Status:           raw.Status,
		Type:             stringValue(raw.VolumeType),
		Bootable:         bool(raw.Bootable),
		AvailabilityZone: raw.AvailabilityZone,
		CreatedAt:        parseTime(raw.CreatedAt),
		Attachments:      make([]openstack.VolumeAttachment, 0, len(raw.Attachments)),
	}

	for _, a := range raw.Attachments {
		attachmentID := a.AttachmentID
		if attachmentID == "" {
			attachmentID = a.ID
		}

		volume.Attachments = append(volume.Attachments, openstack.VolumeAttachment{
			AttachmentID: attachmentID,
			ServerID:     a.ServerID,
			Device:       a.Device,
		})
	}

	return volume
}

// List implements openstack.VolumesClient.List.
func (c *VolumesClient) List(ctx context.Context, session *openstack.Session) ([]openstack.Volume, error) {
	endpoint, err := c.url(session, "volumes", "detail")
	if err != nil {
		return nil, fmt.Errorf("listing volumes: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, openstack.ServiceVolume, endpoint, session.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("listing volumes: %w", err)
	}

	var body struct {
		Volumes []rawVolume `json:"volumes"`
	}

	err = decode(resp, &body, "volumes list")
	if err != nil {
		return nil, err
	}

	volumes := make([]openstack.Volume, 0, len(body.Volumes))
	for i := range body.Volumes {
		volumes = append(volumes, toVolume(&body.Volumes[i]))
	}

	return volumes, nil
}

// Create implements openstack.VolumesClient.Create.
func (c *VolumesClient) Create(ctx context.Context, session *openstack.Session, request *openstack.CreateVolumeRequest) (*openstack.Volume, error) {
	err := request.Validate()
	if err != nil {
		return nil, err
	}

	endpoint, err := c.url(session, "volumes")
	if err != nil {
		return nil, fmt.Errorf("creating volume: %w", err)
	}

	payload := map[string]any{
		"volume": struct {
			Name             string `json:"name,omitempty"`
			Size             int    `json:"size"`
			VolumeType       string `json:"volume_type,omitempty"`
			AvailabilityZone string `json:"availability_zone,omitempty"`
			Description      string `json:"description,omitempty"`
		}{
			Name:             request.Name,
			Size:             request.SizeGB,
			VolumeType:       request.VolumeType,
			AvailabilityZone: request.AvailabilityZone,
			Description:      request.Description,
		},
	}

	resp, err := c.httpClient.Post(ctx, openstack.ServiceVolume, endpoint, session.Token, payload)
	if err != nil {
		return nil, fmt.Errorf("creating volume: %w", err)
	}

	var body struct {
		Volume rawVolume `json:"volume"`
	}

	err = decode(resp, &body, "created volume")
	if err != nil {
		return nil, err
	}

	volume := toVolume(&body.Volume)

	return &volume, nil
}

// Delete implements openstack.VolumesClient.Delete.
func (c *VolumesClient) Delete(ctx context.Context, session *openstack.Session, volumeID string) error {
	err := openstack.RequireID("volume_id", volumeID)
	if err != nil {
		return err
	}

	endpoint, err := c.url(session, "volumes", volumeID)
	if err != nil {
		return fmt.Errorf("deleting volume: %w", err)
	}

	_, err = c.httpClient.Delete(ctx, openstack.ServiceVolume, endpoint, session.Token)
	if err != nil {
		return fmt.Errorf("deleting volume: %w", err)
	}

	return nil
}

// Extend implements openstack.VolumesClient.Extend.
func (c *VolumesClient) Extend(ctx context.Context, session *openstack.Session, volumeID string, request *openstack.ExtendVolumeRequest) error {
	err := openstack.RequireID("volume_id", volumeID)
	if err != nil {
		return err
	}

	err = request.Validate()
	if err != nil {
		return err
	}

	endpoint, err := c.url(session, "volumes", volumeID, "action")
	if err != nil {
		return fmt.Errorf("extending volume: %w", err)
	}

	payload := map[string]any{
		constants.ActionExtendVolume: map[string]int{"new_size": request.NewSizeGB},
	}

	_, err = c.httpClient.Post(ctx, openstack.ServiceVolume, endpoint, session.Token, payload)
	if err != nil {
		return fmt.Errorf("extending volume: %w", err)
	}

	return nil
}

// CreateSnapshot implements openstack.VolumesClient.CreateSnapshot.
func (c *VolumesClient) CreateSnapshot(ctx context.Context, session *openstack.Session, request *openstack.CreateVolumeSnapshotRequest) (*openstack.VolumeSnapshot, error) {
	err := request.Validate()
	if err != nil {
		return nil, err
	}

	endpoint, err := c.url(session, "snapshots")
	if err != nil {
		return nil, fmt.Errorf("creating volume snapshot: %w", err)
	}

	description := request.Description
	if description == "" {
		description = "Snapshot of volume " + request.VolumeID
	}

	snapshot := map[string]any{
		"name":        request.Name,
		"volume_id":   request.VolumeID,
		"description": description,
	}
	if request.Force {
		snapshot["force"] = true
	}

	resp, err := c.httpClient.Post(ctx, openstack.ServiceVolume, endpoint, session.Token, map[string]any{"snapshot": snapshot})
	if err != nil {
		return nil, fmt.Errorf("creating volume snapshot: %w", err)
	}

	result := &openstack.VolumeSnapshot{
		Name:        request.Name,
		VolumeID:    request.VolumeID,
		Description: description,
	}

	if resp.NoContent {
		return result, nil
	}

	var body struct {
		Snapshot rawSnapshot `json:"snapshot"`
	}

	err = decode(resp, &body, "volume snapshot")
	if err != nil {
		return nil, err
	}

	result.ID = body.Snapshot.ID
	result.Status = body.Snapshot.Status
	result.SizeGB = int(body.Snapshot.Size)

	if body.Snapshot.Name != nil {
		result.Name = *body.Snapshot.Name
	}

	if body.Snapshot.Description != nil {
		result.Description = *body.Snapshot.Description
	}

	return result, nil
}

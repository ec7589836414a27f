package client

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/kaigouthro/nimbus/internal/http"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

// rawRef is a flavor or image reference. Nova sends an object with an id,
// or an empty string for servers booted from a volume.
type rawRef struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name"`
}

func (r *rawRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	type plain rawRef

	return json.Unmarshal(data, (*plain)(r))
}

type rawAddress struct {
	Addr    string `json:"addr"`
	Version int    `json:"version"`
	Type    string `json:"OS-EXT-IPS:type"`
}

type rawServer struct {
	ID                 string                  `json:"id"`
	Name               string                  `json:"name"`
	Status             string                  `json:"status"`
	Flavor             rawRef                  `json:"flavor"`
	Image              rawRef                  `json:"image"`
	Addresses          map[string][]rawAddress `json:"addresses"`
	VMState            string                  `json:"OS-EXT-STS:vm_state"`
	TaskState          *string                 `json:"OS-EXT-STS:task_state"`
	PowerState         *int                    `json:"OS-EXT-STS:power_state"`
	LaunchedAt         *string                 `json:"OS-SRV-USG:launched_at"`
	TerminatedAt       *string                 `json:"OS-SRV-USG:terminated_at"`
	Locked             flexBool                `json:"locked"`
	Host               string                  `json:"OS-EXT-SRV-ATTR:host"`
	Hostname           string                  `json:"OS-EXT-SRV-ATTR:hostname"`
	HypervisorHostname string                  `json:"OS-EXT-SRV-ATTR:hypervisor_hostname"`
	TenantID           string                  `json:"tenant_id"`
	UserID             string                  `json:"user_id"`
	KeyName            *string                 `json:"key_name"`
	Description        *string                 `json:"description"`
	AvailabilityZone   string                  `json:"OS-EXT-AZ:availability_zone"`
	Created            string                  `json:"created"`
	VolumesAttached    []struct {
		ID string `json:"id"`
	} `json:"os-extended-volumes:volumes_attached"`
	SecurityGroups []struct {
		Name string `json:"name"`
	} `json:"security_groups"`
}

type rawFlavor struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	VCPUs     flexInt `json:"vcpus"`
	RAM       flexInt `json:"ram"`
	Disk      flexInt `json:"disk"`
	Ephemeral flexInt `json:"OS-FLV-EXT-DATA:ephemeral"`
	Swap      flexInt `json:"swap"`
	IsPublic  *bool   `json:"os-flavor-access:is_public"`
}

type rawKeyPair struct {
	ID          flexString `json:"id"`
	Name        string     `json:"name"`
	Fingerprint string     `json:"fingerprint"`
	PublicKey   string     `json:"public_key"`
	Type        string     `json:"type"`
}

// ComputeClient implements openstack.ComputeClient.
type ComputeClient struct {
	httpClient *http.Client
	resolver   resolver
	logger     openstack.Logger
}

// NewComputeClient creates a new compute client.
func NewComputeClient(httpClient *http.Client, r resolver, logger openstack.Logger) *ComputeClient {
	return &ComputeClient{
		httpClient: httpClient,
		resolver:   r,
		logger:     logger,
	}
}

func (c *ComputeClient) url(session *openstack.Session, segments ...string) (string, error) {
	baseURL, _, err := c.resolver.endpoint(session, openstack.ServiceCompute)
	if err != nil {
		return "", err
	}

	return openstack.JoinPath(baseURL, segments...), nil
}

// toInstance maps a Nova server onto the domain model.
func (c *ComputeClient) toInstance(raw *rawServer) openstack.Instance {
	vmState := raw.VMState
	if vmState == "" {
		vmState = raw.Status
	}

	hostname := raw.Hostname
	if hostname == "" {
		hostname = raw.HypervisorHostname
	}

	instance := openstack.Instance{
		ID:                 raw.ID,
		Name:               raw.Name,
		Status:             raw.Status,
		FlavorID:           raw.Flavor.ID,
		FlavorName:         raw.Flavor.OriginalName,
		ImageID:            raw.Image.ID,
		IPAddresses:        joinAddresses(raw.Addresses),
		VMState:            vmState,
		TaskState:          raw.TaskState,
		PowerState:         raw.PowerState,
		LaunchedAt:         parseTime(raw.LaunchedAt),
		TerminatedAt:       parseTime(raw.TerminatedAt),
		Locked:             bool(raw.Locked),
		HostID:             raw.Host,
		Hostname:           hostname,
		ProjectID:          raw.TenantID,
		UserID:             raw.UserID,
		KeyName:            stringValue(raw.KeyName),
		Description:        stringValue(raw.Description),
		AttachedVolumeIDs:  make([]string, 0, len(raw.VolumesAttached)),
		SecurityGroupNames: make([]string, 0, len(raw.SecurityGroups)),
		AvailabilityZone:   raw.AvailabilityZone,
		CreatedAt:          parseTimeString(raw.Created),
	}

	for _, v := range raw.VolumesAttached {
		instance.AttachedVolumeIDs = append(instance.AttachedVolumeIDs, v.ID)
	}

	for _, sg := range raw.SecurityGroups {
		instance.SecurityGroupNames = append(instance.SecurityGroupNames, sg.Name)
	}

	instance.LifecycleState = openstack.NormalizeLifecycle(openstack.StatusSignals{
		InstanceID: raw.ID,
		Status:     raw.Status,
		VMState:    raw.VMState,
		TaskState:  stringValue(raw.TaskState),
		PowerState: raw.PowerState,
	}, c.logger)

	return instance
}

// joinAddresses flattens every network's addresses, networks in name order.
func joinAddresses(addresses map[string][]rawAddress) string {
	names := make([]string, 0, len(addresses))
	for name := range addresses {
		names = append(names, name)
	}

	sort.Strings(names)

	var addrs []string

	for _, name := range names {
		for _, a := range addresses[name] {
			addrs = append(addrs, a.Addr)
		}
	}

	return strings.Join(addrs, ", ")
}

// ListInstances implements openstack.ComputeClient.ListInstances.
func (c *ComputeClient) ListInstances(ctx context.Context, session *openstack.Session) ([]openstack.Instance, error) {
	endpoint, err := c.url(session, "servers", "detail")
	if err != nil {
		return nil, fmt.Errorf("listing instances: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, openstack.ServiceCompute, endpoint, session.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("listing instances: %w", err)
	}

	var body struct {
		Servers []rawServer `json:"servers"`
	}

	err = decode(resp, &body, "instances list")
	if err != nil {
		return nil, err
	}

	instances := make([]openstack.Instance, 0, len(body.Servers))
	for i := range body.Servers {
		instances = append(instances, c.toInstance(&body.Servers[i]))
	}

	return instances, nil
}

// GetInstance implements openstack.ComputeClient.GetInstance.
func (c *ComputeClient) GetInstance(ctx context.Context, session *openstack.Session, instanceID string) (*openstack.Instance, error) {
	err := openstack.RequireID("instance_id", instanceID)
	if err != nil {
		return nil, err
	}

	endpoint, err := c.url(session, "servers", instanceID)
	if err != nil {
		return nil, fmt.Errorf("getting instance: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, openstack.ServiceCompute, endpoint, session.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("getting instance: %w", err)
	}

	var body struct {
		Server rawServer `json:"server"`
	}

	err = decode(resp, &body, "instance")
	if err != nil {
		return nil, err
	}

	instance := c.toInstance(&body.Server)

	return &instance, nil
}

type launchNetwork struct {
	UUID string `json:"uuid"`
}

type launchSecurityGroup struct {
	Name string `json:"name"`
}

type launchServer struct {
	Name             string                `json:"name"`
	ImageRef         string                `json:"imageRef"`
	FlavorRef        string                `json:"flavorRef"`
	KeyName          string                `json:"key_name,omitempty"`
	SecurityGroups   []launchSecurityGroup `json:"security_groups,omitempty"`
	Networks         []launchNetwork       `json:"networks"`
	AvailabilityZone string                `json:"availability_zone,omitempty"`
	UserData         string                `json:"user_data,omitempty"`
}

// LaunchInstance implements openstack.ComputeClient.LaunchInstance.
func (c *ComputeClient) LaunchInstance(ctx context.Context, session *openstack.Session, request *openstack.LaunchInstanceRequest) (*openstack.Instance, error) {
	err := request.Validate()
	if err != nil {
		return nil, err
	}

	endpoint, err := c.url(session, "servers")
	if err != nil {
		return nil, fmt.Errorf("launching instance: %w", err)
	}

	server := launchServer{
		Name:             request.Name,
		ImageRef:         request.ImageID,
		FlavorRef:        request.FlavorID,
		KeyName:          request.KeyName,
		AvailabilityZone: request.AvailabilityZone,
		UserData:         request.UserData,
	}

	for _, name := range request.SecurityGroupNames {
		server.SecurityGroups = append(server.SecurityGroups, launchSecurityGroup{Name: name})
	}

	for _, id := range request.NetworkIDs {
		server.Networks = append(server.Networks, launchNetwork{UUID: id})
	}

	if len(server.Networks) == 0 {
		server.Networks = []launchNetwork{{UUID: constants.AutoNetworkAllocation}}
	}

	resp, err := c.httpClient.Post(ctx, openstack.ServiceCompute, endpoint, session.Token, map[string]any{"server": server})
	if err != nil {
		return nil, fmt.Errorf("launching instance: %w", err)
	}

	var body struct {
		Server rawServer `json:"server"`
	}

	err = decode(resp, &body, "launched instance")
	if err != nil {
		return nil, err
	}

	// the create response carries little more than the id; the server is
	// building until the scheduler says otherwise
	if body.Server.Status == "" {
		body.Server.Status = "BUILD"
	}

	if body.Server.Name == "" {
		body.Server.Name = request.Name
	}

	instance := c.toInstance(&body.Server)

	return &instance, nil
}

// TerminateInstance implements openstack.ComputeClient.TerminateInstance.
func (c *ComputeClient) TerminateInstance(ctx context.Context, session *openstack.Session, instanceID string) error {
	err := openstack.RequireID("instance_id", instanceID)
	if err != nil {
		return err
	}

	endpoint, err := c.url(session, "servers", instanceID)
	if err != nil {
		return fmt.Errorf("terminating instance: %w", err)
	}

	_, err = c.httpClient.Delete(ctx, openstack.ServiceCompute, endpoint, session.Token)
	if err != nil {
		return fmt.Errorf("terminating instance: %w", err)
	}

	return nil
}

func (c *ComputeClient) action(ctx context.Context, session *openstack.Session, instanceID string, payload map[string]any) (*http.Response, error) {
	err := openstack.RequireID("instance_id", instanceID)
	if err != nil {
		return nil, err
	}

	endpoint, err := c.url(session, "servers", instanceID, "action")
	if err != nil {
		return nil, err
	}

	return c.httpClient.Post(ctx, openstack.ServiceCompute, endpoint, session.Token, payload)
}

func (c *ComputeClient) simpleAction(ctx context.Context, session *openstack.Session, instanceID, action string) error {
	_, err := c.action(ctx, session, instanceID, map[string]any{action: nil})
	if err != nil {
		return fmt.Errorf("running %s on instance %s: %w", action, instanceID, err)
	}

	return nil
}

// StartInstance implements openstack.ComputeClient.StartInstance.
func (c *ComputeClient) StartInstance(ctx context.Context, session *openstack.Session, instanceID string) error {
	return c.simpleAction(ctx, session, instanceID, constants.ActionStart)
}

// StopInstance implements openstack.ComputeClient.StopInstance.
func (c *ComputeClient) StopInstance(ctx context.Context, session *openstack.Session, instanceID string) error {
	return c.simpleAction(ctx, session, instanceID, constants.ActionStop)
}

// ShelveInstance implements openstack.ComputeClient.ShelveInstance.
func (c *ComputeClient) ShelveInstance(ctx context.Context, session *openstack.Session, instanceID string) error {
	return c.simpleAction(ctx, session, instanceID, constants.ActionShelve)
}

// UnshelveInstance implements openstack.ComputeClient.UnshelveInstance.
func (c *ComputeClient) UnshelveInstance(ctx context.Context, session *openstack.Session, instanceID string) error {
	return c.simpleAction(ctx, session, instanceID, constants.ActionUnshelve)
}

// RebootInstance implements openstack.ComputeClient.RebootInstance.
func (c *ComputeClient) RebootInstance(ctx context.Context, session *openstack.Session, instanceID string, request *openstack.RebootRequest) error {
	if request == nil {
		request = &openstack.RebootRequest{}
	}

	err := request.Validate()
	if err != nil {
		return err
	}

	rebootType := strings.ToUpper(request.Type)
	if rebootType == "" {
		rebootType = openstack.RebootSoft
	}

	_, err = c.action(ctx, session, instanceID, map[string]any{
		constants.ActionReboot: map[string]string{"type": rebootType},
	})
	if err != nil {
		return fmt.Errorf("rebooting instance %s: %w", instanceID, err)
	}

	return nil
}

// SnapshotInstance implements openstack.ComputeClient.SnapshotInstance. It
// returns the new image id when the service reports one.
func (c *ComputeClient) SnapshotInstance(ctx context.Context, session *openstack.Session, instanceID string, request *openstack.SnapshotInstanceRequest) (string, error) {
	err := request.Validate()
	if err != nil {
		return "", err
	}

	resp, err := c.action(ctx, session, instanceID, map[string]any{
		constants.ActionCreateImage: map[string]any{
			"name": request.Name,
			"metadata": map[string]string{
				"image_type":    constants.SnapshotImageType,
				"instance_uuid": instanceID,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("snapshotting instance %s: %w", instanceID, err)
	}

	if !resp.NoContent {
		var body struct {
			ImageID string `json:"image_id"`
		}

		if json.Unmarshal(resp.Body, &body) == nil && body.ImageID != "" {
			return body.ImageID, nil
		}
	}

	if location := resp.Headers.Get("Location"); location != "" {
		return path.Base(location), nil
	}

	return "", nil
}

var consoleActions = map[string]string{
	openstack.ConsoleNoVNC:  constants.ActionVNCConsole,
	openstack.ConsoleSPICE:  constants.ActionSPICEConsole,
	openstack.ConsoleSerial: constants.ActionSerialConsole,
}

// GetConsoleURL implements openstack.ComputeClient.GetConsoleURL.
func (c *ComputeClient) GetConsoleURL(ctx context.Context, session *openstack.Session, instanceID string, request *openstack.ConsoleRequest) (*openstack.ConsoleURL, error) {
	err := request.Validate()
	if err != nil {
		return nil, err
	}

	resp, err := c.action(ctx, session, instanceID, map[string]any{
		consoleActions[request.Type]: map[string]string{"type": request.Type},
	})
	if err != nil {
		return nil, fmt.Errorf("getting console for instance %s: %w", instanceID, err)
	}

	var body struct {
		Console struct {
			Type     string `json:"type"`
			Protocol string `json:"protocol"`
			URL      string `json:"url"`
		} `json:"console"`
	}

	err = decode(resp, &body, "console")
	if err != nil {
		return nil, err
	}

	return &openstack.ConsoleURL{
		Type:     body.Console.Type,
		Protocol: body.Console.Protocol,
		URL:      body.Console.URL,
	}, nil
}

// AttachVolume implements openstack.ComputeClient.AttachVolume.
func (c *ComputeClient) AttachVolume(ctx context.Context, session *openstack.Session, request *openstack.AttachVolumeRequest) (*openstack.VolumeAttachment, error) {
	err := request.Validate()
	if err != nil {
		return nil, err
	}

	endpoint, err := c.url(session, "servers", request.InstanceID, "os-volume_attachments")
	if err != nil {
		return nil, fmt.Errorf("attaching volume: %w", err)
	}

	attachment := map[string]string{"volumeId": request.VolumeID}
	if request.Device != "" {
		attachment["device"] = request.Device
	}

	resp, err := c.httpClient.Post(ctx, openstack.ServiceCompute, endpoint, session.Token, map[string]any{"volumeAttachment": attachment})
	if err != nil {
		return nil, fmt.Errorf("attaching volume: %w", err)
	}

	result := &openstack.VolumeAttachment{ServerID: request.InstanceID, Device: request.Device}

	if resp.NoContent {
		return result, nil
	}

	var body struct {
		VolumeAttachment struct {
			ID       string `json:"id"`
			ServerID string `json:"serverId"`
			Device   string `json:"device"`
		} `json:"volumeAttachment"`
	}

	err = decode(resp, &body, "volume attachment")
	if err != nil {
		return nil, err
	}

	result.AttachmentID = body.VolumeAttachment.ID
	if body.VolumeAttachment.Device != "" {
		result.Device = body.VolumeAttachment.Device
	}

	return result, nil
}

// DetachVolume implements openstack.ComputeClient.DetachVolume. Nova keys
// attachments by volume id on this path.
func (c *ComputeClient) DetachVolume(ctx context.Context, session *openstack.Session, instanceID, volumeID string) error {
	err := openstack.RequireID("instance_id", instanceID)
	if err != nil {
		return err
	}

	err = openstack.RequireID("volume_id", volumeID)
	if err != nil {
		return err
	}

	endpoint, err := c.url(session, "servers", instanceID, "os-volume_attachments", volumeID)
	if err != nil {
		return fmt.Errorf("detaching volume: %w", err)
	}

	_, err = c.httpClient.Delete(ctx, openstack.ServiceCompute, endpoint, session.Token)
	if err != nil {
		return fmt.Errorf("detaching volume: %w", err)
	}

	return nil
}

// ListFlavors implements openstack.ComputeClient.ListFlavors.
func (c *ComputeClient) ListFlavors(ctx context.Context, session *openstack.Session) ([]openstack.Flavor, error) {
	endpoint, err := c.url(session, "flavors", "detail")
	if err != nil {
		return nil, fmt.Errorf("listing flavors: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, openstack.ServiceCompute, endpoint, session.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("listing flavors: %w", err)
	}

	var body struct {
		Flavors []rawFlavor `json:"flavors"`
	}

	err = decode(resp, &body, "flavors list")
	if err != nil {
		return nil, err
	}

	flavors := make([]openstack.Flavor, 0, len(body.Flavors))
	for _, raw := range body.Flavors {
		flavors = append(flavors, toFlavor(raw))
	}

	return flavors, nil
}

// toFlavor treats a flavor without an explicit visibility flag as public.
func toFlavor(raw rawFlavor) openstack.Flavor {
	isPublic := true
	if raw.IsPublic != nil {
		isPublic = *raw.IsPublic
	}

	return openstack.Flavor{
		ID:          raw.ID,
		Name:        raw.Name,
		VCPUs:       int(raw.VCPUs),
		RAMMB:       int(raw.RAM),
		DiskGB:      int(raw.Disk),
		EphemeralGB: int(raw.Ephemeral),
		SwapMB:      int(raw.Swap),
		IsPublic:    isPublic,
	}
}

// ListKeyPairs implements openstack.ComputeClient.ListKeyPairs.
func (c *ComputeClient) ListKeyPairs(ctx context.Context, session *openstack.Session) ([]openstack.KeyPair, error) {
	endpoint, err := c.url(session, "os-keypairs")
	if err != nil {
		return nil, fmt.Errorf("listing key pairs: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, openstack.ServiceCompute, endpoint, session.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("listing key pairs: %w", err)
	}

	var body struct {
		KeyPairs []struct {
			KeyPair rawKeyPair `json:"keypair"`
		} `json:"keypairs"`
	}

	err = decode(resp, &body, "key pairs list")
	if err != nil {
		return nil, err
	}

	keyPairs := make([]openstack.KeyPair, 0, len(body.KeyPairs))
	for _, item := range body.KeyPairs {
		id := string(item.KeyPair.ID)
		if id == "" {
			id = item.KeyPair.Name
		}

		keyPairs = append(keyPairs, openstack.KeyPair{
			ID:          id,
			Name:        item.KeyPair.Name,
			Fingerprint: item.KeyPair.Fingerprint,
			PublicKey:   item.KeyPair.PublicKey,
			Type:        item.KeyPair.Type,
		})
	}

	return keyPairs, nil
}

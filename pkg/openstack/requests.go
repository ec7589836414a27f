package openstack

import (
	"strings"
)

// Reboot types.
const (
	RebootSoft = "SOFT"
	RebootHard = "HARD"
)

// Console types.
const (
	ConsoleNoVNC  = "novnc"
	ConsoleSPICE  = "spice-html5"
	ConsoleSerial = "serial"
)

// LaunchInstanceRequest describes a new server. An empty NetworkIDs asks the
// compute service to pick a network automatically. UserData is sent as is
// and must already be base64 encoded.
type LaunchInstanceRequest struct {
	Name               string   `json:"name"                 yaml:"name"`
	ImageID            string   `json:"image_id"             yaml:"image_id"`
	FlavorID           string   `json:"flavor_id"            yaml:"flavor_id"`
	KeyName            string   `json:"key_name,omitempty"   yaml:"key_name,omitempty"`
	SecurityGroupNames []string `json:"security_group_names" yaml:"security_group_names"`
	NetworkIDs         []string `json:"network_ids"          yaml:"network_ids"`
	AvailabilityZone   string   `json:"availability_zone,omitempty" yaml:"availability_zone,omitempty"`
	UserData           string   `json:"user_data,omitempty"  yaml:"user_data,omitempty"`
}

// Validate checks the request before it is sent.
func (r *LaunchInstanceRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name", "is required")
	}

	if r.ImageID == "" {
		return invalid("image_id", "is required")
	}

	if r.FlavorID == "" {
		return invalid("flavor_id", "is required")
	}

	for _, id := range r.NetworkIDs {
		if id == "" {
			return invalid("network_ids", "must not contain empty ids")
		}
	}

	return nil
}

// RebootRequest selects a soft or hard reboot. An empty Type means soft.
type RebootRequest struct {
	Type string `json:"type" yaml:"type"`
}

// Validate checks the request before it is sent.
func (r *RebootRequest) Validate() error {
	switch strings.ToUpper(r.Type) {
	case "", RebootSoft, RebootHard:
		return nil
	default:
		return invalid("type", "must be SOFT or HARD")
	}
}

// SnapshotInstanceRequest names the image produced from a server.
type SnapshotInstanceRequest struct {
	Name string `json:"name" yaml:"name"`
}

// Validate checks the request before it is sent.
func (r *SnapshotInstanceRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name", "is required")
	}

	return nil
}

// ConsoleRequest selects the remote console protocol.
type ConsoleRequest struct {
	Type string `json:"type" yaml:"type"`
}

// Validate checks the request before it is sent.
func (r *ConsoleRequest) Validate() error {
	switch r.Type {
	case ConsoleNoVNC, ConsoleSPICE, ConsoleSerial:
		return nil
	default:
		return invalid("type", "must be one of novnc, spice-html5, serial")
	}
}

// CreateVolumeRequest describes a new volume.
type CreateVolumeRequest struct {
	Name             string `json:"name"                        yaml:"name"`
	SizeGB           int    `json:"size_gb"                     yaml:"size_gb"`
	VolumeType       string `json:"volume_type,omitempty"       yaml:"volume_type,omitempty"`
	AvailabilityZone string `json:"availability_zone,omitempty" yaml:"availability_zone,omitempty"`
	Description      string `json:"description,omitempty"       yaml:"description,omitempty"`
}

// Validate checks the request before it is sent.
func (r *CreateVolumeRequest) Validate() error {
	if r.SizeGB <= 0 {
		return invalid("size_gb", "must be positive")
	}

	return nil
}

// ExtendVolumeRequest grows a volume.
type ExtendVolumeRequest struct {
	NewSizeGB int `json:"new_size_gb" yaml:"new_size_gb"`
}

// Validate checks the request before it is sent.
func (r *ExtendVolumeRequest) Validate() error {
	if r.NewSizeGB <= 0 {
		return invalid("new_size_gb", "must be positive")
	}

	return nil
}

// CreateVolumeSnapshotRequest describes a volume snapshot. An empty
// Description is filled with a default naming the volume.
type CreateVolumeSnapshotRequest struct {
	VolumeID    string `json:"volume_id"   yaml:"volume_id"`
	Name        string `json:"name"        yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Force       bool   `json:"force"       yaml:"force"`
}

// Validate checks the request before it is sent.
func (r *CreateVolumeSnapshotRequest) Validate() error {
	if r.VolumeID == "" {
		return invalid("volume_id", "is required")
	}

	if strings.TrimSpace(r.Name) == "" {
		return invalid("name", "is required")
	}

	return nil
}

// AttachVolumeRequest attaches a volume to a server.
type AttachVolumeRequest struct {
	InstanceID string `json:"instance_id"      yaml:"instance_id"`
	VolumeID   string `json:"volume_id"        yaml:"volume_id"`
	Device     string `json:"device,omitempty" yaml:"device,omitempty"`
}

// Validate checks the request before it is sent.
func (r *AttachVolumeRequest) Validate() error {
	if r.InstanceID == "" {
		return invalid("instance_id", "is required")
	}

	if r.VolumeID == "" {
		return invalid("volume_id", "is required")
	}

	return nil
}

// AllocateFloatingIPRequest allocates an address from an external network.
type AllocateFloatingIPRequest struct {
	FloatingNetworkID string `json:"floating_network_id" yaml:"floating_network_id"`
	Description       string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Validate checks the request before it is sent.
func (r *AllocateFloatingIPRequest) Validate() error {
	if r.FloatingNetworkID == "" {
		return invalid("floating_network_id", "is required")
	}

	return nil
}

// CreateSecurityGroupRequest describes a new security group.
type CreateSecurityGroupRequest struct {
	Name        string `json:"name"        yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Validate checks the request before it is sent.
func (r *CreateSecurityGroupRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name", "is required")
	}

	return nil
}

// CreateSecurityGroupRuleRequest describes a new rule. A nil Protocol allows
// any protocol; RemoteIPPrefix and RemoteGroupID are mutually exclusive.
type CreateSecurityGroupRuleRequest struct {
	SecurityGroupID string  `json:"security_group_id" yaml:"security_group_id"`
	Direction       string  `json:"direction"         yaml:"direction"`
	Ethertype       string  `json:"ethertype"         yaml:"ethertype"`
	Protocol        *string `json:"protocol"          yaml:"protocol"`
	PortRangeMin    *int    `json:"port_range_min"    yaml:"port_range_min"`
	PortRangeMax    *int    `json:"port_range_max"    yaml:"port_range_max"`
	RemoteIPPrefix  *string `json:"remote_ip_prefix"  yaml:"remote_ip_prefix"`
	RemoteGroupID   *string `json:"remote_group_id"   yaml:"remote_group_id"`
	Description     string  `json:"description"       yaml:"description"`
}

// Validate checks the request before it is sent.
func (r *CreateSecurityGroupRuleRequest) Validate() error {
	if r.SecurityGroupID == "" {
		return invalid("security_group_id", "is required")
	}

	if r.Direction != DirectionIngress && r.Direction != DirectionEgress {
		return invalid("direction", "must be ingress or egress")
	}

	switch r.Ethertype {
	case "", "IPv4", "IPv6":
	default:
		return invalid("ethertype", "must be IPv4 or IPv6")
	}

	if r.RemoteIPPrefix != nil && r.RemoteGroupID != nil {
		return invalid("remote_ip_prefix", "cannot be combined with remote_group_id")
	}

	if r.PortRangeMin != nil && r.PortRangeMax != nil && *r.PortRangeMin > *r.PortRangeMax {
		return invalid("port_range_min", "must not exceed port_range_max")
	}

	for _, port := range []*int{r.PortRangeMin, r.PortRangeMax} {
		if port != nil && (*port < 0 || *port > 65535) {
			return invalid("port_range", "must be between 0 and 65535")
		}
	}

	return nil
}

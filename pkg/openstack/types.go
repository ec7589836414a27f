package openstack

import "time"

// LifecycleState is the simplified state of a compute instance.
type LifecycleState string

// Lifecycle states.
const (
	StateRunning          LifecycleState = "Running"
	StateShutoff          LifecycleState = "Shutoff"
	StatePaused           LifecycleState = "Paused"
	StateBuilding         LifecycleState = "Building"
	StateError            LifecycleState = "Error"
	StateShelved          LifecycleState = "Shelved"
	StateShelvedOffloaded LifecycleState = "Shelved_Offloaded"
)

// Session carries the caller's credentials for a single call. Nothing in it
// is cached by the gateway.
type Session struct {
	// Token is the bearer token sent as X-Auth-Token.
	Token string `json:"token" yaml:"token"`
	// Catalog is the service catalog issued alongside the token.
	Catalog ServiceCatalog `json:"catalog" yaml:"catalog"`
	// ProjectID scopes quota lookups.
	ProjectID string `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	// Interface overrides Config.Interface when set.
	Interface string `json:"interface,omitempty" yaml:"interface,omitempty"`
	// Region overrides Config.Region when set.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

// Instance is a compute server.
type Instance struct {
	ID                 string         `json:"id"                           yaml:"id"`
	Name               string         `json:"name"                         yaml:"name"`
	Status             string         `json:"status"                       yaml:"status"`
	FlavorID           string         `json:"flavor_id"                    yaml:"flavor_id"`
	FlavorName         string         `json:"flavor_name,omitempty"        yaml:"flavor_name,omitempty"`
	ImageID            string         `json:"image_id"                     yaml:"image_id"`
	ImageName          string         `json:"image_name,omitempty"         yaml:"image_name,omitempty"`
	IPAddresses        string         `json:"ip_addresses"                 yaml:"ip_addresses"`
	LifecycleState     LifecycleState `json:"lifecycle_state"              yaml:"lifecycle_state"`
	VMState            string         `json:"vm_state"                     yaml:"vm_state"`
	TaskState          *string        `json:"task_state"                   yaml:"task_state"`
	PowerState         *int           `json:"power_state"                  yaml:"power_state"`
	LaunchedAt         *time.Time     `json:"launched_at"                  yaml:"launched_at"`
	TerminatedAt       *time.Time     `json:"terminated_at"                yaml:"terminated_at"`
	Locked             bool           `json:"locked"                       yaml:"locked"`
	HostID             string         `json:"host_id,omitempty"            yaml:"host_id,omitempty"`
	Hostname           string         `json:"hostname,omitempty"           yaml:"hostname,omitempty"`
	ProjectID          string         `json:"project_id"                   yaml:"project_id"`
	UserID             string         `json:"user_id,omitempty"            yaml:"user_id,omitempty"`
	KeyName            string         `json:"key_name,omitempty"           yaml:"key_name,omitempty"`
	Description        string         `json:"description,omitempty"        yaml:"description,omitempty"`
	AttachedVolumeIDs  []string       `json:"attached_volume_ids"          yaml:"attached_volume_ids"`
	SecurityGroupNames []string       `json:"security_group_names"         yaml:"security_group_names"`
	AvailabilityZone   string         `json:"availability_zone,omitempty"  yaml:"availability_zone,omitempty"`
	CreatedAt          *time.Time     `json:"created_at,omitempty"         yaml:"created_at,omitempty"`
}

// VolumeAttachment describes where a volume is attached.
type VolumeAttachment struct {
	AttachmentID string `json:"attachment_id" yaml:"attachment_id"`
	ServerID     string `json:"server_id"     yaml:"server_id"`
	Device       string `json:"device"        yaml:"device"`
}

// Volume is a block storage volume.
type Volume struct {
	ID               string             `json:"id"                yaml:"id"`
	Name             string             `json:"name"              yaml:"name"`
	SizeGB           int                `json:"size_gb"           yaml:"size_gb"`
	Status           string             `json:"status"            yaml:"status"`
	Type             string             `json:"type"              yaml:"type"`
	Bootable         bool               `json:"bootable"          yaml:"bootable"`
	Attachments      []VolumeAttachment `json:"attachments"       yaml:"attachments"`
	AvailabilityZone string             `json:"availability_zone" yaml:"availability_zone"`
	CreatedAt        *time.Time         `json:"created_at"        yaml:"created_at"`
}

// VolumeSnapshot is the accepted snapshot returned by the block storage API.
type VolumeSnapshot struct {
	ID          string `json:"id"          yaml:"id"`
	Name        string `json:"name"        yaml:"name"`
	VolumeID    string `json:"volume_id"   yaml:"volume_id"`
	Status      string `json:"status"      yaml:"status"`
	SizeGB      int    `json:"size_gb"     yaml:"size_gb"`
	Description string `json:"description" yaml:"description"`
}

// AllocationPool is a subnet address range.
type AllocationPool struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end"   yaml:"end"`
}

// Subnet is an L3 address block attached to a network.
type Subnet struct {
	ID              string           `json:"id"               yaml:"id"`
	Name            string           `json:"name"             yaml:"name"`
	NetworkID       string           `json:"network_id"       yaml:"network_id"`
	CIDR            string           `json:"cidr"             yaml:"cidr"`
	GatewayIP       string           `json:"gateway_ip"       yaml:"gateway_ip"`
	IPVersion       int              `json:"ip_version"       yaml:"ip_version"`
	EnableDHCP      bool             `json:"enable_dhcp"      yaml:"enable_dhcp"`
	AllocationPools []AllocationPool `json:"allocation_pools" yaml:"allocation_pools"`
	DNSNameservers  []string         `json:"dns_nameservers"  yaml:"dns_nameservers"`
}

// ExternalGateway is a router's uplink to an external network.
type ExternalGateway struct {
	NetworkID        string    `json:"network_id"         yaml:"network_id"`
	EnableSNAT       *bool     `json:"enable_snat"        yaml:"enable_snat"`
	ExternalFixedIPs []FixedIP `json:"external_fixed_ips" yaml:"external_fixed_ips"`
}

// Router is a virtual router.
type Router struct {
	ID              string           `json:"id"               yaml:"id"`
	Name            string           `json:"name"             yaml:"name"`
	Status          string           `json:"status"           yaml:"status"`
	AdminStateUp    bool             `json:"admin_state_up"   yaml:"admin_state_up"`
	ExternalGateway *ExternalGateway `json:"external_gateway" yaml:"external_gateway"`
}

// RouterRef is the router summary attached to an enriched network.
type RouterRef struct {
	ID              string           `json:"id"               yaml:"id"`
	Name            string           `json:"name"             yaml:"name"`
	ExternalGateway *ExternalGateway `json:"external_gateway" yaml:"external_gateway"`
}

// Network is a virtual L2 network. Subnets and Routers are only populated by
// enrichment.
type Network struct {
	ID                      string      `json:"id"                         yaml:"id"`
	Name                    string      `json:"name"                       yaml:"name"`
	SubnetIDs               []string    `json:"subnet_ids"                 yaml:"subnet_ids"`
	IsShared                bool        `json:"is_shared"                  yaml:"is_shared"`
	IsExternal              bool        `json:"is_external"                yaml:"is_external"`
	AdminStateUp            bool        `json:"admin_state_up"             yaml:"admin_state_up"`
	Status                  string      `json:"status"                     yaml:"status"`
	ProjectID               string      `json:"project_id"                 yaml:"project_id"`
	MTU                     int         `json:"mtu,omitempty"              yaml:"mtu,omitempty"`
	ProviderNetworkType     string      `json:"provider_network_type,omitempty"     yaml:"provider_network_type,omitempty"`
	ProviderPhysicalNetwork string      `json:"provider_physical_network,omitempty" yaml:"provider_physical_network,omitempty"`
	Subnets                 []Subnet    `json:"subnets,omitempty"          yaml:"subnets,omitempty"`
	Routers                 []RouterRef `json:"routers,omitempty"          yaml:"routers,omitempty"`
}

// FixedIP is an address bound to a port.
type FixedIP struct {
	SubnetID  string `json:"subnet_id"  yaml:"subnet_id"`
	IPAddress string `json:"ip_address" yaml:"ip_address"`
}

// Port is a network attachment point.
type Port struct {
	ID          string    `json:"id"           yaml:"id"`
	Name        string    `json:"name"         yaml:"name"`
	NetworkID   string    `json:"network_id"   yaml:"network_id"`
	DeviceID    string    `json:"device_id"    yaml:"device_id"`
	DeviceOwner string    `json:"device_owner" yaml:"device_owner"`
	MACAddress  string    `json:"mac_address"  yaml:"mac_address"`
	Status      string    `json:"status"       yaml:"status"`
	FixedIPs    []FixedIP `json:"fixed_ips"    yaml:"fixed_ips"`
}

// FloatingIP is a public address that may be bound to a port.
type FloatingIP struct {
	ID               string  `json:"id"                 yaml:"id"`
	Address          string  `json:"address"            yaml:"address"`
	PoolNetworkID    string  `json:"pool_network_id"    yaml:"pool_network_id"`
	Status           string  `json:"status"             yaml:"status"`
	AssociatedPortID *string `json:"associated_port_id" yaml:"associated_port_id"`
	FixedIPAddress   *string `json:"fixed_ip_address"   yaml:"fixed_ip_address"`
}

// Rule directions.
const (
	DirectionIngress = "ingress"
	DirectionEgress  = "egress"
)

// SecurityGroupRule is one firewall rule. A nil Protocol means any protocol.
type SecurityGroupRule struct {
	ID              string  `json:"id"                yaml:"id"`
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

// SecurityGroup is a named set of rules.
type SecurityGroup struct {
	ID          string              `json:"id"          yaml:"id"`
	Name        string              `json:"name"        yaml:"name"`
	Description string              `json:"description" yaml:"description"`
	ProjectID   string              `json:"project_id"  yaml:"project_id"`
	Rules       []SecurityGroupRule `json:"rules"       yaml:"rules"`
}

// Flavor is an instance size.
type Flavor struct {
	ID          string `json:"id"           yaml:"id"`
	Name        string `json:"name"         yaml:"name"`
	VCPUs       int    `json:"vcpus"        yaml:"vcpus"`
	RAMMB       int    `json:"ram_mb"       yaml:"ram_mb"`
	DiskGB      int    `json:"disk_gb"      yaml:"disk_gb"`
	EphemeralGB int    `json:"ephemeral_gb" yaml:"ephemeral_gb"`
	SwapMB      int    `json:"swap_mb"      yaml:"swap_mb"`
	IsPublic    bool   `json:"is_public"    yaml:"is_public"`
}

// KeyPair is an SSH key registered with the compute service. ID is the
// name when the service does not report one.
type KeyPair struct {
	ID          string `json:"id"          yaml:"id"`
	Name        string `json:"name"        yaml:"name"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	PublicKey   string `json:"public_key"  yaml:"public_key"`
	Type        string `json:"type"        yaml:"type"`
}

// Image is a bootable image.
type Image struct {
	ID              string     `json:"id"               yaml:"id"`
	Name            string     `json:"name"             yaml:"name"`
	Status          string     `json:"status"           yaml:"status"`
	Visibility      string     `json:"visibility"       yaml:"visibility"`
	SizeBytes       int64      `json:"size_bytes"       yaml:"size_bytes"`
	MinDiskGB       int        `json:"min_disk_gb"      yaml:"min_disk_gb"`
	MinRAMMB        int        `json:"min_ram_mb"       yaml:"min_ram_mb"`
	DiskFormat      string     `json:"disk_format"      yaml:"disk_format"`
	ContainerFormat string     `json:"container_format" yaml:"container_format"`
	OSDistro        string     `json:"os_distro"        yaml:"os_distro"`
	Owner           string     `json:"owner"            yaml:"owner"`
	CreatedAt       *time.Time `json:"created_at"       yaml:"created_at"`
}

// ConsoleURL is a remote console endpoint for an instance.
type ConsoleURL struct {
	Type     string `json:"type"     yaml:"type"`
	Protocol string `json:"protocol" yaml:"protocol"`
	URL      string `json:"url"      yaml:"url"`
}

// Quota sentinels.
const (
	QuotaUnlimited = -1
	QuotaUnknown   = -1
)

// QuotaLine is one row of the unified quota report. Limit is QuotaUnlimited
// when the service reports no cap, Used is QuotaUnknown until filled.
type QuotaLine struct {
	Resource string `json:"resource" yaml:"resource"`
	Used     int    `json:"used"     yaml:"used"`
	Limit    int    `json:"limit"    yaml:"limit"`
}

// ServiceQuotas is the raw limit set reported by one service, keyed by the
// service's own resource names.
type ServiceQuotas map[string]int

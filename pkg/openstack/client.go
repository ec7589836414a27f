package openstack

import (
	"context"
	"net/http"
	"time"
)

// ComputeClient is the compute (Nova) adapter.
type ComputeClient interface {
	ListInstances(ctx context.Context, session *Session) ([]Instance, error)
	GetInstance(ctx context.Context, session *Session, instanceID string) (*Instance, error)
	LaunchInstance(ctx context.Context, session *Session, request *LaunchInstanceRequest) (*Instance, error)
	TerminateInstance(ctx context.Context, session *Session, instanceID string) error
	StartInstance(ctx context.Context, session *Session, instanceID string) error
	StopInstance(ctx context.Context, session *Session, instanceID string) error
	RebootInstance(ctx context.Context, session *Session, instanceID string, request *RebootRequest) error
	ShelveInstance(ctx context.Context, session *Session, instanceID string) error
	UnshelveInstance(ctx context.Context, session *Session, instanceID string) error
	SnapshotInstance(ctx context.Context, session *Session, instanceID string, request *SnapshotInstanceRequest) (string, error)
	GetConsoleURL(ctx context.Context, session *Session, instanceID string, request *ConsoleRequest) (*ConsoleURL, error)
	AttachVolume(ctx context.Context, session *Session, request *AttachVolumeRequest) (*VolumeAttachment, error)
	DetachVolume(ctx context.Context, session *Session, instanceID, volumeID string) error
	ListFlavors(ctx context.Context, session *Session) ([]Flavor, error)
	ListKeyPairs(ctx context.Context, session *Session) ([]KeyPair, error)
}

// VolumesClient is the block storage (Cinder) adapter.
type VolumesClient interface {
	List(ctx context.Context, session *Session) ([]Volume, error)
	Create(ctx context.Context, session *Session, request *CreateVolumeRequest) (*Volume, error)
	Delete(ctx context.Context, session *Session, volumeID string) error
	Extend(ctx context.Context, session *Session, volumeID string, request *ExtendVolumeRequest) error
	CreateSnapshot(ctx context.Context, session *Session, request *CreateVolumeSnapshotRequest) (*VolumeSnapshot, error)
}

// PortFilter narrows a port listing. Empty fields are not sent.
type PortFilter struct {
	NetworkID   string
	DeviceID    string
	DeviceOwner string
}

// NetworksClient is the networking (Neutron) adapter.
type NetworksClient interface {
	ListNetworks(ctx context.Context, session *Session) ([]Network, error)
	ListSubnets(ctx context.Context, session *Session, networkID string) ([]Subnet, error)
	ListRouters(ctx context.Context, session *Session) ([]Router, error)
	ListPorts(ctx context.Context, session *Session, filter *PortFilter) ([]Port, error)
}

// FloatingIPsClient manages floating IPs.
type FloatingIPsClient interface {
	List(ctx context.Context, session *Session) ([]FloatingIP, error)
	Allocate(ctx context.Context, session *Session, request *AllocateFloatingIPRequest) (*FloatingIP, error)
	Associate(ctx context.Context, session *Session, floatingIPID, portID string) (*FloatingIP, error)
	AssociateInstance(ctx context.Context, session *Session, floatingIPID, instanceID string) (*FloatingIP, error)
	Disassociate(ctx context.Context, session *Session, floatingIPID string) (*FloatingIP, error)
	Release(ctx context.Context, session *Session, floatingIPID string) error
}

// ImagesClient is the image (Glance) adapter.
type ImagesClient interface {
	List(ctx context.Context, session *Session) ([]Image, error)
}

// SecurityGroupsClient manages security groups and their rules.
type SecurityGroupsClient interface {
	List(ctx context.Context, session *Session) ([]SecurityGroup, error)
	Create(ctx context.Context, session *Session, request *CreateSecurityGroupRequest) (*SecurityGroup, error)
	Delete(ctx context.Context, session *Session, securityGroupID string) error
	AddRule(ctx context.Context, session *Session, request *CreateSecurityGroupRuleRequest) (*SecurityGroupRule, error)
	DeleteRule(ctx context.Context, session *Session, ruleID string) error
}

// QuotasClient reads per-service limits for a project.
type QuotasClient interface {
	Compute(ctx context.Context, session *Session, projectID string) (ServiceQuotas, error)
	Volume(ctx context.Context, session *Session, projectID string) (ServiceQuotas, error)
	Network(ctx context.Context, session *Session, projectID string) (ServiceQuotas, error)
}

// Client is the gateway: one adapter per upstream service.
type Client interface {
	Compute() ComputeClient
	Volumes() VolumesClient
	Networks() NetworksClient
	FloatingIPs() FloatingIPsClient
	Images() ImagesClient
	SecurityGroups() SecurityGroupsClient
	Quotas() QuotasClient

	// Logger returns the configured logger, never nil.
	Logger() Logger
	// EnrichmentPolicy returns the default policy for network enrichment.
	EnrichmentPolicy() EnrichmentPolicy
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}

// EnrichmentPolicy decides what happens when a secondary lookup fails while
// annotating networks.
type EnrichmentPolicy string

const (
	// EnrichBestEffort logs the failure and leaves the annotation empty.
	EnrichBestEffort EnrichmentPolicy = "best-effort"
	// EnrichStrict fails the whole enrichment.
	EnrichStrict EnrichmentPolicy = "strict"
)

// Config represents client configuration for building a Client.
//
// The token and service catalog are not part of the configuration: they
// travel with every call in a Session, so one Client can serve many users.
//
// # Timeouts
//
// HTTPTimeout bounds a single round trip. Leave it zero to rely only on the
// context passed to each call. Calls are never retried; a mutating call that
// times out may or may not have been accepted upstream.
type Config struct {
	// Interface: catalog interface to resolve (public, internal, admin).
	// Defaults to public.
	Interface string
	// Region: preferred catalog region. Empty means the first endpoint of
	// the interface.
	Region string
	// HTTPTimeout: optional per-request timeout.
	HTTPTimeout time.Duration
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Debug: logs every request and response at debug level.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and the
	// orchestration helpers.
	Logger Logger
	// EnrichmentPolicy: default policy for EnrichNetworks. Defaults to
	// EnrichBestEffort.
	EnrichmentPolicy EnrichmentPolicy
	// Interceptors: optional hooks run around every request.
	Interceptors *InterceptorChain
	// HTTPClient: optional transport override, mostly for tests.
	HTTPClient *http.Client
}

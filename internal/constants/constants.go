package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ConsoleHTTPTimeout bounds console URL requests, which return quickly
	// or not at all.
	ConsoleHTTPTimeout = 10 * time.Second
)

// MinimumArgumentCount is the minimum number of command line arguments.
const MinimumArgumentCount = 2

// DefaultUserAgent is sent when the caller does not set one.
const DefaultUserAgent = "nimbus-gateway/1.0"

// Concurrency limits.
const (
	// EnrichmentConcurrency bounds parallel per-network and per-router lookups.
	EnrichmentConcurrency = 4
)

// Neutron port owners.
const (
	// DeviceOwnerRouterInterface marks a router's port on a tenant network.
	DeviceOwnerRouterInterface = "network:router_interface"

	// DeviceOwnerComputePrefix prefixes ports owned by instances, e.g. "compute:nova".
	DeviceOwnerComputePrefix = "compute:"
)

// Compute server actions.
const (
	ActionStart           = "os-start"
	ActionStop            = "os-stop"
	ActionReboot          = "reboot"
	ActionShelve          = "shelve"
	ActionUnshelve        = "unshelve"
	ActionCreateImage     = "createImage"
	ActionVNCConsole      = "os-getVNCConsole"
	ActionSPICEConsole    = "os-getSPICEConsole"
	ActionSerialConsole   = "os-getSerialConsole"
	ActionExtendVolume    = "os-extend"
	SnapshotImageType     = "snapshot"
	AutoNetworkAllocation = "auto"
)

// Output formatting.
const (
	// JSONIndentSize is the indentation used for YAML output.
	JSONIndentSize = 2

	// BooleanTrue is the string form of true accepted by config commands.
	BooleanTrue = "true"
)

// NATS defaults.
const (
	// NATSReconnectWait is the delay between reconnect attempts.
	NATSReconnectWait = 2 * time.Second

	// NATSFlushTimeout bounds the flush after publishing an event.
	NATSFlushTimeout = 2 * time.Second

	// ActionSubjectPrefix prefixes published action events.
	ActionSubjectPrefix = "nimbus.actions"
)

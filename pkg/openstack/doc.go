// Package openstack provides types, interfaces, and helpers for talking to
// an OpenStack-style cloud through its service catalog.
//
// # Overview
//
// The package defines the domain types (Instance, Volume, Network,
// FloatingIP, SecurityGroup, Flavor, Image, QuotaLine) and the interfaces of
// the per-service adapters (ComputeClient, VolumesClient, NetworksClient,
// FloatingIPsClient, ImagesClient, SecurityGroupsClient, QuotasClient). A
// concrete implementation is provided by the osclient package.
//
// Every call takes a Session carrying the token and service catalog. The
// base URL of each service is resolved from the catalog on every call:
//
//	url, ok := session.Catalog.Resolve(openstack.ServiceCompute, openstack.InterfacePublic, "RegionOne")
//
// # Lifecycle states
//
// Upstream servers report status, vm_state, task_state and power_state.
// NormalizeLifecycle folds them into one LifecycleState.
//
// # Errors
//
// Upstream failures are *GatewayError; a 401 is an *AuthError wrapping one.
// Requests are validated before sending and rejected with *ValidationError.
// A service missing from the catalog is reported as ErrEndpointNotFound.
// Helpers such as IsNotFound, IsUnauthorized and IsEndpointNotFound make it
// easy to branch on common cases.
//
// # Orchestration
//
// AggregateQuotas, FetchOverview, AssembleInstanceDetail, FetchLaunchOptions
// and EnrichNetworks combine several adapter calls. They differ in how a
// failed branch is treated; see each function.
//
// # Interceptors
//
// An InterceptorChain in Config runs hooks around every request. Logging,
// header, in-memory metrics and Prometheus interceptors are provided.
package openstack

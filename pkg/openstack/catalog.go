package openstack

import "strings"

// Service types as registered in the catalog.
const (
	ServiceCompute  = "compute"
	ServiceNetwork  = "network"
	ServiceImage    = "image"
	ServiceVolume   = "volume"
	ServiceVolumeV2 = "volumev2"
	ServiceVolumeV3 = "volumev3"
)

// Endpoint interfaces.
const (
	InterfacePublic   = "public"
	InterfaceInternal = "internal"
	InterfaceAdmin    = "admin"
)

// VolumeServiceTypes lists block storage aliases, newest first.
var VolumeServiceTypes = []string{ServiceVolumeV3, ServiceVolumeV2, ServiceVolume}

// Endpoint is one URL of a catalog entry.
type Endpoint struct {
	ID        string `json:"id,omitempty"        yaml:"id,omitempty"`
	Interface string `json:"interface"           yaml:"interface"`
	Region    string `json:"region"              yaml:"region"`
	RegionID  string `json:"region_id,omitempty" yaml:"region_id,omitempty"`
	URL       string `json:"url"                 yaml:"url"`
}

// ServiceCatalogEntry is one service of the catalog.
type ServiceCatalogEntry struct {
	ID        string     `json:"id,omitempty"   yaml:"id,omitempty"`
	Type      string     `json:"type"           yaml:"type"`
	Name      string     `json:"name"           yaml:"name"`
	Endpoints []Endpoint `json:"endpoints"      yaml:"endpoints"`
}

// ServiceCatalog is the list of services issued with a token.
type ServiceCatalog []ServiceCatalogEntry

// Resolve returns the base URL for serviceType. An endpoint matching both
// iface and region wins; with a region given and no such endpoint, any
// endpoint of iface is used. Trailing slashes are stripped. The boolean is
// false when nothing matches.
func (c ServiceCatalog) Resolve(serviceType, iface, region string) (string, bool) {
	if iface == "" {
		iface = InterfacePublic
	}

	entry, ok := c.find(serviceType)
	if !ok {
		return "", false
	}

	for _, ep := range entry.Endpoints {
		if ep.Interface == iface && (region == "" || ep.Region == region || ep.RegionID == region) {
			return trimTrailingSlashes(ep.URL), true
		}
	}

	if region != "" {
		for _, ep := range entry.Endpoints {
			if ep.Interface == iface {
				return trimTrailingSlashes(ep.URL), true
			}
		}
	}

	return "", false
}

// ResolveAny tries each service type in order and reports which one matched.
func (c ServiceCatalog) ResolveAny(serviceTypes []string, iface, region string) (string, string, bool) {
	for _, serviceType := range serviceTypes {
		if url, ok := c.Resolve(serviceType, iface, region); ok {
			return url, serviceType, true
		}
	}

	return "", "", false
}

// RequireEndpoint is Resolve with absence reported as ErrEndpointNotFound.
func (c ServiceCatalog) RequireEndpoint(serviceType, iface, region string) (string, error) {
	url, ok := c.Resolve(serviceType, iface, region)
	if !ok {
		return "", EndpointNotFound(serviceType)
	}

	return url, nil
}

// Has reports whether the catalog lists serviceType at all.
func (c ServiceCatalog) Has(serviceType string) bool {
	_, ok := c.find(serviceType)

	return ok
}

func (c ServiceCatalog) find(serviceType string) (ServiceCatalogEntry, bool) {
	for _, entry := range c {
		if entry.Type == serviceType {
			return entry, true
		}
	}

	return ServiceCatalogEntry{}, false
}

func trimTrailingSlashes(s string) string {
	return strings.TrimRight(s, "/")
}

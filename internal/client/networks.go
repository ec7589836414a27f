package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kaigouthro/nimbus/internal/http"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

type rawNetwork struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Subnets                 []string `json:"subnets"`
	Shared                  bool     `json:"shared"`
	External                bool     `json:"router:external"`
	AdminStateUp            bool     `json:"admin_state_up"`
	Status                  string   `json:"status"`
	ProjectID               string   `json:"project_id"`
	TenantID                string   `json:"tenant_id"`
	MTU                     int      `json:"mtu"`
	ProviderNetworkType     string   `json:"provider:network_type"`
	ProviderPhysicalNetwork string   `json:"provider:physical_network"`
}

type rawSubnet struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	NetworkID       string                     `json:"network_id"`
	CIDR            string                     `json:"cidr"`
	GatewayIP       *string                    `json:"gateway_ip"`
	IPVersion       int                        `json:"ip_version"`
	EnableDHCP      bool                       `json:"enable_dhcp"`
	AllocationPools []openstack.AllocationPool `json:"allocation_pools"`
	DNSNameservers  []string                   `json:"dns_nameservers"`
}

type rawFixedIP struct {
	SubnetID  string `json:"subnet_id"`
	IPAddress string `json:"ip_address"`
}

type rawGatewayInfo struct {
	NetworkID        string       `json:"network_id"`
	EnableSNAT       *bool        `json:"enable_snat"`
	ExternalFixedIPs []rawFixedIP `json:"external_fixed_ips"`
}

type rawRouter struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Status              string          `json:"status"`
	AdminStateUp        bool            `json:"admin_state_up"`
	ExternalGatewayInfo *rawGatewayInfo `json:"external_gateway_info"`
}

type rawPort struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	NetworkID   string       `json:"network_id"`
	DeviceID    string       `json:"device_id"`
	DeviceOwner string       `json:"device_owner"`
	MACAddress  string       `json:"mac_address"`
	Status      string       `json:"status"`
	FixedIPs    []rawFixedIP `json:"fixed_ips"`
}

// NetworksClient implements openstack.NetworksClient.
type NetworksClient struct {
	httpClient *http.Client
	resolver   resolver
}

// NewNetworksClient creates a new networking client.
func NewNetworksClient(httpClient *http.Client, r resolver) *NetworksClient {
	return &NetworksClient{
		httpClient: httpClient,
		resolver:   r,
	}
}

// networkURL builds a Neutron URL, inserting v2.0 when the catalog omits it.
func networkURL(r resolver, session *openstack.Session, resource string) (string, error) {
	baseURL, _, err := r.endpoint(session, openstack.ServiceNetwork)
	if err != nil {
		return "", err
	}

	return openstack.BuildPath(baseURL, openstack.NetworkAPIVersion, resource), nil
}

func toNetwork(raw *rawNetwork) openstack.Network {
	projectID := raw.ProjectID
	if projectID == "" {
		projectID = raw.TenantID
	}

	subnetIDs := raw.Subnets
	if subnetIDs == nil {
		subnetIDs = []string{}
	}

	return openstack.Network{
		ID:                      raw.ID,
		Name:                    raw.Name,
		SubnetIDs:               subnetIDs,
		IsShared:                raw.Shared,
		IsExternal:              raw.External,
		AdminStateUp:            raw.AdminStateUp,
		Status:                  raw.Status,
		ProjectID:               projectID,
		MTU:                     raw.MTU,
		ProviderNetworkType:     raw.ProviderNetworkType,
		ProviderPhysicalNetwork: raw.ProviderPhysicalNetwork,
	}
}

func toFixedIPs(raw []rawFixedIP) []openstack.FixedIP {
	fixedIPs := make([]openstack.FixedIP, 0, len(raw))
	for _, ip := range raw {
		fixedIPs = append(fixedIPs, openstack.FixedIP{SubnetID: ip.SubnetID, IPAddress: ip.IPAddress})
	}

	return fixedIPs
}

func toRouter(raw *rawRouter) openstack.Router {
	router := openstack.Router{
		ID:           raw.ID,
		Name:         raw.Name,
		Status:       raw.Status,
		AdminStateUp: raw.AdminStateUp,
	}

	if raw.ExternalGatewayInfo != nil {
		router.ExternalGateway = &openstack.ExternalGateway{
			NetworkID:        raw.ExternalGatewayInfo.NetworkID,
			EnableSNAT:       raw.ExternalGatewayInfo.EnableSNAT,
			ExternalFixedIPs: toFixedIPs(raw.ExternalGatewayInfo.ExternalFixedIPs),
		}
	}

	return router
}

// ListNetworks implements openstack.NetworksClient.ListNetworks.
func (c *NetworksClient) ListNetworks(ctx context.Context, session *openstack.Session) ([]openstack.Network, error) {
	endpoint, err := networkURL(c.resolver, session, "networks")
	if err != nil {
		return nil, fmt.Errorf("listing networks: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, openstack.ServiceNetwork, endpoint, session.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("listing networks: %w", err)
	}

	var body struct {
		Networks []rawNetwork `json:"networks"`
	}

	err = decode(resp, &body, "networks list")
	if err != nil {
		return nil, err
	}

	networks := make([]openstack.Network, 0, len(body.Networks))
	for i := range body.Networks {
		networks = append(networks, toNetwork(&body.Networks[i]))
	}

	return networks, nil
}

// ListSubnets implements openstack.NetworksClient.ListSubnets. An empty
// networkID lists every visible subnet.
func (c *NetworksClient) ListSubnets(ctx context.Context, session *openstack.Session, networkID string) ([]openstack.Subnet, error) {
	endpoint, err := networkURL(c.resolver, session, "subnets")
	if err != nil {
		return nil, fmt.Errorf("listing subnets: %w", err)
	}

	var query url.Values
	if networkID != "" {
		query = url.Values{"network_id": []string{networkID}}
	}

	resp, err := c.httpClient.Get(ctx, openstack.ServiceNetwork, endpoint, session.Token, query)
	if err != nil {
		return nil, fmt.Errorf("listing subnets: %w", err)
	}

	var body struct {
		Subnets []rawSubnet `json:"subnets"`
	}

	err = decode(resp, &body, "subnets list")
	if err != nil {
		return nil, err
	}

	subnets := make([]openstack.Subnet, 0, len(body.Subnets))
	for _, raw := range body.Subnets {
		subnets = append(subnets, openstack.Subnet{
			ID:              raw.ID,
			Name:            raw.Name,
			NetworkID:       raw.NetworkID,
			CIDR:            raw.CIDR,
			GatewayIP:       stringValue(raw.GatewayIP),
			IPVersion:       raw.IPVersion,
			EnableDHCP:      raw.EnableDHCP,
			AllocationPools: raw.AllocationPools,
			DNSNameservers:  raw.DNSNameservers,
		})
	}

	return subnets, nil
}

// ListRouters implements openstack.NetworksClient.ListRouters.
func (c *NetworksClient) ListRouters(ctx context.Context, session *openstack.Session) ([]openstack.Router, error) {
	endpoint, err := networkURL(c.resolver, session, "routers")
	if err != nil {
		return nil, fmt.Errorf("listing routers: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, openstack.ServiceNetwork, endpoint, session.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("listing routers: %w", err)
	}

	var body struct {
		Routers []rawRouter `json:"routers"`
	}

	err = decode(resp, &body, "routers list")
	if err != nil {
		return nil, err
	}

	routers := make([]openstack.Router, 0, len(body.Routers))
	for i := range body.Routers {
		routers = append(routers, toRouter(&body.Routers[i]))
	}

	return routers, nil
}

// ListPorts implements openstack.NetworksClient.ListPorts.
func (c *NetworksClient) ListPorts(ctx context.Context, session *openstack.Session, filter *openstack.PortFilter) ([]openstack.Port, error) {
	endpoint, err := networkURL(c.resolver, session, "ports")
	if err != nil {
		return nil, fmt.Errorf("listing ports: %w", err)
	}

	query := url.Values{}

	if filter != nil {
		if filter.NetworkID != "" {
			query.Set("network_id", filter.NetworkID)
		}

		if filter.DeviceID != "" {
			query.Set("device_id", filter.DeviceID)
		}

		if filter.DeviceOwner != "" {
			query.Set("device_owner", filter.DeviceOwner)
		}
	}

	resp, err := c.httpClient.Get(ctx, openstack.ServiceNetwork, endpoint, session.Token, query)
	if err != nil {
		return nil, fmt.Errorf("listing ports: %w", err)
	}

	var body struct {
		Ports []rawPort `json:"ports"`
	}

	err = decode(resp, &body, "ports list")
	if err != nil {
		return nil, err
	}

	ports := make([]openstack.Port, 0, len(body.Ports))
	for _, raw := range body.Ports {
		ports = append(ports, openstack.Port{
			ID:          raw.ID,
			Name:        raw.Name,
			NetworkID:   raw.NetworkID,
			DeviceID:    raw.DeviceID,
			DeviceOwner: raw.DeviceOwner,
			MACAddress:  raw.MACAddress,
			Status:      raw.Status,
			FixedIPs:    toFixedIPs(raw.FixedIPs),
		})
	}

	return ports, nil
}

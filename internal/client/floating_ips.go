package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/kaigouthro/nimbus/internal/http"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

type rawFloatingIP struct {
	ID                string  `json:"id"`
	FloatingIPAddress string  `json:"floating_ip_address"`
	FloatingNetworkID string  `json:"floating_network_id"`
	Status            string  `json:"status"`
	PortID            *string `json:"port_id"`
	FixedIPAddress    *string `json:"fixed_ip_address"`
}

func toFloatingIP(raw *rawFloatingIP) openstack.FloatingIP {
	return openstack.FloatingIP{
		ID:               raw.ID,
		Address:          raw.FloatingIPAddress,
		PoolNetworkID:    raw.FloatingNetworkID,
		Status:           raw.Status,
		AssociatedPortID: raw.PortID,
		FixedIPAddress:   raw.FixedIPAddress,
	}
}

// FloatingIPsClient implements openstack.FloatingIPsClient.
type FloatingIPsClient struct {
	httpClient *http.Client
	resolver   resolver
	ports      openstack.NetworksClient
}

// NewFloatingIPsClient creates a new floating IP client. ports is used to
// find an instance's port when associating by instance.
func NewFloatingIPsClient(httpClient *http.Client, r resolver, ports openstack.NetworksClient) *FloatingIPsClient {
	return &FloatingIPsClient{
		httpClient: httpClient,
		resolver:   r,
		ports:      ports,
	}
}

// List implements openstack.FloatingIPsClient.List.
func (c *FloatingIPsClient) List(ctx context.Context, session *openstack.Session) ([]openstack.FloatingIP, error) {
	endpoint, err := networkURL(c.resolver, session, "floatingips")
	if err != nil {
		return nil, fmt.Errorf("listing floating IPs: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, openstack.ServiceNetwork, endpoint, session.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("listing floating IPs: %w", err)
	}

	var body struct {
		FloatingIPs []rawFloatingIP `json:"floatingips"`
	}

	err = decode(resp, &body, "floating IPs list")
	if err != nil {
		return nil, err
	}

	floatingIPs := make([]openstack.FloatingIP, 0, len(body.FloatingIPs))
	for i := range body.FloatingIPs {
		floatingIPs = append(floatingIPs, toFloatingIP(&body.FloatingIPs[i]))
	}

	return floatingIPs, nil
}

// Allocate implements openstack.FloatingIPsClient.Allocate.
func (c *FloatingIPsClient) Allocate(ctx context.Context, session *openstack.Session, request *openstack.AllocateFloatingIPRequest) (*openstack.FloatingIP, error) {
	err := request.Validate()
	if err != nil {
		return nil, err
	}

	endpoint, err := networkURL(c.resolver, session, "floatingips")
	if err != nil {
		return nil, fmt.Errorf("allocating floating IP: %w", err)
	}

	floatingIP := map[string]string{"floating_network_id": request.FloatingNetworkID}
	if request.Description != "" {
		floatingIP["description"] = request.Description
	}

	resp, err := c.httpClient.Post(ctx, openstack.ServiceNetwork, endpoint, session.Token, map[string]any{"floatingip": floatingIP})
	if err != nil {
		return nil, fmt.Errorf("allocating floating IP: %w", err)
	}

	return c.parse(resp, "allocated floating IP")
}

// Associate implements openstack.FloatingIPsClient.Associate.
func (c *FloatingIPsClient) Associate(ctx context.Context, session *openstack.Session, floatingIPID, portID string) (*openstack.FloatingIP, error) {
	err := openstack.RequireID("port_id", portID)
	if err != nil {
		return nil, err
	}

	return c.update(ctx, session, floatingIPID, &portID, "associating floating IP")
}

// AssociateInstance implements openstack.FloatingIPsClient.AssociateInstance.
// The instance's first compute port receives the address.
func (c *FloatingIPsClient) AssociateInstance(ctx context.Context, session *openstack.Session, floatingIPID, instanceID string) (*openstack.FloatingIP, error) {
	err := openstack.RequireID("floating_ip_id", floatingIPID)
	if err != nil {
		return nil, err
	}

	err = openstack.RequireID("instance_id", instanceID)
	if err != nil {
		return nil, err
	}

	ports, err := c.ports.ListPorts(ctx, session, &openstack.PortFilter{DeviceID: instanceID})
	if err != nil {
		return nil, fmt.Errorf("finding port of instance %s: %w", instanceID, err)
	}

	for _, port := range ports {
		if strings.HasPrefix(port.DeviceOwner, constants.DeviceOwnerComputePrefix) {
			return c.Associate(ctx, session, floatingIPID, port.ID)
		}
	}

	return nil, fmt.Errorf("%w: %s", openstack.ErrNoInstancePort, instanceID)
}

// Disassociate implements openstack.FloatingIPsClient.Disassociate.
func (c *FloatingIPsClient) Disassociate(ctx context.Context, session *openstack.Session, floatingIPID string) (*openstack.FloatingIP, error) {
	return c.update(ctx, session, floatingIPID, nil, "disassociating floating IP")
}

func (c *FloatingIPsClient) update(ctx context.Context, session *openstack.Session, floatingIPID string, portID *string, what string) (*openstack.FloatingIP, error) {
	err := openstack.RequireID("floating_ip_id", floatingIPID)
	if err != nil {
		return nil, err
	}

	endpoint, err := networkURL(c.resolver, session, "floatingips/"+floatingIPID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	// a nil port id serializes as null, which detaches the address
	payload := map[string]any{"floatingip": map[string]*string{"port_id": portID}}

	resp, err := c.httpClient.Put(ctx, openstack.ServiceNetwork, endpoint, session.Token, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	return c.parse(resp, "updated floating IP")
}

func (c *FloatingIPsClient) parse(resp *http.Response, what string) (*openstack.FloatingIP, error) {
	var body struct {
		FloatingIP rawFloatingIP `json:"floatingip"`
	}

	err := decode(resp, &body, what)
	if err != nil {
		return nil, err
	}

	floatingIP := toFloatingIP(&body.FloatingIP)

	return &floatingIP, nil
}

// Release implements openstack.FloatingIPsClient.Release.
func (c *FloatingIPsClient) Release(ctx context.Context, session *openstack.Session, floatingIPID string) error {
	err := openstack.RequireID("floating_ip_id", floatingIPID)
	if err != nil {
		return err
	}

	endpoint, err := networkURL(c.resolver, session, "floatingips/"+floatingIPID)
	if err != nil {
		return fmt.Errorf("releasing floating IP: %w", err)
	}

	_, err = c.httpClient.Delete(ctx, openstack.ServiceNetwork, endpoint, session.Token)
	if err != nil {
		return fmt.Errorf("releasing floating IP: %w", err)
	}

	return nil
}

package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kaigouthro/nimbus/internal/http"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

// Client implements the openstack.Client interface.
type Client struct {
	httpClient *http.Client
	logger     openstack.Logger
	policy     openstack.EnrichmentPolicy

	// Resource clients
	compute        *ComputeClient
	volumes        *VolumesClient
	networks       *NetworksClient
	floatingIPs    *FloatingIPsClient
	images         *ImagesClient
	securityGroups *SecurityGroupsClient
	quotas         *QuotasClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *openstack.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	return httpOpts
}

// New creates a gateway client.
func New(config *openstack.Config) (*Client, error) {
	if config == nil {
		return nil, openstack.ErrConfigRequired
	}

	logger := config.Logger
	if logger == nil {
		logger = openstack.NopLogger{}
	}

	policy := config.EnrichmentPolicy
	if policy == "" {
		policy = openstack.EnrichBestEffort
	}

	client := &Client{
		httpClient: http.NewClient(createHTTPClientOptions(config)...),
		logger:     logger,
		policy:     policy,
	}

	client.initializeResourceClients(resolver{iface: config.Interface, region: config.Region})

	return client, nil
}

func (c *Client) initializeResourceClients(r resolver) {
	c.compute = NewComputeClient(c.httpClient, r, c.logger)
	c.volumes = NewVolumesClient(c.httpClient, r)
	c.networks = NewNetworksClient(c.httpClient, r)
	c.floatingIPs = NewFloatingIPsClient(c.httpClient, r, c.networks)
	c.images = NewImagesClient(c.httpClient, r)
	c.securityGroups = NewSecurityGroupsClient(c.httpClient, r)
	c.quotas = NewQuotasClient(c.httpClient, r)
}

// Compute implements openstack.Client.Compute.
func (c *Client) Compute() openstack.ComputeClient { return c.compute }

// Volumes implements openstack.Client.Volumes.
func (c *Client) Volumes() openstack.VolumesClient { return c.volumes }

// Networks implements openstack.Client.Networks.
func (c *Client) Networks() openstack.NetworksClient { return c.networks }

// FloatingIPs implements openstack.Client.FloatingIPs.
func (c *Client) FloatingIPs() openstack.FloatingIPsClient { return c.floatingIPs }

// Images implements openstack.Client.Images.
func (c *Client) Images() openstack.ImagesClient { return c.images }

// SecurityGroups implements openstack.Client.SecurityGroups.
func (c *Client) SecurityGroups() openstack.SecurityGroupsClient { return c.securityGroups }

// Quotas implements openstack.Client.Quotas.
func (c *Client) Quotas() openstack.QuotasClient { return c.quotas }

// Logger implements openstack.Client.Logger.
func (c *Client) Logger() openstack.Logger { return c.logger }

// EnrichmentPolicy implements openstack.Client.EnrichmentPolicy.
func (c *Client) EnrichmentPolicy() openstack.EnrichmentPolicy { return c.policy }

// resolver turns a session into a base URL for one service.
type resolver struct {
	iface  string
	region string
}

func (r resolver) endpoint(session *openstack.Session, serviceTypes ...string) (string, string, error) {
	if session == nil || session.Token == "" {
		return "", "", openstack.ErrTokenRequired
	}

	iface := r.iface
	if session.Interface != "" {
		iface = session.Interface
	}

	region := r.region
	if session.Region != "" {
		region = session.Region
	}

	baseURL, serviceType, ok := session.Catalog.ResolveAny(serviceTypes, iface, region)
	if !ok {
		return "", "", openstack.EndpointNotFound(strings.Join(serviceTypes, "|"))
	}

	return baseURL, serviceType, nil
}

// timeLayouts covers the timestamp shapes the services emit; Nova and
// Cinder often omit the zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTime(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, *value); err == nil {
			return &t
		}
	}

	return nil
}

func parseTimeString(value string) *time.Time {
	return parseTime(&value)
}

// flexInt accepts a number, a numeric string or "" (as 0).
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var n json.Number

	if err := json.Unmarshal(data, &n); err == nil {
		v, err := n.Int64()
		if err != nil {
			return fmt.Errorf("parsing integer %s: %w", n, err)
		}

		*f = flexInt(v)

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing integer: %w", err)
	}

	if s == "" {
		*f = 0

		return nil
	}

	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return fmt.Errorf("parsing integer %q: %w", s, err)
	}

	*f = flexInt(v)

	return nil
}

// flexString accepts a string or a number, as nova reports some ids as integers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parsing identifier: %w", err)
	}

	*f = flexString(n.String())

	return nil
}

// flexBool accepts true/false and their string forms.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing boolean: %w", err)
	}

	*f = flexBool(strings.EqualFold(s, "true"))

	return nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func decode(resp *http.Response, target any, what string) error {
	if resp.NoContent {
		return fmt.Errorf("parsing %s: %w", what, openstack.ErrUnexpectedPayload)
	}

	err := json.Unmarshal(resp.Body, target)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", what, err)
	}

	return nil
}

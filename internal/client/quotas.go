package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kaigouthro/nimbus/internal/http"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

// QuotasClient implements openstack.QuotasClient.
type QuotasClient struct {
	httpClient *http.Client
	resolver   resolver
}

// NewQuotasClient creates a new quota client.
func NewQuotasClient(httpClient *http.Client, r resolver) *QuotasClient {
	return &QuotasClient{
		httpClient: httpClient,
		resolver:   r,
	}
}

// Compute implements openstack.QuotasClient.Compute.
func (c *QuotasClient) Compute(ctx context.Context, session *openstack.Session, projectID string) (openstack.ServiceQuotas, error) {
	err := openstack.RequireID("project_id", projectID)
	if err != nil {
		return nil, err
	}

	baseURL, _, err := c.resolver.endpoint(session, openstack.ServiceCompute)
	if err != nil {
		return nil, fmt.Errorf("getting compute quotas: %w", err)
	}

	return c.fetch(ctx, session, openstack.ServiceCompute, openstack.JoinPath(baseURL, "os-quota-sets", projectID), "quota_set")
}

// Volume implements openstack.QuotasClient.Volume.
func (c *QuotasClient) Volume(ctx context.Context, session *openstack.Session, projectID string) (openstack.ServiceQuotas, error) {
	err := openstack.RequireID("project_id", projectID)
	if err != nil {
		return nil, err
	}

	baseURL, _, err := c.resolver.endpoint(session, openstack.VolumeServiceTypes...)
	if err != nil {
		return nil, fmt.Errorf("getting volume quotas: %w", err)
	}

	return c.fetch(ctx, session, openstack.ServiceVolume, openstack.JoinPath(baseURL, "os-quota-sets", projectID), "quota_set")
}

// Network implements openstack.QuotasClient.Network.
func (c *QuotasClient) Network(ctx context.Context, session *openstack.Session, projectID string) (openstack.ServiceQuotas, error) {
	err := openstack.RequireID("project_id", projectID)
	if err != nil {
		return nil, err
	}

	endpoint, err := networkURL(c.resolver, session, "quotas/"+projectID)
	if err != nil {
		return nil, fmt.Errorf("getting network quotas: %w", err)
	}

	return c.fetch(ctx, session, openstack.ServiceNetwork, endpoint, "quota")
}

func (c *QuotasClient) fetch(ctx context.Context, session *openstack.Session, service, endpoint, key string) (openstack.ServiceQuotas, error) {
	resp, err := c.httpClient.Get(ctx, service, endpoint, session.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s quotas: %w", service, err)
	}

	var body map[string]map[string]json.RawMessage

	err = decode(resp, &body, service+" quotas")
	if err != nil {
		return nil, err
	}

	raw, ok := body[key]
	if !ok {
		return nil, fmt.Errorf("parsing %s quotas: %w: missing %q", service, openstack.ErrUnexpectedPayload, key)
	}

	return toServiceQuotas(raw), nil
}

// toServiceQuotas keeps the integer limits. Detailed quota sets report
// {"limit": n, "in_use": m} per key; the limit is taken. Non-numeric keys
// such as "id" are skipped.
func toServiceQuotas(raw map[string]json.RawMessage) openstack.ServiceQuotas {
	quotas := make(openstack.ServiceQuotas, len(raw))

	for key, value := range raw {
		if string(value) == "null" {
			continue
		}

		var limit int
		if json.Unmarshal(value, &limit) == nil {
			quotas[key] = limit

			continue
		}

		var detailed struct {
			Limit *int `json:"limit"`
		}

		if json.Unmarshal(value, &detailed) == nil && detailed.Limit != nil {
			quotas[key] = *detailed.Limit
		}
	}

	return quotas
}

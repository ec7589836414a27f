// Package osclient provides the main entry point for creating cloud gateway clients
package osclient

import (
	"fmt"
	"os"
	"strings"

	"github.com/kaigouthro/nimbus/internal/client"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

// New creates a gateway client. The configuration is validated and copied;
// later changes to config do not affect the client.
func New(config *openstack.Config) (openstack.Client, error) {
	if config == nil {
		return nil, openstack.ErrConfigRequired
	}

	normalized := *config
	normalized.Interface = strings.ToLower(strings.TrimSpace(normalized.Interface))

	if normalized.Interface == "" {
		normalized.Interface = openstack.InterfacePublic
	}

	switch normalized.Interface {
	case openstack.InterfacePublic, openstack.InterfaceInternal, openstack.InterfaceAdmin:
	default:
		return nil, &openstack.ValidationError{Field: "interface", Reason: "must be public, internal or admin"}
	}

	switch normalized.EnrichmentPolicy {
	case "", openstack.EnrichBestEffort, openstack.EnrichStrict:
	default:
		return nil, &openstack.ValidationError{Field: "enrichment_policy", Reason: "must be best-effort or strict"}
	}

	if normalized.HTTPTimeout < 0 {
		return nil, &openstack.ValidationError{Field: "http_timeout", Reason: "must not be negative"}
	}

	if !normalized.Debug && isDebugEnvironment() {
		normalized.Debug = true
	}

	c, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithRegion creates a client for the public interface of one region.
func NewWithRegion(region string) (openstack.Client, error) {
	return New(&openstack.Config{
		Region: region,
	})
}

// NewWithLogger creates a client that reports through logger.
func NewWithLogger(logger openstack.Logger) (openstack.Client, error) {
	return New(&openstack.Config{
		Logger: logger,
	})
}

// isDebugEnvironment checks whether request logging was switched on from the
// environment.
func isDebugEnvironment() bool {
	debug := os.Getenv("NIMBUS_DEBUG")

	return debug == "true" || debug == "1"
}

package openstack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigouthro/nimbus/pkg/openstack"
)

func testCatalog() openstack.ServiceCatalog {
	return openstack.ServiceCatalog{
		{
			Type: "compute",
			Name: "nova",
			Endpoints: []openstack.Endpoint{
				{Interface: "internal", Region: "RegionOne", URL: "http://nova.internal:8774/v2.1"},
				{Interface: "public", Region: "RegionOne", URL: "https://nova.one.example.com/v2.1/"},
				{Interface: "public", Region: "RegionTwo", URL: "https://nova.two.example.com/v2.1"},
			},
		},
		{
			Type: "volumev3",
			Name: "cinderv3",
			Endpoints: []openstack.Endpoint{
				{Interface: "public", Region: "RegionOne", URL: "https://cinder.example.com/v3/proj-1"},
			},
		},
		{
			Type: "network",
			Name: "neutron",
			Endpoints: []openstack.Endpoint{
				{Interface: "public", RegionID: "RegionTwo", URL: "https://neutron.example.com//"},
			},
		},
	}
}

func TestServiceCatalog_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		serviceType string
		iface       string
		region      string
		want        string
		found       bool
	}{
		{"first public endpoint without region", "compute", "public", "", "https://nova.one.example.com/v2.1", true},
		{"empty interface means public", "compute", "", "", "https://nova.one.example.com/v2.1", true},
		{"region match preferred", "compute", "public", "RegionTwo", "https://nova.two.example.com/v2.1", true},
		{"internal interface", "compute", "internal", "RegionOne", "http://nova.internal:8774/v2.1", true},
		{"unknown region falls back to interface", "compute", "public", "RegionNine", "https://nova.one.example.com/v2.1", true},
		{"region id matches", "network", "public", "RegionTwo", "https://neutron.example.com", true},
		{"trailing slashes stripped", "network", "public", "", "https://neutron.example.com", true},
		{"no admin endpoint", "compute", "admin", "", "", false},
		{"unknown service", "image", "public", "", "", false},
	}

	catalog := testCatalog()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := catalog.Resolve(tt.serviceType, tt.iface, tt.region)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServiceCatalog_ResolveAny(t *testing.T) {
	t.Parallel()

	catalog := testCatalog()

	t.Run("first matching alias wins", func(t *testing.T) {
		t.Parallel()

		url, serviceType, ok := catalog.ResolveAny(openstack.VolumeServiceTypes, "public", "")
		require.True(t, ok)
		assert.Equal(t, "volumev3", serviceType)
		assert.Equal(t, "https://cinder.example.com/v3/proj-1", url)
	})

	t.Run("older alias used when newer missing", func(t *testing.T) {
		t.Parallel()

		legacy := openstack.ServiceCatalog{
			{Type: "volume", Endpoints: []openstack.Endpoint{{Interface: "public", URL: "https://cinder.example.com/v1/p"}}},
		}

		url, serviceType, ok := legacy.ResolveAny(openstack.VolumeServiceTypes, "public", "")
		require.True(t, ok)
		assert.Equal(t, "volume", serviceType)
		assert.Equal(t, "https://cinder.example.com/v1/p", url)
	})

	t.Run("none match", func(t *testing.T) {
		t.Parallel()

		_, _, ok := catalog.ResolveAny([]string{"image", "object-store"}, "public", "")
		assert.False(t, ok)
	})
}

func TestServiceCatalog_RequireEndpoint(t *testing.T) {
	t.Parallel()

	catalog := testCatalog()

	url, err := catalog.RequireEndpoint("compute", "public", "RegionTwo")
	require.NoError(t, err)
	assert.Equal(t, "https://nova.two.example.com/v2.1", url)

	_, err = catalog.RequireEndpoint("image", "public", "")
	require.ErrorIs(t, err, openstack.ErrEndpointNotFound)
	assert.True(t, openstack.IsEndpointNotFound(err))
	assert.Contains(t, err.Error(), "image")

	assert.True(t, catalog.Has("network"))
	assert.False(t, catalog.Has("image"))
}

func TestBuildPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		base     string
		version  string
		resource string
		want     string
	}{
		{"version appended", "http://host:9696", "v2.0", "networks", "http://host:9696/v2.0/networks"},
		{"version already present", "http://host:9696/v2.0", "v2.0", "networks", "http://host:9696/v2.0/networks"},
		{"trailing and leading slashes", "http://host/network/v2.0/", "v2.0", "/networks", "http://host/network/v2.0/networks"},
		{"prefixed base", "http://host/image", "v2", "images", "http://host/image/v2/images"},
		{"no version", "http://host", "", "ports", "http://host/ports"},
		{"nested resource", "http://host:9696", "v2.0", "quotas/proj-1", "http://host:9696/v2.0/quotas/proj-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, openstack.BuildPath(tt.base, tt.version, tt.resource))
		})
	}
}

func TestJoinPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://nova/v2.1/servers/s1/action", openstack.JoinPath("https://nova/v2.1/", "servers", "/s1/", "action"))
	assert.Equal(t, "https://nova/v2.1/flavors/detail", openstack.JoinPath("https://nova/v2.1", "flavors", "", "detail"))
	assert.Equal(t, "https://nova/v2.1", openstack.JoinPath("https://nova/v2.1"))
}

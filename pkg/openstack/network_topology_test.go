package openstack_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigouthro/nimbus/pkg/openstack"
)

func topologyClient() *fakeClient {
	client := newFakeClient()
	client.networks.subnets = map[string][]openstack.Subnet{
		"net-a": {{ID: "sub-a", NetworkID: "net-a", CIDR: "10.0.0.0/24"}},
		"net-b": {{ID: "sub-b", NetworkID: "net-b", CIDR: "10.1.0.0/24"}},
	}
	client.networks.routers = []openstack.Router{
		{ID: "r-1", Name: "edge", ExternalGateway: &openstack.ExternalGateway{NetworkID: "public"}},
		{ID: "r-2", Name: "inner"},
	}
	client.networks.ports = map[string][]openstack.Port{
		"r-1": {
			{ID: "p-1", NetworkID: "net-a", DeviceID: "r-1"},
			{ID: "p-2", NetworkID: "net-a", DeviceID: "r-1"},
			{ID: "p-3", NetworkID: "net-b", DeviceID: "r-1"},
		},
		"r-2": {
			{ID: "p-4", NetworkID: "net-b", DeviceID: "r-2"},
		},
	}

	return client
}

func topologyNetworks() []openstack.Network {
	return []openstack.Network{
		{ID: "net-a", Name: "private-a", SubnetIDs: []string{"sub-a"}},
		{ID: "net-b", Name: "private-b", SubnetIDs: []string{"sub-b"}},
		{ID: "net-c", Name: "isolated"},
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestEnrichNetworks(t *testing.T) {
	t.Parallel()

	t.Run("attaches subnets and routers", func(t *testing.T) {
		t.Parallel()

		client := topologyClient()
		networks := topologyNetworks()

		enriched, err := openstack.EnrichNetworks(context.Background(), client, testSession(), networks, "")
		require.NoError(t, err)
		require.Len(t, enriched, 3)

		assert.Equal(t, "sub-a", enriched[0].Subnets[0].ID)
		assert.Equal(t, "sub-b", enriched[1].Subnets[0].ID)
		assert.NotNil(t, enriched[2].Subnets)
		assert.Empty(t, enriched[2].Subnets)

		wantA := []openstack.RouterRef{
			{ID: "r-1", Name: "edge", ExternalGateway: &openstack.ExternalGateway{NetworkID: "public"}},
		}
		if diff := cmp.Diff(wantA, enriched[0].Routers); diff != "" {
			t.Errorf("routers of net-a mismatch (-want +got):\n%s", diff)
		}

		routerIDs := make([]string, 0, len(enriched[1].Routers))
		for _, router := range enriched[1].Routers {
			routerIDs = append(routerIDs, router.ID)
		}

		assert.ElementsMatch(t, []string{"r-1", "r-2"}, routerIDs)
		assert.Empty(t, enriched[2].Routers)

		assert.Equal(t, int32(2), client.networks.subnetCalls.Load())
		assert.Equal(t, int32(1), client.networks.routerCalls.Load())
		assert.Equal(t, int32(2), client.networks.portCalls.Load())
	})

	t.Run("does not modify the input", func(t *testing.T) {
		t.Parallel()

		networks := topologyNetworks()

		_, err := openstack.EnrichNetworks(context.Background(), topologyClient(), testSession(), networks, openstack.EnrichStrict)
		require.NoError(t, err)

		for _, network := range networks {
			assert.Nil(t, network.Subnets)
			assert.Nil(t, network.Routers)
		}

		assert.Equal(t, "net-a", networks[0].ID)
	})

	t.Run("best effort swallows lookup failures", func(t *testing.T) {
		t.Parallel()

		client := topologyClient()
		client.networks.subnetErrs = map[string]error{"net-a": errors.New("subnet lookup failed")}
		client.networks.portErrs = map[string]error{"r-2": errors.New("port lookup failed")}

		enriched, err := openstack.EnrichNetworks(context.Background(), client, testSession(), topologyNetworks(), openstack.EnrichBestEffort)
		require.NoError(t, err)

		assert.Empty(t, enriched[0].Subnets)
		assert.Len(t, enriched[1].Subnets, 1)

		require.Len(t, enriched[1].Routers, 1)
		assert.Equal(t, "r-1", enriched[1].Routers[0].ID)

		assert.Len(t, client.logger.byLevel("warn"), 2)
	})

	t.Run("client default policy applies", func(t *testing.T) {
		t.Parallel()

		client := topologyClient()
		client.policy = openstack.EnrichStrict
		client.networks.routersErr = errors.New("router list failed")

		_, err := openstack.EnrichNetworks(context.Background(), client, testSession(), topologyNetworks(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "router list failed")
	})

	t.Run("strict fails on subnet error", func(t *testing.T) {
		t.Parallel()

		client := topologyClient()
		client.networks.subnetErrs = map[string]error{"net-b": errors.New("subnet lookup failed")}

		enriched, err := openstack.EnrichNetworks(context.Background(), client, testSession(), topologyNetworks(), openstack.EnrichStrict)
		require.Error(t, err)
		assert.Nil(t, enriched)
		assert.Contains(t, err.Error(), "net-b")
		assert.Empty(t, client.logger.byLevel("warn"))
	})

	t.Run("router list failure in best effort", func(t *testing.T) {
		t.Parallel()

		client := topologyClient()
		client.networks.routersErr = errors.New("router list failed")

		enriched, err := openstack.EnrichNetworks(context.Background(), client, testSession(), topologyNetworks(), openstack.EnrichBestEffort)
		require.NoError(t, err)

		for _, network := range enriched {
			assert.NotNil(t, network.Routers)
			assert.Empty(t, network.Routers)
		}

		assert.Equal(t, int32(0), client.networks.portCalls.Load())
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()

		enriched, err := openstack.EnrichNetworks(context.Background(), topologyClient(), testSession(), nil, "")
		require.NoError(t, err)
		assert.Empty(t, enriched)
	})
}

func TestPickExternalNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		networks []openstack.Network
		want     string
	}{
		{
			name: "external flag wins",
			networks: []openstack.Network{
				{ID: "n1", Name: "public-ish"},
				{ID: "n2", Name: "provider", IsExternal: true},
			},
			want: "n2",
		},
		{
			name:     "name containing public",
			networks: []openstack.Network{{ID: "n1", Name: "private"}, {ID: "n2", Name: "Public"}},
			want:     "n2",
		},
		{
			name:     "name containing ext",
			networks: []openstack.Network{{ID: "n1", Name: "ext-net"}},
			want:     "n1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			network, err := openstack.PickExternalNetwork(tt.networks)
			require.NoError(t, err)
			assert.Equal(t, tt.want, network.ID)
		})
	}

	t.Run("none", func(t *testing.T) {
		t.Parallel()

		_, err := openstack.PickExternalNetwork([]openstack.Network{{ID: "n1", Name: "private"}})
		require.ErrorIs(t, err, openstack.ErrNoExternalNetwork)
	})
}

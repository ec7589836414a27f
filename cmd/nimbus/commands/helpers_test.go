package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

func TestParsePortRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		min     int
		max     int
		wantErr bool
	}{
		{input: "22", min: 22, max: 22},
		{input: "8000-8080", min: 8000, max: 8080},
		{input: " 80 - 443 ", min: 80, max: 443},
		{input: "ssh", wantErr: true},
		{input: "80-", wantErr: true},
		{input: "-80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			minPort, maxPort, err := parsePortRange(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, constants.ErrInvalidPort)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.min, minPort)
			assert.Equal(t, tt.max, maxPort)
		})
	}
}

func TestRuleFlags_Request(t *testing.T) {
	t.Parallel()

	t.Run("full rule", func(t *testing.T) {
		t.Parallel()

		flags := &ruleFlags{direction: "Ingress", protocol: "tcp", ports: "22", remoteIP: "10.0.0.0/8", description: "ssh"}

		request, err := flags.request("sg-1")
		require.NoError(t, err)

		port := 22
		assert.Equal(t, &openstack.CreateSecurityGroupRuleRequest{
			SecurityGroupID: "sg-1",
			Direction:       openstack.DirectionIngress,
			Protocol:        &flags.protocol,
			PortRangeMin:    &port,
			PortRangeMax:    &port,
			RemoteIPPrefix:  &flags.remoteIP,
			Description:     "ssh",
		}, request)
	})

	t.Run("any protocol is left unset", func(t *testing.T) {
		t.Parallel()

		request, err := (&ruleFlags{direction: "egress", protocol: "any", remoteGroup: "sg-2"}).request("sg-1")
		require.NoError(t, err)
		assert.Nil(t, request.Protocol)
		assert.Nil(t, request.PortRangeMin)
		require.NotNil(t, request.RemoteGroupID)
		assert.Equal(t, "sg-2", *request.RemoteGroupID)
	})

	t.Run("bad direction", func(t *testing.T) {
		t.Parallel()

		_, err := (&ruleFlags{direction: "sideways"}).request("sg-1")
		require.ErrorIs(t, err, constants.ErrInvalidDirection)
	})

	t.Run("bad ports", func(t *testing.T) {
		t.Parallel()

		_, err := (&ruleFlags{direction: "ingress", ports: "all"}).request("sg-1")
		require.ErrorIs(t, err, constants.ErrInvalidPort)
	})
}

func TestSetConfigValue(t *testing.T) {
	t.Parallel()

	config := &Config{}

	require.NoError(t, setConfigValue(config, "region", "RegionTwo"))
	require.NoError(t, setConfigValue(config, "nats-url", "nats://localhost:4222"))
	require.NoError(t, setConfigValue(config, "timeout", "45s"))
	require.NoError(t, setConfigValue(config, "verbose", "true"))
	require.NoError(t, setConfigValue(config, "enrichment-policy", "strict"))

	assert.Equal(t, &Config{
		Region:           "RegionTwo",
		NATSURL:          "nats://localhost:4222",
		Timeout:          "45s",
		Verbose:          true,
		EnrichmentPolicy: "strict",
	}, config)

	require.NoError(t, setConfigValue(config, "timeout", ""))
	assert.Empty(t, config.Timeout)

	err := setConfigValue(config, "timeout", "soon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")

	err = setConfigValue(config, "password", "hunter2")
	require.ErrorIs(t, err, constants.ErrUnknownConfigKey)
}

func TestFormatting(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Unlimited, formatLimit(-1))
	assert.Equal(t, "20", formatLimit(20))
	assert.Equal(t, "0", formatLimit(0))
	assert.Equal(t, NotAvailable, formatUsed(-1))
	assert.Equal(t, "3", formatUsed(3))

	assert.Equal(t, None, orNone(""))
	assert.Equal(t, "x", orNone("x"))

	var missing *int

	present := 8080
	assert.Equal(t, None, ptrOrNone(missing))
	assert.Equal(t, "8080", ptrOrNone(&present))
	assert.Equal(t, None, formatTime(nil))

	assert.Equal(t, "any", formatProtocol(nil))
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}

func TestResolveCatalog(t *testing.T) {
	t.Parallel()

	catalog := openstack.ServiceCatalog{
		{
			Type: openstack.ServiceCompute,
			Name: "nova",
			Endpoints: []openstack.Endpoint{
				{Interface: openstack.InterfacePublic, Region: "RegionOne", URL: "https://one.example/compute/v2.1/"},
				{Interface: openstack.InterfacePublic, Region: "RegionTwo", URL: "https://two.example/compute/v2.1"},
			},
		},
		{
			Type:      openstack.ServiceImage,
			Name:      "glance",
			Endpoints: []openstack.Endpoint{{Interface: openstack.InterfaceInternal, Region: "RegionOne", URL: "http://glance:9292"}},
		},
	}

	assert.Equal(t, []resolvedEndpoint{
		{Type: openstack.ServiceCompute, Name: "nova", URL: "https://two.example/compute/v2.1"},
		{Type: openstack.ServiceImage, Name: "glance"},
	}, resolveCatalog(catalog, openstack.InterfacePublic, "RegionTwo"))
}

func TestActionSubject(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "nimbus.actions.server-start", actionSubject("server-start"))
}

func TestEventPublisher_Disabled(t *testing.T) {
	t.Parallel()

	publisher, err := newEventPublisher("", openstack.NopLogger{})
	require.NoError(t, err)
	assert.Nil(t, publisher)

	require.NoError(t, publisher.publish(actionEvent{Kind: "volume-delete", ResourceID: "vol-1"}))
	publisher.close()
}

func TestZerologLogger(t *testing.T) {
	t.Parallel()

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		logger := newLogger(&buf, false)
		logger.Debug("HTTP Request", map[string]interface{}{"method": "GET"})
		logger.Warn("Failed to fetch quotas", map[string]interface{}{"service": "network"})

		assert.NotContains(t, buf.String(), "HTTP Request")
		assert.Contains(t, buf.String(), "Failed to fetch quotas")
		assert.Contains(t, buf.String(), "network")
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		newLogger(&buf, true).Debug("HTTP Request", map[string]interface{}{"method": "GET"})

		assert.Contains(t, buf.String(), "HTTP Request")
		assert.Contains(t, buf.String(), "GET")
	})
}

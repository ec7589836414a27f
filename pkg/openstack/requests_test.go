package openstack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigouthro/nimbus/pkg/openstack"
)

type validator interface {
	Validate() error
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestRequestValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		request validator
		field   string
	}{
		{
			name:    "launch ok",
			request: &openstack.LaunchInstanceRequest{Name: "web", ImageID: "img", FlavorID: "m1.small", NetworkIDs: []string{"net-1"}},
		},
		{
			name:    "launch auto network",
			request: &openstack.LaunchInstanceRequest{Name: "web", ImageID: "img", FlavorID: "m1.small"},
		},
		{
			name:    "launch blank name",
			request: &openstack.LaunchInstanceRequest{Name: "  ", ImageID: "img", FlavorID: "f"},
			field:   "name",
		},
		{
			name:    "launch missing image",
			request: &openstack.LaunchInstanceRequest{Name: "web", FlavorID: "f"},
			field:   "image_id",
		},
		{
			name:    "launch missing flavor",
			request: &openstack.LaunchInstanceRequest{Name: "web", ImageID: "img"},
			field:   "flavor_id",
		},
		{
			name:    "launch empty network id",
			request: &openstack.LaunchInstanceRequest{Name: "web", ImageID: "img", FlavorID: "f", NetworkIDs: []string{""}},
			field:   "network_ids",
		},
		{name: "reboot default", request: &openstack.RebootRequest{}},
		{name: "reboot hard lowercase", request: &openstack.RebootRequest{Type: "hard"}},
		{name: "reboot bogus", request: &openstack.RebootRequest{Type: "cold"}, field: "type"},
		{name: "snapshot ok", request: &openstack.SnapshotInstanceRequest{Name: "snap"}},
		{name: "snapshot blank", request: &openstack.SnapshotInstanceRequest{}, field: "name"},
		{name: "console novnc", request: &openstack.ConsoleRequest{Type: openstack.ConsoleNoVNC}},
		{name: "console serial", request: &openstack.ConsoleRequest{Type: openstack.ConsoleSerial}},
		{name: "console rdp", request: &openstack.ConsoleRequest{Type: "rdp-html5"}, field: "type"},
		{name: "volume ok", request: &openstack.CreateVolumeRequest{SizeGB: 10}},
		{name: "volume negative", request: &openstack.CreateVolumeRequest{SizeGB: -1}, field: "size_gb"},
		{name: "extend ok", request: &openstack.ExtendVolumeRequest{NewSizeGB: 20}},
		{name: "extend zero", request: &openstack.ExtendVolumeRequest{}, field: "new_size_gb"},
		{name: "volume snapshot ok", request: &openstack.CreateVolumeSnapshotRequest{VolumeID: "v1", Name: "s"}},
		{name: "volume snapshot no volume", request: &openstack.CreateVolumeSnapshotRequest{Name: "s"}, field: "volume_id"},
		{name: "volume snapshot no name", request: &openstack.CreateVolumeSnapshotRequest{VolumeID: "v1"}, field: "name"},
		{name: "attach ok", request: &openstack.AttachVolumeRequest{InstanceID: "s1", VolumeID: "v1"}},
		{name: "attach no instance", request: &openstack.AttachVolumeRequest{VolumeID: "v1"}, field: "instance_id"},
		{name: "attach no volume", request: &openstack.AttachVolumeRequest{InstanceID: "s1"}, field: "volume_id"},
		{name: "floating ip ok", request: &openstack.AllocateFloatingIPRequest{FloatingNetworkID: "ext"}},
		{name: "floating ip no pool", request: &openstack.AllocateFloatingIPRequest{}, field: "floating_network_id"},
		{name: "security group ok", request: &openstack.CreateSecurityGroupRequest{Name: "web"}},
		{name: "security group blank", request: &openstack.CreateSecurityGroupRequest{}, field: "name"},
		{
			name: "rule ok",
			request: &openstack.CreateSecurityGroupRuleRequest{
				SecurityGroupID: "sg", Direction: "ingress", Protocol: strPtr("tcp"),
				PortRangeMin: intPtr(22), PortRangeMax: intPtr(22), RemoteIPPrefix: strPtr("0.0.0.0/0"),
			},
		},
		{
			name:    "rule any protocol",
			request: &openstack.CreateSecurityGroupRuleRequest{SecurityGroupID: "sg", Direction: "egress", Ethertype: "IPv6"},
		},
		{
			name:    "rule no group",
			request: &openstack.CreateSecurityGroupRuleRequest{Direction: "ingress"},
			field:   "security_group_id",
		},
		{
			name:    "rule bad direction",
			request: &openstack.CreateSecurityGroupRuleRequest{SecurityGroupID: "sg", Direction: "inbound"},
			field:   "direction",
		},
		{
			name:    "rule bad ethertype",
			request: &openstack.CreateSecurityGroupRuleRequest{SecurityGroupID: "sg", Direction: "ingress", Ethertype: "ipx"},
			field:   "ethertype",
		},
		{
			name: "rule both remotes",
			request: &openstack.CreateSecurityGroupRuleRequest{
				SecurityGroupID: "sg", Direction: "ingress", RemoteIPPrefix: strPtr("10.0.0.0/8"), RemoteGroupID: strPtr("sg2"),
			},
			field: "remote_ip_prefix",
		},
		{
			name: "rule inverted range",
			request: &openstack.CreateSecurityGroupRuleRequest{
				SecurityGroupID: "sg", Direction: "ingress", PortRangeMin: intPtr(8080), PortRangeMax: intPtr(80),
			},
			field: "port_range_min",
		},
		{
			name: "rule port out of range",
			request: &openstack.CreateSecurityGroupRuleRequest{
				SecurityGroupID: "sg", Direction: "ingress", PortRangeMin: intPtr(1), PortRangeMax: intPtr(70000),
			},
			field: "port_range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.request.Validate()
			if tt.field == "" {
				require.NoError(t, err)

				return
			}

			validationErr := &openstack.ValidationError{}
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

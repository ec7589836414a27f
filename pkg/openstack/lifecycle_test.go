package openstack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigouthro/nimbus/pkg/openstack"
)

func TestNormalizeLifecycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		signals openstack.StatusSignals
		want    openstack.LifecycleState
	}{
		{
			name:    "active with shutdown power is a stop in flight",
			signals: openstack.StatusSignals{Status: "ACTIVE", VMState: "active", PowerState: intPtr(openstack.PowerShutdown)},
			want:    openstack.StateShutoff,
		},
		{
			name:    "active and running",
			signals: openstack.StatusSignals{Status: "ACTIVE", VMState: "active", PowerState: intPtr(openstack.PowerRunning)},
			want:    openstack.StateRunning,
		},
		{
			name:    "active and paused power",
			signals: openstack.StatusSignals{Status: "ACTIVE", VMState: "active", PowerState: intPtr(openstack.PowerPaused)},
			want:    openstack.StatePaused,
		},
		{
			name:    "active with odd power defaults to running",
			signals: openstack.StatusSignals{Status: "ACTIVE", VMState: "active", PowerState: intPtr(openstack.PowerCrashed)},
			want:    openstack.StateRunning,
		},
		{
			name:    "active without power state",
			signals: openstack.StatusSignals{Status: "ACTIVE"},
			want:    openstack.StateRunning,
		},
		{
			name:    "shelved ignores power",
			signals: openstack.StatusSignals{Status: "SHELVED", VMState: "shelved", PowerState: intPtr(openstack.PowerRunning)},
			want:    openstack.StateShelved,
		},
		{
			name:    "shelved offloaded from status",
			signals: openstack.StatusSignals{Status: "SHELVED_OFFLOADED"},
			want:    openstack.StateShelvedOffloaded,
		},
		{
			name: "task error wins over active",
			signals: openstack.StatusSignals{
				Status: "ACTIVE", VMState: "active", TaskState: "image_snapshot_error", PowerState: intPtr(openstack.PowerRunning),
			},
			want: openstack.StateError,
		},
		{
			name:    "error vm state",
			signals: openstack.StatusSignals{Status: "ERROR", VMState: "error"},
			want:    openstack.StateError,
		},
		{
			name:    "building",
			signals: openstack.StatusSignals{Status: "BUILD", VMState: "building", TaskState: "spawning"},
			want:    openstack.StateBuilding,
		},
		{
			name:    "rebuild status",
			signals: openstack.StatusSignals{Status: "REBUILD", VMState: "active"},
			want:    openstack.StateBuilding,
		},
		{
			name:    "build status wins over active vm state and running power",
			signals: openstack.StatusSignals{Status: "build", VMState: "active", PowerState: intPtr(openstack.PowerRunning)},
			want:    openstack.StateBuilding,
		},
		{
			name:    "shelved vm state outranks build status",
			signals: openstack.StatusSignals{Status: "REBUILD", VMState: "shelved_offloaded"},
			want:    openstack.StateShelvedOffloaded,
		},
		{
			name:    "stopped",
			signals: openstack.StatusSignals{Status: "SHUTOFF", VMState: "stopped", PowerState: intPtr(openstack.PowerShutdown)},
			want:    openstack.StateShutoff,
		},
		{
			name:    "paused",
			signals: openstack.StatusSignals{Status: "PAUSED", VMState: "paused"},
			want:    openstack.StatePaused,
		},
		{
			name:    "power table suspended",
			signals: openstack.StatusSignals{Status: "SUSPENDED", VMState: "suspended", PowerState: intPtr(openstack.PowerSuspended)},
			want:    openstack.StatePaused,
		},
		{
			name:    "power table crashed",
			signals: openstack.StatusSignals{PowerState: intPtr(openstack.PowerCrashed)},
			want:    openstack.StateError,
		},
		{
			name:    "power table no state",
			signals: openstack.StatusSignals{PowerState: intPtr(openstack.PowerNoState)},
			want:    openstack.StateShutoff,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger := &recordingLogger{}

			assert.Equal(t, tt.want, openstack.NormalizeLifecycle(tt.signals, logger))
			assert.Empty(t, logger.byLevel("warn"))
		})
	}
}

func TestNormalizeLifecycle_UnknownPowerCode(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}

	state := openstack.NormalizeLifecycle(openstack.StatusSignals{
		InstanceID: "srv-1",
		Status:     "MIGRATING",
		PowerState: intPtr(99),
	}, logger)
	assert.Equal(t, openstack.StateError, state)

	warnings := logger.byLevel("warn")
	require.Len(t, warnings, 1)
	assert.Equal(t, "srv-1", warnings[0].fields["instance_id"])
	assert.Equal(t, 99, warnings[0].fields["power_state"])
}

func TestNormalizeLifecycle_MissingPowerCode(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}

	state := openstack.NormalizeLifecycle(openstack.StatusSignals{InstanceID: "srv-2", Status: "UNKNOWN"}, logger)
	assert.Equal(t, openstack.StateError, state)

	warnings := logger.byLevel("warn")
	require.Len(t, warnings, 1)
	assert.Nil(t, warnings[0].fields["power_state"])
}

func TestNormalizeLifecycle_NilLogger(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		state := openstack.NormalizeLifecycle(openstack.StatusSignals{PowerState: intPtr(42)}, nil)
		assert.Equal(t, openstack.StateError, state)
	})
}

func TestNormalizeLifecycle_Idempotent(t *testing.T) {
	t.Parallel()

	signals := openstack.StatusSignals{Status: "ACTIVE", VMState: "active", PowerState: intPtr(openstack.PowerShutdown)}

	first := openstack.NormalizeLifecycle(signals, nil)
	second := openstack.NormalizeLifecycle(signals, nil)

	assert.Equal(t, first, second)
	assert.Equal(t, openstack.StateShutoff, second)
}

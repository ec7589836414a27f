package openstack

import "strings"

// Nova power_state codes.
const (
	PowerNoState   = 0
	PowerRunning   = 1
	PowerPaused    = 3
	PowerShutdown  = 4
	PowerCrashed   = 6
	PowerSuspended = 7
)

var powerStates = map[int]LifecycleState{
	PowerNoState:   StateShutoff,
	PowerRunning:   StateRunning,
	PowerPaused:    StatePaused,
	PowerShutdown:  StateShutoff,
	PowerCrashed:   StateError,
	PowerSuspended: StatePaused,
}

// StatusSignals are the upstream fields that together decide an instance's
// lifecycle state. PowerState is nil when the server omitted it.
type StatusSignals struct {
	InstanceID string
	Status     string
	VMState    string
	TaskState  string
	PowerState *int
}

// NormalizeLifecycle collapses the status signals into a LifecycleState.
// It never fails: an unrecognized power code maps to StateError and is
// reported to logger as a warning. logger may be nil.
func NormalizeLifecycle(sig StatusSignals, logger Logger) LifecycleState {
	if strings.Contains(strings.ToUpper(sig.TaskState), "ERROR") {
		return StateError
	}

	status := strings.ToUpper(sig.Status)

	vmState := strings.ToUpper(sig.VMState)
	if vmState == "" {
		vmState = status
	}

	switch {
	case vmState == "SHELVED":
		return StateShelved
	case vmState == "SHELVED_OFFLOADED":
		return StateShelvedOffloaded
	case vmState == "ERROR":
		return StateError
	// nova keeps vm_state active during a rebuild; only status says BUILD/REBUILD
	case vmState == "BUILDING", vmState == "BUILD", vmState == "REBUILD", status == "BUILD", status == "REBUILD":
		return StateBuilding
	case vmState == "STOPPED", vmState == "SHUTOFF":
		return StateShutoff
	case vmState == "PAUSED":
		return StatePaused
	case vmState == "ACTIVE", vmState == "RUNNING":
		return activePowerState(sig.PowerState)
	}

	if sig.PowerState != nil {
		if state, ok := powerStates[*sig.PowerState]; ok {
			return state
		}
	}

	if logger != nil {
		fields := map[string]interface{}{
			"instance_id": sig.InstanceID,
			"vm_state":    vmState,
			"power_state": nil,
		}
		if sig.PowerState != nil {
			fields["power_state"] = *sig.PowerState
		}

		logger.Warn("Unknown power state code with ambiguous vm_state, mapping to Error", fields)
	}

	return StateError
}

// activePowerState refines an ACTIVE instance; a missing or unexpected code
// still means running.
func activePowerState(code *int) LifecycleState {
	if code == nil {
		return StateRunning
	}

	switch *code {
	case PowerPaused:
		return StatePaused
	case PowerShutdown:
		return StateShutoff
	default:
		return StateRunning
	}
}

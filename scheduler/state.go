package scheduler

// InstanceState is a bitset describing what an instance's existing
// actions are already doing, mirroring the original's
// instance_starting/instance_stopping/instance_restarting/
// instance_active flags (pcmk_sched_instances.c's check_instance_state).
type InstanceState uint8

const (
	StateStarting InstanceState = 1 << iota
	StateStopping
	StateRestarting
	StateActive
)

const stateAll = StateStarting | StateStopping | StateRestarting | StateActive

// CheckInstanceState accumulates the bits that apply over instance's
// subtree: a primitive contributes its own running state and actions;
// any other variant only recurses into its children (and contained
// resource) and never inspects its own actions. It returns
// as soon as every bit is already set, the short-circuit the original
// uses once all four flags are known.
func CheckInstanceState(instance *Resource) InstanceState {
	var state InstanceState
	checkInstanceStateInto(instance, &state)
	return state
}

func checkInstanceStateInto(r *Resource, state *InstanceState) {
	if *state == stateAll {
		return
	}

	if r.Variant != VariantPrimitive {
		for _, c := range r.Children {
			if *state == stateAll {
				return
			}
			checkInstanceStateInto(c, state)
		}
		if r.Contained != nil {
			checkInstanceStateInto(r.Contained, state)
		}
		return
	}

	// A primitive's own restarting bit depends only on its own actions,
	// never on a sibling's: accumulate locally and fold in once, so two
	// unrelated siblings (one starting, one stopping) never look like a
	// single restart.
	var local InstanceState
	if r.RunningOn.Size() > 0 {
		local |= StateActive
	}
	for _, a := range r.Actions {
		if a.Task == TaskStart && !a.Optional() && a.Runnable() {
			local |= StateStarting
		}
		if a.Task == TaskStop && !a.Optional() && (a.Runnable() || a.Pseudo()) {
			local |= StateStopping
		}
	}
	if local&StateStarting != 0 && local&StateStopping != 0 {
		local |= StateRestarting
	}
	*state |= local
}

func (s InstanceState) Starting() bool   { return s&StateStarting != 0 }
func (s InstanceState) Stopping() bool   { return s&StateStopping != 0 }
func (s InstanceState) Restarting() bool { return s&StateRestarting != 0 }
func (s InstanceState) Active() bool     { return s&StateActive != 0 }

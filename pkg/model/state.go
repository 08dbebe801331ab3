package model

// UnitStatus is the lifecycle state of a schedulable Unit as seen by a policy.
// Only READY units hold a share of the ticket axis.
type UnitStatus string

const (
	UnitStatusUnattached UnitStatus = "UNATTACHED"
	UnitStatusReady      UnitStatus = "READY"
	UnitStatusRunning    UnitStatus = "RUNNING"
	UnitStatusBlocked    UnitStatus = "BLOCKED"
	UnitStatusTerminated UnitStatus = "TERMINATED"
)

// String returns the string representation of the unit status.
func (s UnitStatus) String() string {
	return string(s)
}

// IsReady reports whether the unit may be drawn.
func (s UnitStatus) IsReady() bool {
	return s == UnitStatusReady
}

// IsTerminal returns true if the unit can never run again.
func (s UnitStatus) IsTerminal() bool {
	return s == UnitStatusTerminated
}

// ValidUnitTransitions defines the allowed state transitions for Units.
var ValidUnitTransitions = map[UnitStatus][]UnitStatus{
	UnitStatusUnattached: {UnitStatusReady},
	UnitStatusReady:      {UnitStatusRunning, UnitStatusBlocked, UnitStatusTerminated},
	UnitStatusRunning:    {UnitStatusReady, UnitStatusBlocked, UnitStatusTerminated},
	UnitStatusBlocked:    {UnitStatusReady, UnitStatusTerminated},
}

// CanTransitionTo returns true if moving from the current status to next is valid.
func (s UnitStatus) CanTransitionTo(next UnitStatus) bool {
	for _, allowed := range ValidUnitTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RunState represents the lifecycle state of a simulation Run.
type RunState string

const (
	RunStateRunning   RunState = "RUNNING"
	RunStateCompleted RunState = "COMPLETED"
	RunStateFailed    RunState = "FAILED"
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	return string(s)
}

// IsTerminal returns true if the run is in a final state.
func (s RunState) IsTerminal() bool {
	switch s {
	case RunStateCompleted, RunStateFailed:
		return true
	}
	return false
}

package model

import "testing"

func TestUnitStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   UnitStatus
		terminal bool
	}{
		{UnitStatusUnattached, false},
		{UnitStatusReady, false},
		{UnitStatusRunning, false},
		{UnitStatusBlocked, false},
		{UnitStatusTerminated, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("UnitStatus(%q).IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestUnitStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from  UnitStatus
		to    UnitStatus
		valid bool
	}{
		// Valid transitions
		{UnitStatusUnattached, UnitStatusReady, true},
		{UnitStatusReady, UnitStatusRunning, true},
		{UnitStatusReady, UnitStatusBlocked, true},
		{UnitStatusRunning, UnitStatusReady, true},
		{UnitStatusRunning, UnitStatusBlocked, true},
		{UnitStatusRunning, UnitStatusTerminated, true},
		{UnitStatusBlocked, UnitStatusReady, true},
		{UnitStatusBlocked, UnitStatusTerminated, true},

		// Invalid transitions
		{UnitStatusUnattached, UnitStatusRunning, false},
		{UnitStatusBlocked, UnitStatusRunning, false},
		{UnitStatusTerminated, UnitStatusReady, false},
		{UnitStatusTerminated, UnitStatusRunning, false},
		{UnitStatusReady, UnitStatusReady, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.valid {
			t.Errorf("UnitStatus(%q).CanTransitionTo(%q) = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestRunState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    RunState
		terminal bool
	}{
		{RunStateRunning, false},
		{RunStateCompleted, true},
		{RunStateFailed, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.terminal {
			t.Errorf("RunState(%q).IsTerminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

// Package policy defines the contract between the host scheduler and its
// pluggable scheduling policies.
package policy

import "github.com/me/lottsched/pkg/model"

// NameLen is the exact length of a policy identifier.
const NameLen = 4

// Policy is a pluggable scheduling algorithm.
type Policy interface {
	// Name returns the policy's fixed 4-character identifier.
	Name() string

	// InitParams attaches the policy's parameter block to a unit that is
	// being placed under this policy.
	InitParams(u *model.Unit, params any) error

	// NotifyStatusChange is called after the host changed u.Status.
	NotifyStatusChange(u *model.Unit)

	// Schedule returns the unit that should run next, or an error when no
	// unit can be selected.
	Schedule(units []*model.Unit) (*model.Unit, error)

	// ReleaseParams detaches u and returns the slot it was registered under.
	ReleaseParams(u *model.Unit) int
}

// SlotAware is implemented by policies that need to know their slot.
type SlotAware interface {
	SetSlot(slot int)
}

// TicketLender is implemented by policies that support ticket inheritance:
// a unit that waits on another can lend it its stake.
type TicketLender interface {
	// TransferTickets moves up to amount tickets from src to dst and returns
	// how many actually moved.
	TransferTickets(src, dst *model.Unit, amount int64) uint64
}

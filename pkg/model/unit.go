package model

// NoSlot marks a Unit that is not attached to any scheduling policy.
const NoSlot = -1

// Unit is a schedulable process owned by the host. Policies read and write
// Params but never create or destroy Units.
type Unit struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Status UnitStatus `json:"status"`
	Slot   int        `json:"slot"`

	// Params holds the policy-specific parameter block, e.g. *LotteryParams.
	Params any `json:"params,omitempty"`
}

// NewUnit returns an unattached Unit.
func NewUnit(id, name string) *Unit {
	return &Unit{
		ID:     id,
		Name:   name,
		Status: UnitStatusUnattached,
		Slot:   NoSlot,
	}
}

// LotteryParams are the lottery scheduling parameters of one Unit.
// [BeginInterval, EndInterval) is its share of the ticket axis; it is only
// meaningful while the unit is READY and the ledger is current.
type LotteryParams struct {
	NumTickets    uint64 `json:"num_tickets"`
	BeginInterval uint64 `json:"begin_interval"`
	EndInterval   uint64 `json:"end_interval"`
}

// Contains reports whether ticket falls inside the unit's interval.
func (p *LotteryParams) Contains(ticket uint64) bool {
	return ticket >= p.BeginInterval && ticket < p.EndInterval
}

// LotteryParamsOf returns the unit's lottery parameters, or nil if the unit
// carries none.
func LotteryParamsOf(u *Unit) *LotteryParams {
	if u == nil {
		return nil
	}
	p, _ := u.Params.(*LotteryParams)
	return p
}

package model

import "time"

// Run is one persisted simulation of a workload under a policy.
type Run struct {
	ID              string      `json:"id"`
	Workload        string      `json:"workload"`
	Policy          string      `json:"policy"`
	State           RunState    `json:"state"`
	Seed            int64       `json:"seed"`
	Quanta          int         `json:"quanta"`
	Draws           int         `json:"draws"`
	EmptyDraws      int         `json:"empty_draws"`
	Redistributions int         `json:"redistributions"`
	TicketsMoved    uint64      `json:"tickets_moved"`
	Error           string      `json:"error,omitempty"`
	Document        string      `json:"document,omitempty"`
	Units           []UnitStats `json:"units,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	CompletedAt     *time.Time  `json:"completed_at"`
}

// UnitStats summarises how one unit fared during a Run.
type UnitStats struct {
	Name          string     `json:"name"`
	Tickets       uint64     `json:"tickets"`
	Wins          int        `json:"wins"`
	ExpectedShare float64    `json:"expected_share"`
	ObservedShare float64    `json:"observed_share"`
	FinalStatus   UnitStatus `json:"final_status"`
}

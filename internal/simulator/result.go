package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/me/lottsched/internal/lottery"
	"github.com/me/lottsched/internal/logging"
	"github.com/me/lottsched/internal/policy"
	"github.com/me/lottsched/internal/workload"
	"github.com/me/lottsched/pkg/model"
)

// Result summarises the machine's run so far. Expected shares are computed
// from the tickets each unit was configured with; observed shares from the
// draws it won.
func (m *Machine) Result() *model.Run {
	stats := m.lottery.Stats()

	// Redistributions accumulate in the shared counter set; only add what
	// happened since the last report.
	if delta := stats.Redistributions - m.reportedRedistributions; delta > 0 {
		m.metrics.redistributions.Add(delta)
		m.reportedRedistributions = stats.Redistributions
	}

	run := &model.Run{
		Workload:        m.workload.Name,
		Policy:          m.policy.Name(),
		Seed:            m.seed,
		Quanta:          m.clock,
		Draws:           m.draws,
		EmptyDraws:      m.emptyDraws,
		Redistributions: stats.Redistributions,
		TicketsMoved:    stats.TicketsMoved,
	}

	total := m.workload.TotalTickets()
	for _, spec := range m.workload.Units {
		us := model.UnitStats{
			Name:        spec.Name,
			Tickets:     uint64(spec.Tickets),
			FinalStatus: model.UnitStatusUnattached,
		}
		if total > 0 {
			us.ExpectedShare = float64(spec.Tickets) / float64(total)
		}
		if p, ok := m.byName[spec.Name]; ok {
			us.Wins = p.wins
			us.FinalStatus = p.unit.Status
			if m.draws > 0 {
				us.ObservedShare = float64(p.wins) / float64(m.draws)
			}
		}
		run.Units = append(run.Units, us)
	}
	return run
}

// Record stamps the machine's result for storage. A run that ended early
// without an error was stopped, and is recorded as FAILED at the quantum it
// stopped on.
func (m *Machine) Record(created time.Time, runErr error) *model.Run {
	run := m.Result()
	switch {
	case runErr != nil:
		run.State = model.RunStateFailed
		run.Error = runErr.Error()
	case !m.Finished():
		run.State = model.RunStateFailed
		run.Error = fmt.Sprintf("stopped at quantum %d of %d", m.clock, m.quanta)
	default:
		run.State = model.RunStateCompleted
	}

	completed := time.Now().UTC()
	run.ID = "run_" + uuid.New().String()
	run.CreatedAt = created
	run.CompletedAt = &completed

	doc, err := m.workload.Marshal()
	if err != nil {
		m.logger.Warn("workload document not recorded", "run_id", run.ID, "error", err)
	} else {
		run.Document = string(doc)
	}
	return run
}

// Simulate boots a machine for w, runs it to completion and returns the
// record ready to be stored. A run that fails mid-way is still returned,
// in state FAILED, alongside the error.
func Simulate(ctx context.Context, w *workload.Workload, cfg Config, logger *slog.Logger) (*model.Run, error) {
	m, err := NewMachine(w, cfg, logger)
	if err != nil {
		return nil, err
	}

	created := time.Now().UTC()
	_, runErr := m.Run(ctx)
	return m.Record(created, runErr), runErr
}

// Policies returns the names of the policies a Machine registers, in slot
// order.
func Policies() []string {
	reg := policy.NewRegistry(logging.Discard())
	if _, err := reg.Register(lottery.New()); err != nil {
		panic(err)
	}
	return reg.Names()
}

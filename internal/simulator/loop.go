package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/me/lottsched/pkg/model"
)

// Tick runs one quantum.
func (m *Machine) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Finished() {
		return nil
	}

	// Phase 1: Spawn units arriving this quantum.
	if err := m.spawnArrivals(); err != nil {
		return fmt.Errorf("phase 1 (arrivals): %w", err)
	}

	// Phase 2: Wake blocked units.
	if err := m.wakeBlocked(); err != nil {
		return fmt.Errorf("phase 2 (wake): %w", err)
	}

	// Phase 3: Draw a winner and run it for one quantum.
	if err := m.dispatch(); err != nil {
		return fmt.Errorf("phase 3 (dispatch): %w", err)
	}

	m.clock++
	return nil
}

// Run ticks until the machine has used up its quanta.
func (m *Machine) Run(ctx context.Context) (*model.Run, error) {
	m.logger.Info("simulation started", "quanta", m.quanta, "seed", m.seed)
	for !m.Finished() {
		if err := m.Tick(ctx); err != nil {
			res := m.Result()
			res.State = model.RunStateFailed
			res.Error = err.Error()
			return res, err
		}
	}
	res := m.Result()
	res.State = model.RunStateCompleted
	m.logger.Info("simulation finished",
		"draws", res.Draws,
		"empty_draws", res.EmptyDraws,
		"redistributions", res.Redistributions,
	)
	return res, nil
}

// Start ticks once per TickInterval until the quanta run out. It blocks
// until then, until ctx is cancelled, or until Stop is called.
func (m *Machine) Start(ctx context.Context) error {
	defer close(m.doneCh)

	if m.interval <= 0 {
		_, err := m.Run(ctx)
		return err
	}

	m.logger.Info("simulation started", "quanta", m.quanta, "seed", m.seed, "tick_interval", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for !m.Finished() {
		select {
		case <-ctx.Done():
			m.logger.Info("simulation stopping (context cancelled)", "clock", m.clock)
			return ctx.Err()
		case <-m.stopCh:
			m.logger.Info("simulation stopping (stop called)", "clock", m.clock)
			return nil
		case <-ticker.C:
			if err := m.Tick(ctx); err != nil {
				return err
			}
		}
	}
	m.logger.Info("simulation finished", "clock", m.clock)
	return nil
}

// Stop halts Start and waits for the current tick to finish. It must only
// be called after Start.
func (m *Machine) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.doneCh
}

func (m *Machine) spawnArrivals() error {
	for _, spec := range m.workload.Units {
		if spec.Arrive != m.clock {
			continue
		}
		if _, err := m.Spawn(spec); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) wakeBlocked() error {
	for _, p := range m.procs {
		if p.unit.Status != model.UnitStatusBlocked {
			continue
		}
		if m.rng.Float64() >= p.spec.WakeChance {
			continue
		}
		m.reclaim(p)
		if err := m.SetStatus(p.unit, model.UnitStatusReady); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) dispatch() error {
	u, err := m.policy.Schedule(m.units)
	if errors.Is(err, model.ErrEmptyLottery) {
		m.emptyDraws++
		m.metrics.emptyDraws.Inc()
		m.logger.Debug("cpu idle", "clock", m.clock)
		return nil
	}
	if err != nil {
		return err
	}

	p := m.byName[u.Name]
	m.draws++
	p.wins++
	p.ran++
	m.metrics.draws.Inc()

	if err := m.SetStatus(u, model.UnitStatusRunning); err != nil {
		return err
	}
	m.logger.Debug("unit dispatched", "unit", u.Name, "clock", m.clock)

	// Quantum expired: the unit finishes, blocks, or is preempted.
	switch {
	case p.spec.Work > 0 && p.ran >= p.spec.Work:
		return m.terminate(p)
	case p.spec.BlockChance > 0 && m.rng.Float64() < p.spec.BlockChance:
		if err := m.SetStatus(u, model.UnitStatusBlocked); err != nil {
			return err
		}
		m.lend(p)
		return nil
	default:
		return m.SetStatus(u, model.UnitStatusReady)
	}
}

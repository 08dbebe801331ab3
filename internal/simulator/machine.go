// Package simulator is a single-CPU host that drives a scheduling policy the
// way a small kernel would: it spawns units, hands out quanta, and reports
// every status change to the policy.
package simulator

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"

	"github.com/me/lottsched/internal/lottery"
	"github.com/me/lottsched/internal/policy"
	"github.com/me/lottsched/internal/workload"
	"github.com/me/lottsched/pkg/model"
)

var (
	_ policy.Policy       = (*lottery.Lottery)(nil)
	_ policy.SlotAware    = (*lottery.Lottery)(nil)
	_ policy.TicketLender = (*lottery.Lottery)(nil)
)

// Config holds simulator configuration.
type Config struct {
	// Seed overrides the workload's seed when non-zero. If both are zero
	// the clock seeds the run.
	Seed int64

	// Quanta overrides the workload's quanta when non-zero.
	Quanta int

	// TickInterval paces Start. Zero runs Start unpaced. Run ignores it.
	TickInterval time.Duration

	// Metrics receives the machine's counters. A private set is used if nil.
	Metrics *vm.Set
}

// DefaultConfig returns sensible defaults: the workload's own seed and
// quanta, run as fast as the host allows.
func DefaultConfig() Config {
	return Config{}
}

// proc is the host's bookkeeping for one unit.
type proc struct {
	unit *model.Unit
	spec workload.UnitSpec
	ran  int
	wins int

	// lentTo is the unit currently holding this unit's tickets.
	lentTo *proc
	lent   uint64
}

// Machine is a simulated single-CPU host.
type Machine struct {
	workload *workload.Workload
	registry *policy.Registry
	policy   policy.Policy
	lottery  *lottery.Lottery
	seed     int64
	quanta   int
	interval time.Duration
	rng      *rand.Rand
	logger   *slog.Logger
	metrics  *machineMetrics

	procs  []*proc
	units  []*model.Unit
	byName map[string]*proc
	clock  int

	draws      int
	emptyDraws int

	reportedRedistributions int

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewMachine boots a host for w: it registers a fresh lottery policy and
// seeds the random sources. Units are spawned as the clock reaches their
// arrival quantum.
func NewMachine(w *workload.Workload, cfg Config, logger *slog.Logger) (*Machine, error) {
	if apiErr := workload.Validate(w); apiErr != nil {
		return nil, apiErr
	}

	seed := w.Seed
	if cfg.Seed != 0 {
		seed = cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	quanta := w.Quanta
	if cfg.Quanta > 0 {
		quanta = cfg.Quanta
	}
	set := cfg.Metrics
	if set == nil {
		set = vm.NewSet()
	}

	logger = logger.With("component", "simulator", "workload", w.Name)

	lot := lottery.New(
		lottery.WithSource(rand.New(rand.NewPCG(uint64(seed), 2))),
		lottery.WithLogger(logger),
	)
	reg := policy.NewRegistry(logger)
	if _, err := reg.Register(lot); err != nil {
		return nil, fmt.Errorf("register lottery policy: %w", err)
	}

	return &Machine{
		workload: w,
		registry: reg,
		policy:   lot,
		lottery:  lot,
		seed:     seed,
		quanta:   quanta,
		interval: cfg.TickInterval,
		rng:      rand.New(rand.NewPCG(uint64(seed), 1)),
		logger:   logger,
		metrics:  newMachineMetrics(set, lot.Name()),
		byName:   make(map[string]*proc),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Registry returns the policy registry the machine booted with.
func (m *Machine) Registry() *policy.Registry {
	return m.registry
}

// Units returns the process table in spawn order.
func (m *Machine) Units() []*model.Unit {
	return m.units
}

// Clock returns the number of quanta elapsed.
func (m *Machine) Clock() int {
	return m.clock
}

// Seed returns the seed the machine was booted with.
func (m *Machine) Seed() int64 {
	return m.seed
}

// Finished reports whether the machine has used up its quanta.
func (m *Machine) Finished() bool {
	return m.clock >= m.quanta
}

// Spawn attaches a new unit for spec and makes it ready.
func (m *Machine) Spawn(spec workload.UnitSpec) (*model.Unit, error) {
	if _, ok := m.byName[spec.Name]; ok {
		return nil, fmt.Errorf("unit %q already spawned", spec.Name)
	}

	u := model.NewUnit("unit_"+uuid.New().String(), spec.Name)
	if err := m.policy.InitParams(u, spec.Tickets); err != nil {
		return nil, fmt.Errorf("attach %s: %w", spec.Name, err)
	}

	p := &proc{unit: u, spec: spec}
	m.procs = append(m.procs, p)
	m.units = append(m.units, u)
	m.byName[spec.Name] = p

	if err := m.SetStatus(u, model.UnitStatusReady); err != nil {
		return nil, err
	}
	m.logger.Debug("unit spawned", "unit", spec.Name, "tickets", spec.Tickets, "clock", m.clock)
	return u, nil
}

// SetStatus moves u to status and tells u's policy about it.
func (m *Machine) SetStatus(u *model.Unit, status model.UnitStatus) error {
	if !u.Status.CanTransitionTo(status) {
		return &model.InvalidTransitionError{Unit: u.Name, From: u.Status, To: status}
	}
	u.Status = status

	p, err := m.registry.BySlot(u.Slot)
	if err != nil {
		return fmt.Errorf("notify %s: %w", u.Name, err)
	}
	p.NotifyStatusChange(u)
	return nil
}

// Detach releases u from its policy and returns the slot it held.
func (m *Machine) Detach(u *model.Unit) (int, error) {
	p, err := m.registry.BySlot(u.Slot)
	if err != nil {
		return model.NoSlot, fmt.Errorf("detach %s: %w", u.Name, err)
	}
	return p.ReleaseParams(u), nil
}

// lend hands all of p's tickets to the unit it waits on.
func (m *Machine) lend(p *proc) {
	holder, ok := m.byName[p.spec.WaitsOn]
	if !ok || holder.unit.Status.IsTerminal() {
		return
	}
	lender, ok := m.policy.(policy.TicketLender)
	if !ok {
		return
	}
	params := model.LotteryParamsOf(p.unit)
	if params == nil || params.NumTickets == 0 {
		return
	}

	moved := lender.TransferTickets(p.unit, holder.unit, int64(params.NumTickets))
	p.lentTo = holder
	p.lent = moved
	m.metrics.transfers.Inc()
	m.metrics.ticketsMoved.Add(int(moved))
	m.logger.Debug("tickets lent", "from", p.spec.Name, "to", holder.spec.Name, "tickets", moved)
}

// reclaim returns whatever p lent out. Tickets the holder has since lent
// onward are recalled down the chain, so every donor gets its full stake
// back whichever end of the chain wakes first.
func (m *Machine) reclaim(p *proc) {
	if p.lentTo == nil {
		return
	}
	lender, ok := m.policy.(policy.TicketLender)
	if !ok {
		return
	}

	holder := p.lentTo
	moved := m.recall(lender, holder, p, p.lent, len(m.procs))
	if moved > 0 {
		m.metrics.transfers.Inc()
		m.metrics.ticketsMoved.Add(int(moved))
	}
	m.logger.Debug("tickets reclaimed", "from", holder.spec.Name, "to", p.spec.Name, "tickets", moved, "lent", p.lent)

	p.lentTo = nil
	p.lent = 0
}

// recall moves up to need tickets from holder to dst. When holder is short
// because it has lent its own stake onward, the rest is pulled from its
// holder in turn and holder's outstanding loan shrinks by that much. depth
// bounds the walk when units wait on each other in a cycle.
func (m *Machine) recall(lender policy.TicketLender, holder, dst *proc, need uint64, depth int) uint64 {
	got := lender.TransferTickets(holder.unit, dst.unit, int64(need))
	if got >= need || depth <= 0 || holder.lentTo == nil || holder.lent == 0 || holder.lentTo == dst {
		return got
	}

	back := m.recall(lender, holder.lentTo, dst, min(need-got, holder.lent), depth-1)
	holder.lent -= back
	if holder.lent == 0 {
		holder.lentTo = nil
	}
	return got + back
}

// terminate finishes p, returns every loan it holds and detaches it.
func (m *Machine) terminate(p *proc) error {
	for _, donor := range m.procs {
		if donor.lentTo == p {
			m.reclaim(donor)
		}
	}
	if err := m.SetStatus(p.unit, model.UnitStatusTerminated); err != nil {
		return err
	}
	slot, err := m.Detach(p.unit)
	if err != nil {
		return err
	}
	m.logger.Debug("unit terminated", "unit", p.spec.Name, "slot", slot, "ran", p.ran, "clock", m.clock)
	return nil
}

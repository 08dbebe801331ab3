// Package lottery implements lottery scheduling: every ready unit holds a
// number of tickets, and the unit that runs next is the owner of a ticket
// drawn uniformly from all outstanding tickets.
package lottery

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/me/lottsched/internal/logging"
	"github.com/me/lottsched/pkg/model"
)

// Name is the policy identifier registered with the host.
const Name = "LOTT"

// Source draws uniform integers in [0, n). *rand.Rand satisfies it, so tests
// can inject a seeded generator.
type Source interface {
	Uint64N(n uint64) uint64
}

// globalSource draws from the process-wide math/rand/v2 generator.
type globalSource struct{}

func (globalSource) Uint64N(n uint64) uint64 { return rand.Uint64N(n) }

// Stats counts what the policy has done since it was created.
type Stats struct {
	Draws           int    `json:"draws"`
	EmptyDraws      int    `json:"empty_draws"`
	Redistributions int    `json:"redistributions"`
	Transfers       int    `json:"transfers"`
	TicketsMoved    uint64 `json:"tickets_moved"`
}

// Option configures a Lottery.
type Option func(*Lottery)

// WithSource sets the random source used for draws.
func WithSource(src Source) Option {
	return func(l *Lottery) {
		l.source = src
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lottery) {
		l.logger = logger
	}
}

// Lottery is the lottery scheduling policy. The host is expected to call it
// from one goroutine at a time; the mutex only keeps a draw atomic with
// respect to transfers and status changes when a host shares it across CPUs.
type Lottery struct {
	mu     sync.Mutex
	ledger ledger
	dirty  bool
	slot   int
	source Source
	logger *slog.Logger
	stats  Stats
}

// New creates a Lottery whose first draw builds the ledger from scratch.
func New(opts ...Option) *Lottery {
	l := &Lottery{
		ledger: newLedger(),
		dirty:  true,
		slot:   model.NoSlot,
		source: globalSource{},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "lottery")
	return l
}

// Name returns the 4-character policy identifier.
func (l *Lottery) Name() string {
	return Name
}

// SetSlot records the policy slot the host registered this instance under.
func (l *Lottery) SetSlot(slot int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slot = slot
}

// Slot returns the policy slot, or model.NoSlot if unregistered.
func (l *Lottery) Slot() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slot
}

// InitParams attaches lottery parameters to u and, if u is READY, registers
// it into the ledger. params may be a *model.LotteryParams, a model.LotteryParams, or a
// plain ticket count.
func (l *Lottery) InitParams(u *model.Unit, params any) error {
	p, err := toParams(params)
	if err != nil {
		return fmt.Errorf("unit %s: %w", u.Name, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	u.Params = p
	u.Slot = l.slot
	// A unit that is not ready yet joins the axis on its READY notification.
	switch {
	case !u.Status.IsReady():
	case l.ledger.holds(u):
		l.markStale()
	default:
		l.ledger.register(u, p)
	}

	l.logger.Debug("unit attached", "unit", u.Name, "tickets", p.NumTickets)
	return nil
}

func toParams(params any) (*model.LotteryParams, error) {
	switch v := params.(type) {
	case *model.LotteryParams:
		if v == nil {
			return nil, model.ErrInvalidParams
		}
		return v, nil
	case model.LotteryParams:
		return &v, nil
	case uint64:
		return &model.LotteryParams{NumTickets: v}, nil
	case uint:
		return &model.LotteryParams{NumTickets: uint64(v)}, nil
	case int:
		if v < 0 {
			return nil, fmt.Errorf("%w: negative ticket count %d", model.ErrInvalidParams, v)
		}
		return &model.LotteryParams{NumTickets: uint64(v)}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", model.ErrInvalidParams, params)
	}
}

// ReleaseParams detaches u from the policy and returns the slot it was
// registered under so the host can reassign it.
func (l *Lottery) ReleaseParams(u *model.Unit) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot := u.Slot
	u.Params = nil
	u.Slot = model.NoSlot
	l.markStale()

	l.logger.Debug("unit released", "unit", u.Name, "slot", slot)
	return slot
}

// NotifyStatusChange keeps the ledger in step with u's new status. A unit
// that became READY is appended to the axis at once; any other status leaves
// a hole that the next draw's rebuild reclaims.
func (l *Lottery) NotifyStatusChange(u *model.Unit) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.manages(u) {
		return
	}
	if !u.Status.IsReady() {
		l.markStale()
		return
	}
	// A second interval for the same unit would orphan its first one.
	if l.ledger.holds(u) {
		l.markStale()
		return
	}
	l.ledger.register(u, model.LotteryParamsOf(u))
}

// Schedule picks the unit that runs next. It returns model.ErrEmptyLottery
// when no ready unit holds tickets, model.ErrTicketOverflow when their
// tickets do not fit the axis, and an *model.InvariantViolationError if the
// winning ticket has no owner.
//
// units must keep the same order for the duration of the call.
func (l *Lottery) Schedule(units []*model.Unit) (*model.Unit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.redistributeIfStale(units)

	if l.ledger.overflowed {
		l.logger.Error("ticket total overflows", "total_tickets", l.ledger.total, "ready", len(l.ledger.entries))
		return nil, model.ErrTicketOverflow
	}
	if l.ledger.total == 0 {
		l.stats.EmptyDraws++
		return nil, model.ErrEmptyLottery
	}

	ticket := l.source.Uint64N(l.ledger.total)
	l.stats.Draws++

	winner, ok := l.ledger.resolve(ticket)
	if !ok {
		l.logger.Error("winning ticket has no owner", "ticket", ticket, "total_tickets", l.ledger.total)
		return nil, &model.InvariantViolationError{Ticket: ticket, Total: l.ledger.total}
	}
	return winner, nil
}

// TransferTickets moves up to amount tickets from src to dst and returns the
// number actually moved, which is capped by what src holds. A non-positive
// amount moves nothing. A transfer to oneself changes nothing and reports what
// would have moved.
func (l *Lottery) TransferTickets(src, dst *model.Unit, amount int64) uint64 {
	if amount <= 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	from := model.LotteryParamsOf(src)
	to := model.LotteryParamsOf(dst)
	if from == nil || to == nil {
		return 0
	}

	actual := min(uint64(amount), from.NumTickets)
	if src == dst || actual == 0 {
		return actual
	}

	from.NumTickets -= actual
	to.NumTickets += actual
	l.markStale()

	l.stats.Transfers++
	l.stats.TicketsMoved += actual
	l.logger.Debug("tickets transferred", "from", src.Name, "to", dst.Name, "tickets", actual)
	return actual
}

// TotalTickets returns the size of the ticket axis as of the last
// registration. It may be out of date while Stale reports true.
func (l *Lottery) TotalTickets() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ledger.total
}

// Stale reports whether the next draw will rebuild the ledger.
func (l *Lottery) Stale() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

// Stats returns a snapshot of the policy's counters.
func (l *Lottery) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

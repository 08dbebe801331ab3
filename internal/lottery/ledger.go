package lottery

import (
	"math"
	"sort"

	"github.com/me/lottsched/pkg/model"
)

// entry is one unit's share of the ticket axis, in registration order.
type entry struct {
	unit   *model.Unit
	params *model.LotteryParams
}

// ledger maps ready units to disjoint half-open intervals of [0, total).
// Entries are appended in order, so their begin offsets never decrease.
type ledger struct {
	total   uint64
	entries []entry
	members map[*model.Unit]struct{}

	// overflowed is set when a registration was refused because it would
	// have wrapped total. It stays set until the next reset.
	overflowed bool
}

func newLedger() ledger {
	return ledger{members: make(map[*model.Unit]struct{})}
}

// register appends [total, total+NumTickets) for u and advances total.
// Zero-ticket units get an empty interval. A unit whose tickets would wrap
// total is refused, and the ledger is flagged as overflowed.
func (l *ledger) register(u *model.Unit, p *model.LotteryParams) bool {
	if p.NumTickets > math.MaxUint64-l.total {
		l.overflowed = true
		return false
	}
	p.BeginInterval = l.total
	l.total += p.NumTickets
	p.EndInterval = l.total

	l.entries = append(l.entries, entry{unit: u, params: p})
	l.members[u] = struct{}{}
	return true
}

// reset empties the axis ahead of a full rebuild.
func (l *ledger) reset() {
	l.total = 0
	clear(l.entries)
	l.entries = l.entries[:0]
	clear(l.members)
	l.overflowed = false
}

// holds reports whether u has an interval in the current axis.
func (l *ledger) holds(u *model.Unit) bool {
	_, ok := l.members[u]
	return ok
}

// resolve returns the ready unit whose interval contains ticket.
// The first entry whose end exceeds ticket is the owner: every earlier entry
// ends at or before ticket, so this entry begins at or before it too.
func (l *ledger) resolve(ticket uint64) (*model.Unit, bool) {
	i := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].params.EndInterval > ticket
	})
	if i == len(l.entries) {
		return nil, false
	}
	e := l.entries[i]
	if !e.params.Contains(ticket) || !e.unit.Status.IsReady() {
		return nil, false
	}
	return e.unit, true
}

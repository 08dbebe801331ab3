package lottery

import "github.com/me/lottsched/pkg/model"

// markStale flags the ledger for a full rebuild before the next draw.
func (l *Lottery) markStale() {
	l.dirty = true
}

// redistributeIfStale rebuilds the ledger from every READY unit this policy
// manages, in list order. It is a no-op while the ledger is current.
func (l *Lottery) redistributeIfStale(units []*model.Unit) {
	if !l.dirty {
		return
	}

	l.ledger.reset()
	for _, u := range units {
		if !u.Status.IsReady() || !l.manages(u) {
			continue
		}
		l.ledger.register(u, model.LotteryParamsOf(u))
	}
	l.dirty = false
	l.stats.Redistributions++

	l.logger.Debug("tickets redistributed",
		"ready", len(l.ledger.entries),
		"total_tickets", l.ledger.total,
	)
}

// manages reports whether u is attached to this policy instance.
func (l *Lottery) manages(u *model.Unit) bool {
	return u.Slot == l.slot && model.LotteryParamsOf(u) != nil
}

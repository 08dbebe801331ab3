package simulator

import (
	"fmt"

	vm "github.com/VictoriaMetrics/metrics"
)

// machineMetrics are the counters a Machine reports. Counters live in a
// shared set so several runs can accumulate into one exposition.
type machineMetrics struct {
	draws           *vm.Counter
	emptyDraws      *vm.Counter
	redistributions *vm.Counter
	transfers       *vm.Counter
	ticketsMoved    *vm.Counter
}

func newMachineMetrics(set *vm.Set, policy string) *machineMetrics {
	name := func(metric string) string {
		return fmt.Sprintf(`lottsched_%s{policy=%q}`, metric, policy)
	}
	return &machineMetrics{
		draws:           set.GetOrCreateCounter(name("draws_total")),
		emptyDraws:      set.GetOrCreateCounter(name("empty_draws_total")),
		redistributions: set.GetOrCreateCounter(name("redistributions_total")),
		transfers:       set.GetOrCreateCounter(name("ticket_transfers_total")),
		ticketsMoved:    set.GetOrCreateCounter(name("tickets_moved_total")),
	}
}

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/me/lottsched/pkg/model"
)

// printRun writes a run summary and its share table.
func printRun(w io.Writer, run *model.Run) {
	fmt.Fprintf(w, "Run:       %s\n", run.ID)
	fmt.Fprintf(w, "  Workload:  %s (policy %s, seed %d)\n", run.Workload, run.Policy, run.Seed)
	fmt.Fprintf(w, "  State:     %s\n", run.State)
	fmt.Fprintf(w, "  Quanta:    %s (%s draws, %s idle)\n",
		humanize.Comma(int64(run.Quanta)), humanize.Comma(int64(run.Draws)), humanize.Comma(int64(run.EmptyDraws)))
	fmt.Fprintf(w, "  Rebuilds:  %s\n", humanize.Comma(int64(run.Redistributions)))
	if run.TicketsMoved > 0 {
		fmt.Fprintf(w, "  Lent:      %s tickets\n", humanize.Comma(int64(run.TicketsMoved)))
	}
	if run.Error != "" {
		fmt.Fprintf(w, "  Error:     %s\n", run.Error)
	}
	if !run.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  Created:   %s\n", humanize.Time(run.CreatedAt))
	}
	if run.CompletedAt != nil {
		fmt.Fprintf(w, "  Took:      %s\n", run.CompletedAt.Sub(run.CreatedAt).Round(time.Millisecond))
	}

	if len(run.Units) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-20s  %10s  %10s  %8s  %8s  %s\n", "UNIT", "TICKETS", "WINS", "EXPECTED", "OBSERVED", "STATUS")
	fmt.Fprintf(w, "%-20s  %10s  %10s  %8s  %8s  %s\n", "----", "-------", "----", "--------", "--------", "------")
	for _, us := range run.Units {
		fmt.Fprintf(w, "%-20s  %10s  %10s  %7.2f%%  %7.2f%%  %s\n",
			us.Name,
			humanize.Comma(int64(us.Tickets)),
			humanize.Comma(int64(us.Wins)),
			us.ExpectedShare*100,
			us.ObservedShare*100,
			us.FinalStatus,
		)
	}
}

// printRunList writes one line per run.
func printRunList(w io.Writer, runs []model.Run, pg *model.Pagination) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}

	fmt.Fprintf(w, "%-40s  %-10s  %-20s  %10s  %s\n", "ID", "STATE", "WORKLOAD", "QUANTA", "CREATED")
	fmt.Fprintf(w, "%-40s  %-10s  %-20s  %10s  %s\n", "----", "-----", "--------", "------", "-------")
	for _, run := range runs {
		fmt.Fprintf(w, "%-40s  %-10s  %-20s  %10s  %s\n",
			run.ID, run.State, run.Workload, humanize.Comma(int64(run.Quanta)), humanize.Time(run.CreatedAt))
	}

	if pg != nil && pg.HasMore {
		fmt.Fprintf(w, "\n(%d of %d shown)\n", len(runs), pg.Total)
	}
}

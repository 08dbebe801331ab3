package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/lottsched/internal/config"
	"github.com/me/lottsched/internal/simulator"
	"github.com/me/lottsched/internal/store"
	"github.com/me/lottsched/internal/workload"
	"github.com/me/lottsched/pkg/model"
)

func newRunCmd() *cobra.Command {
	var (
		seed   int64
		quanta int
		dbPath string
		save   bool
		tick   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <workload.yaml>",
		Short: "Simulate a workload locally",
		Long: `Simulate a workload on a local single-CPU machine under the lottery
scheduler and print each unit's expected and observed share.

With --tick the machine runs one quantum per interval instead of as fast
as it can. Interrupting a paced run stops it and reports the quanta run so
far.

With --save the run is stored in the local database (see --db).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := workload.ParseFile(args[0])
			if err != nil {
				return err
			}

			cfg := simulator.DefaultConfig()
			cfg.Seed = seed
			cfg.Quanta = quanta
			cfg.TickInterval = tick

			var (
				run    *model.Run
				runErr error
			)
			if tick > 0 {
				run, runErr = runPaced(cmd, w, cfg)
			} else {
				run, runErr = simulator.Simulate(cmd.Context(), w, cfg, logger)
			}
			if run == nil {
				return runErr
			}

			if save {
				path, err := config.ResolveDBPath(dbPath)
				if err != nil {
					return err
				}
				st, err := store.NewSQLiteStore(path, logger)
				if err != nil {
					return err
				}
				defer st.Close()

				// An interrupted run is still saved.
				ctx := context.WithoutCancel(cmd.Context())
				if err := st.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate database: %w", err)
				}
				if err := st.CreateRun(ctx, run); err != nil {
					return fmt.Errorf("save run: %w", err)
				}
			}

			printRun(cmd.OutOrStdout(), run)
			return runErr
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (overrides the workload's)")
	cmd.Flags().IntVar(&quanta, "quanta", 0, "Number of quanta to simulate (overrides the workload's)")
	cmd.Flags().DurationVar(&tick, "tick", 0, "Wall-clock time per quantum (0 runs unpaced)")
	cmd.Flags().BoolVar(&save, "save", false, "Store the run in the local database")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path for --save (default ~/.lottsim/lottsim.db)")

	return cmd
}

// runPaced ticks the machine in the background until it finishes or the
// command's context is cancelled, in which case the machine is stopped
// after its current quantum.
func runPaced(cmd *cobra.Command, w *workload.Workload, cfg simulator.Config) (*model.Run, error) {
	m, err := simulator.NewMachine(w, cfg, logger)
	if err != nil {
		return nil, err
	}

	created := time.Now().UTC()
	done := make(chan error, 1)
	go func() { done <- m.Start(context.Background()) }()

	select {
	case err = <-done:
	case <-cmd.Context().Done():
		m.Stop()
		err = <-done
		fmt.Fprintf(cmd.ErrOrStderr(), "Interrupted after %d quanta.\n", m.Clock())
	}
	return m.Record(created, err), err
}

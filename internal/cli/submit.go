package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/me/lottsched/internal/workload"
	"github.com/me/lottsched/pkg/model"
)

func newSubmitCmd() *cobra.Command {
	var (
		seed   int64
		quanta int
	)

	cmd := &cobra.Command{
		Use:   "submit <workload.yaml>",
		Short: "Run a workload on the server and store the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read workload: %w", err)
			}
			// Catch syntax errors before the round trip.
			if _, err := workload.Parse(doc); err != nil {
				return err
			}

			q := url.Values{}
			if seed != 0 {
				q.Set("seed", strconv.FormatInt(seed, 10))
			}
			if quanta > 0 {
				q.Set("quanta", strconv.Itoa(quanta))
			}
			path := "/api/v1/runs/"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			resp, err := client.PostWorkload(path, doc)
			if err != nil {
				return fmt.Errorf("submit workload: %w", err)
			}

			var run model.Run
			if err := json.Unmarshal(resp.Data, &run); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			printRun(cmd.OutOrStdout(), &run)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (overrides the workload's)")
	cmd.Flags().IntVar(&quanta, "quanta", 0, "Number of quanta to simulate (overrides the workload's)")

	return cmd
}

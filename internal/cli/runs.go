package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/me/lottsched/pkg/model"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect runs stored on the server",
	}
	cmd.AddCommand(newRunsListCmd(), newRunsShowCmd(), newRunsDeleteCmd())
	return cmd
}

func newRunsListCmd() *cobra.Command {
	var (
		workloadName string
		state        string
		limit        int
		offset       int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if workloadName != "" {
				q.Set("workload", workloadName)
			}
			if state != "" {
				q.Set("state", state)
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				q.Set("offset", strconv.Itoa(offset))
			}
			path := "/api/v1/runs/"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			var runs []model.Run
			if err := json.Unmarshal(resp.Data, &runs); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			printRunList(cmd.OutOrStdout(), runs, resp.Pagination)
			return nil
		},
	}

	cmd.Flags().StringVar(&workloadName, "workload", "", "Only runs of this workload")
	cmd.Flags().StringVar(&state, "state", "", "Only runs in this state (RUNNING, COMPLETED, FAILED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (default 20, max 100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of runs to skip")

	return cmd
}

func newRunsShowCmd() *cobra.Command {
	var showDocument bool

	cmd := &cobra.Command{
		Use:   "show <run_id>",
		Short: "Show a run's share table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/runs/" + url.PathEscape(args[0]))
			if err != nil {
				return fmt.Errorf("get run: %w", err)
			}

			var run model.Run
			if err := json.Unmarshal(resp.Data, &run); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			out := cmd.OutOrStdout()
			printRun(out, &run)
			if showDocument && run.Document != "" {
				fmt.Fprintf(out, "\n%s", run.Document)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDocument, "document", false, "Also print the workload the run was started with")
	return cmd
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run_id>",
		Short: "Delete a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/runs/" + url.PathEscape(args[0])); err != nil {
				return fmt.Errorf("delete run: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run deleted: %s\n", args[0])
			return nil
		},
	}
}

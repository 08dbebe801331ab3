package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/lottsched/internal/simulator"
)

func newPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List the scheduling policies a simulated machine registers",
		RunE: func(cmd *cobra.Command, args []string) error {
			for slot, name := range simulator.Policies() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d  %s\n", slot, name)
			}
			return nil
		},
	}
}

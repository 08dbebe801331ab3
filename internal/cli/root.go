package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/lottsched/internal/logging"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking LOTTSIM_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("LOTTSIM_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the lottsim CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lottsim",
		Short: "lottsim: lottery scheduling simulator",
		Long:  "lottsim runs workloads under the lottery scheduler, locally or on a lottsched server, and reports each unit's share of the CPU.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagDebug {
				flagLogLevel = "debug"
			}
			var err error
			logger, err = logging.Setup(flagLogLevel, flagLogFormat)
			if err != nil {
				return err
			}
			client = NewClient(flagServer, logger)
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "lottsched server URL (or LOTTSIM_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newSubmitCmd(),
		newRunsCmd(),
		newPoliciesCmd(),
	)

	return root
}

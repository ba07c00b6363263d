// internal/commands/results.go
package labelhub

import (
	"github.com/spf13/cobra"

	"github.com/boxworks/labelhub/internal/hub"
)

// resultsCmd implements 'results', which prints one job's full results.
var resultsCmd = &cobra.Command{
	Use:   "results <job-id>",
	Short: "Show a job's summary and per-image results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.ShowResults(cmd.Context(), GetConfig(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}

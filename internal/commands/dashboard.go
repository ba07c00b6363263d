// internal/commands/dashboard.go
package labelhub

import (
	"github.com/spf13/cobra"

	"github.com/boxworks/labelhub/internal/hub"
)

// dashboardCmd implements 'dashboard', which aggregates recent summaries.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show aggregate accuracy across recent runs",
	Long:  `The 'dashboard' command aggregates the recent job summaries: unweighted overall means, per-engine means ranked by exact match, and per-field means weighted by sample count. Summaries whose job has been deleted are excluded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.ShowDashboard(cmd.Context(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

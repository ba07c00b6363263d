// internal/commands/watch.go
package labelhub

import (
	"github.com/spf13/cobra"

	"github.com/boxworks/labelhub/internal/tui"
)

// watchCmd implements 'watch', the interactive live jobs view.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch inference jobs live",
	Long:  `The 'watch' command opens an interactive table of inference jobs, refreshed on the polling cadence until no tracked job is pending or running. Press r to re-poll, q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.StartWatch(cmd.Context(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

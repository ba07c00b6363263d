// internal/commands/health.go
package labelhub

import (
	"github.com/spf13/cobra"

	"github.com/boxworks/labelhub/internal/hub"
)

// healthCmd implements 'health', which checks the inference backend.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the inference backend",
	Long:  `The 'health' command calls the backend's health endpoint and reports whether it and its storage layer are up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.Health(cmd.Context(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// internal/commands/engines.go
package labelhub

import (
	"github.com/spf13/cobra"

	"github.com/boxworks/labelhub/internal/hub"
)

// enginesCmd implements 'engines', which lists the OCR engines and
// preprocessing variants the backend implements.
var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List OCR engines and preprocessing options",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.ListEngines(cmd.Context(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}

// internal/commands/export.go
package labelhub

import (
	"github.com/spf13/cobra"

	"github.com/boxworks/labelhub/internal/hub"
)

var exportOut string

// exportCmd implements 'export', which writes recent summaries to XLSX.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recent job summaries to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.ExportSummaries(cmd.Context(), GetConfig(), exportOut)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "summaries.xlsx", "output file path")
	rootCmd.AddCommand(exportCmd)
}

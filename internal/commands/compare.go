// internal/commands/compare.go
package labelhub

import (
	"github.com/spf13/cobra"

	"github.com/boxworks/labelhub/internal/hub"
)

var (
	compareEngine  string
	compareVersion string
	compareDataset string
	compareOptions []string
)

// compareCmd implements 'compare', which runs one job per preprocessing
// variant and ranks the results by exact-match rate.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare preprocessing variants on one engine",
	Long:  `The 'compare' command starts one inference job per preprocessing variant, polls them together until every job finishes, and prints the variants ranked by overall exact-match rate. At least two variants are required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.Compare(cmd.Context(), GetConfig(), compareEngine, compareVersion, compareDataset, compareOptions)
	},
}

func init() {
	compareCmd.Flags().StringVarP(&compareEngine, "engine", "e", "easyocr", "OCR engine (easyocr, paddleocr)")
	compareCmd.Flags().StringVarP(&compareVersion, "dataset-version", "v", "", "dataset version to run against")
	compareCmd.Flags().StringVarP(&compareDataset, "dataset-name", "n", "default", "dataset name within the version")
	compareCmd.Flags().StringSliceVarP(&compareOptions, "options", "o", nil, "preprocessing variants to compare (comma separated)")
	_ = compareCmd.MarkFlagRequired("dataset-version")
	_ = compareCmd.MarkFlagRequired("options")
	rootCmd.AddCommand(compareCmd)
}

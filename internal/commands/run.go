// internal/commands/run.go
package labelhub

import (
	"github.com/spf13/cobra"

	"github.com/boxworks/labelhub/internal/hub"
)

var (
	runEngine        string
	runVersion       string
	runDataset       string
	runPreprocessing string
	runFollow        bool
)

// runCmd implements 'run', which starts a single inference job.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an inference job",
	Long:  `The 'run' command starts one inference job for an engine, dataset version, and preprocessing variant. With --follow it polls the job to completion and prints the accuracy summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.Run(cmd.Context(), GetConfig(), runEngine, runVersion, runDataset, runPreprocessing, runFollow)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runEngine, "engine", "e", "easyocr", "OCR engine (easyocr, paddleocr, smolvlm2)")
	runCmd.Flags().StringVarP(&runVersion, "dataset-version", "v", "", "dataset version to run against")
	runCmd.Flags().StringVarP(&runDataset, "dataset-name", "n", "default", "dataset name within the version")
	runCmd.Flags().StringVarP(&runPreprocessing, "preprocessing", "p", "none", "preprocessing variant")
	runCmd.Flags().BoolVarP(&runFollow, "follow", "f", false, "poll the job to completion and print its summary")
	_ = runCmd.MarkFlagRequired("dataset-version")
	rootCmd.AddCommand(runCmd)
}

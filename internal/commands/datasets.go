// internal/commands/datasets.go
package labelhub

import (
	"github.com/spf13/cobra"

	"github.com/boxworks/labelhub/internal/hub"
)

var datasetsFromBucket bool

// datasetsCmd implements 'datasets', which lists the dataset versions the
// backend can run inference against, or the raw bucket contents.
var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List available dataset versions",
	Long:  `The 'datasets' command lists the dataset versions known to the inference backend, including image counts and ground-truth availability. With --bucket it lists the object-storage prefixes instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if datasetsFromBucket {
			return hub.ListBucket(cmd.Context(), GetConfig())
		}
		return hub.ListDatasets(cmd.Context(), GetConfig())
	},
}

func init() {
	datasetsCmd.Flags().BoolVar(&datasetsFromBucket, "bucket", false, "list object-storage prefixes instead of backend datasets")
	rootCmd.AddCommand(datasetsCmd)
}

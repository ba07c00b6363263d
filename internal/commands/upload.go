// internal/commands/upload.go
package labelhub

import (
	"github.com/spf13/cobra"

	"github.com/boxworks/labelhub/internal/hub"
)

// uploadCmd implements 'upload', which moves a labeled dataset from object
// storage into the annotation platform.
var uploadCmd = &cobra.Command{
	Use:   "upload <version> <dataset>",
	Short: "Upload a labeled dataset to the annotation platform",
	Long:  `The 'upload' command reads a dataset's COCO manifest and images from object storage, converts each image's annotations to YOLO format, and uploads both to the configured annotation project.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.UploadDataset(cmd.Context(), GetConfig(), args[0], args[1])
	},
}

// uploadProjectsCmd implements 'upload projects', which lists the projects
// in the configured annotation workspace.
var uploadProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List annotation projects in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.ListProjects(cmd.Context(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.AddCommand(uploadProjectsCmd)
}

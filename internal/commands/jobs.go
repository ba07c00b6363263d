// internal/commands/jobs.go
package labelhub

import (
	"github.com/spf13/cobra"

	"github.com/boxworks/labelhub/internal/hub"
)

// jobsCmd represents the 'jobs' command group for job management.
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Group commands for managing inference jobs",
	Long:  `The 'jobs' command groups subcommands that list and delete inference jobs on the backend.`,
}

// jobsListCmd implements 'jobs list', which prints the backend's job table.
var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inference jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.ListJobs(cmd.Context(), GetConfig())
	},
}

// jobsDeleteCmd implements 'jobs delete', which removes one or more jobs.
var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>...",
	Short: "Delete inference jobs by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.DeleteJobs(cmd.Context(), GetConfig(), args)
	},
}

// jobsPruneCmd implements 'jobs prune', which removes every finished job.
var jobsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all completed, failed, and cancelled jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hub.PruneJobs(cmd.Context(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsDeleteCmd)
	jobsCmd.AddCommand(jobsPruneCmd)
}

// internal/commands/show.go
package labelhub

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/boxworks/labelhub/internal/appconfig"
)

// showCmd represents the 'show' command group for displaying information.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying information",
	Long:  `The 'show' command groups subcommands that display configuration or state related to labelhub.`,
}

// showConfigCmd implements 'show config', which displays the resolved
// configuration. With debug enabled it dumps the full struct.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON config is loaded properly and overridden by flags and environment accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := GetConfig()
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), cfg)
		if DebugEnabled() {
			pp.Println(cfg)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showConfigCmd)
}

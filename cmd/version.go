package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mvas-it/m365ops/internal/message"
	"github.com/mvas-it/m365ops/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of m365ops",
	Run: func(cmd *cobra.Command, args []string) {
		message.Info("%s", version.FullVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

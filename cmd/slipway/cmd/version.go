package cmd

import (
	"github.com/slipway/slipway/internal/constants"
	"github.com/slipway/slipway/internal/output"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of the CLI",
	Run: func(cmd *cobra.Command, args []string) {
		output.KeyValue("Version", *constants.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

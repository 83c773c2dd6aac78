package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/slipway/slipway/internal/constants"
	"github.com/slipway/slipway/internal/output"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show what an up would change without applying it",
	RunE:  previewRun,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func previewRun(cmd *cobra.Command, _ []string) error {
	eng, cfg, err := newEngine()
	if err != nil {
		return err
	}

	output.Header(constants.CLIName + " preview")
	output.KeyValue("Project", cfg.ProjectName)
	output.KeyValue("Stack", eng.StackName())
	warnMissingCredentials(cfg)
	output.Blank()

	result, err := eng.Preview(cmd.Context())
	if err != nil {
		return fmt.Errorf("stack preview failed: %w", err)
	}

	output.Blank()
	output.Success("preview complete")
	for _, op := range slices.Sorted(maps.Keys(result.ChangeSummary)) {
		output.KeyValue(string(op), strconv.Itoa(result.ChangeSummary[op]))
	}
	return nil
}

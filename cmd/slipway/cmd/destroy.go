package cmd

import (
	"errors"
	"fmt"

	"github.com/slipway/slipway/internal/constants"
	"github.com/slipway/slipway/internal/output"

	"github.com/spf13/cobra"
)

var destroyYes bool

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete every resource in the stack",
	RunE:  destroyRun,
}

func init() {
	rootCmd.AddCommand(destroyCmd)
	destroyCmd.Flags().BoolVar(&destroyYes, "yes", false, "Skip the confirmation requirement")
}

func destroyRun(cmd *cobra.Command, _ []string) error {
	if !destroyYes {
		return errors.New("destroy is irreversible; re-run with --yes to confirm")
	}

	eng, cfg, err := newEngine()
	if err != nil {
		return err
	}

	output.Header(constants.CLIName + " destroy")
	output.KeyValue("Project", cfg.ProjectName)
	output.KeyValue("Stack", eng.StackName())
	output.Blank()

	if _, err := eng.Destroy(cmd.Context()); err != nil {
		return fmt.Errorf("stack destroy failed: %w", err)
	}

	output.Blank()
	output.Success("stack %s destroyed", eng.StackName())
	return nil
}

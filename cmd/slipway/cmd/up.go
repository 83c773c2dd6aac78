package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/slipway/slipway/internal/constants"
	"github.com/slipway/slipway/internal/output"
	"github.com/slipway/slipway/internal/secrets"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/spf13/cobra"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update the stack",
	Long: `Create or update every resource the stack declares: the network with its
public subnet, the compute instance, the delivery pipeline, and the
deployment group. The Pulumi engine computes and applies the difference
against the stack's current state.`,
	RunE: upRun,
}

func init() {
	rootCmd.AddCommand(upCmd)
}

func upRun(cmd *cobra.Command, _ []string) error {
	eng, cfg, err := newEngine()
	if err != nil {
		return err
	}

	output.Header(constants.CLIName + " up")
	output.KeyValue("Project", cfg.ProjectName)
	output.KeyValue("Stack", eng.StackName())
	warnMissingCredentials(cfg)
	output.Blank()

	result, err := eng.Up(cmd.Context())
	if err != nil {
		return fmt.Errorf("stack update failed: %w", err)
	}

	output.Blank()
	output.Success("stack %s updated", eng.StackName())
	printOutputMap(result.Outputs)
	return nil
}

// printOutputMap prints stack outputs in a stable order, masking secrets.
func printOutputMap(outputs auto.OutputMap) {
	for _, key := range slices.Sorted(maps.Keys(outputs)) {
		value := outputs[key]
		if value.Secret || secrets.Sensitive(key) {
			output.KeyValue(key, "[secret]")
			continue
		}
		output.KeyValue(key, fmt.Sprintf("%v", value.Value))
	}
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/slipway/slipway/internal/output"
	"github.com/slipway/slipway/internal/secrets"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var outputsFormat string

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "Show the stack's output values",
	Long: `Show the stack's declared outputs: the instance id, the instance public
address, and the deployment region. Secret outputs are masked.`,
	RunE: outputsRun,
}

func init() {
	rootCmd.AddCommand(outputsCmd)
	outputsCmd.Flags().StringVarP(&outputsFormat, "output", "o", "text", "Output format: text, json or yaml")
}

func outputsRun(cmd *cobra.Command, _ []string) error {
	eng, _, err := newEngine()
	if err != nil {
		return err
	}

	outputs, err := eng.Outputs(cmd.Context())
	if err != nil {
		return err
	}

	return renderOutputs(outputs, outputsFormat)
}

func renderOutputs(outputs auto.OutputMap, format string) error {
	switch format {
	case "text":
		printOutputMap(outputs)
	case "json":
		encoder := json.NewEncoder(output.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(plainValues(outputs)); err != nil {
			return fmt.Errorf("error encoding outputs: %w", err)
		}
	case "yaml":
		data, err := yaml.Marshal(plainValues(outputs))
		if err != nil {
			return fmt.Errorf("error encoding outputs: %w", err)
		}
		output.Printf("%s", data)
	default:
		return fmt.Errorf("unsupported output format %q (use text, json or yaml)", format)
	}
	return nil
}

// plainValues flattens an output map to plain values, masking secrets.
func plainValues(outputs auto.OutputMap) map[string]interface{} {
	values := make(map[string]interface{}, len(outputs))
	for key, value := range outputs {
		if value.Secret || secrets.Sensitive(key) {
			values[key] = "[secret]"
			continue
		}
		values[key] = value.Value
	}
	return values
}

package cmd

import (
	"fmt"

	"github.com/slipway/slipway/internal/output"
	"github.com/slipway/slipway/internal/preflight"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"
)

var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Verify credentials and tooling before a stack operation",
	RunE:  preflightRun,
}

func init() {
	rootCmd.AddCommand(preflightCmd)
}

func preflightRun(cmd *cobra.Command, _ []string) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
	if err != nil {
		return fmt.Errorf("error loading AWS configuration: %w", err)
	}

	checks := preflight.New(sts.NewFromConfig(awsCfg)).Run(cmd.Context())

	failed := 0
	for _, check := range checks {
		if check.Err != nil {
			output.Error("%s: %v", check.Name, check.Err)
			failed++
			continue
		}
		output.Success("%s: %s", check.Name, check.Detail)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d preflight checks failed", failed, len(checks))
	}
	return nil
}

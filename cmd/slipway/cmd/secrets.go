package cmd

import (
	"fmt"
	"time"

	"github.com/slipway/slipway/internal/config"
	"github.com/slipway/slipway/internal/constants"
	"github.com/slipway/slipway/internal/output"
	"github.com/slipway/slipway/internal/secrets"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/spf13/cobra"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Inspect the registry credential parameters",
}

var secretsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show credential parameter versions without decrypting them",
	RunE:  secretsStatusRun,
}

func init() {
	rootCmd.AddCommand(secretsCmd)
	secretsCmd.AddCommand(secretsStatusCmd)
}

func secretsStatusRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
	if err != nil {
		return fmt.Errorf("error loading AWS configuration: %w", err)
	}

	inspector := secrets.NewInspector(ssm.NewFromConfig(awsCfg))
	statuses, err := inspector.Status(cmd.Context(), cfg.DockerUserParameter(), cfg.DockerPassParameter())
	if err != nil {
		return err
	}

	for _, status := range statuses {
		if !status.Exists {
			output.Warning("%s: not created yet (run '%s up')", status.Name, constants.CLIName)
			continue
		}
		output.Success("%s: version %d, last modified %s",
			status.Name, status.Version, status.LastModified.Format(time.RFC3339))
	}
	return nil
}

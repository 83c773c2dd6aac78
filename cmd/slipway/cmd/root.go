package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/slipway/slipway/internal/config"
	"github.com/slipway/slipway/internal/constants"
	"github.com/slipway/slipway/internal/engine"
	"github.com/slipway/slipway/internal/logger"
	"github.com/slipway/slipway/internal/output"
	"github.com/slipway/slipway/internal/stack"

	"github.com/spf13/cobra"
)

var (
	debug     bool
	stackName string
)

var rootCmd = &cobra.Command{
	Use:   constants.CLIName,
	Short: "Provision the project's AWS stack and delivery pipeline",
	Long: fmt.Sprintf(`%s declares the project's cloud topology (network, compute instance,
CI/CD delivery pipeline) and drives the Pulumi engine to provision it.
Stack parameters are read from the environment; run 'slipway preflight'
to verify credentials before the first up.`, constants.CLIName),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		logger.Initialize(constants.CLI, logLevel)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debugging logs")
	rootCmd.PersistentFlags().StringVar(&stackName, "stack", constants.DefaultStackName, "Stack to operate on")
}

// newEngine loads the stack parameters and binds the stack program to the
// selected stack.
func newEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("error loading configuration: %w", err)
	}

	return engine.New(cfg.ProjectName, stackName, stack.Define(cfg)), cfg, nil
}

// warnMissingCredentials surfaces empty credentials before the engine runs.
// Empty values are not an error here: the external services reject them with
// their own messages at apply time.
func warnMissingCredentials(cfg *config.Config) {
	for _, name := range cfg.MissingCredentials() {
		output.Warning("%s is empty; the external service will reject it at apply time", name)
	}
}

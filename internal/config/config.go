// Package config loads the stack parameters for slipway.
// It uses Viper for unified configuration management from environment variables.
package config

import (
	"fmt"

	"github.com/slipway/slipway/internal/constants"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the stack parameters. Every field is read from an
// environment variable and falls back to a documented default when unset.
// Empty credentials are allowed here: the external services produce their
// own validation errors at apply time (e.g., a rejected empty repository
// owner), so the loader never blocks on them.
type Config struct {
	// ProjectName prefixes every resource name and tag in the stack.
	ProjectName string `mapstructure:"project_name" validate:"required"`

	// GitHubOwner is the account that owns the observed repository.
	GitHubOwner string `mapstructure:"github_account_name"`

	// GitHubRepo is the repository the pipeline checks out.
	GitHubRepo string `mapstructure:"github_repo_name"`

	// GitHubBranch is the branch the pipeline observes for releases.
	GitHubBranch string `mapstructure:"github_branch_to_observe"`

	// GitHubToken is the OAuth token for the pipeline's source action.
	GitHubToken string `mapstructure:"github_access_token"`

	// DockerUser and DockerPass are the container registry credentials.
	// They are stored as SecureString parameters, never rendered into
	// the instance launch script.
	DockerUser string `mapstructure:"docker_username"`
	DockerPass string `mapstructure:"docker_password"`
}

var validate = validator.New()

// Load reads the stack parameters from the environment, applying the
// documented default for every variable that is unset.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ResourceName derives the name of a stack resource from the project name.
// Example: ResourceName("vpc") -> "my-project-vpc".
func (c *Config) ResourceName(suffix string) string {
	return c.ProjectName + "-" + suffix
}

// InstanceTag returns the Name tag applied to the compute instance.
// The deployment group selects its targets by this exact value, so both
// sides must use this method rather than building the literal themselves.
func (c *Config) InstanceTag() string {
	return c.ResourceName("ec2")
}

// DockerUserParameter returns the SSM parameter name holding the registry username.
func (c *Config) DockerUserParameter() string {
	return "/" + c.ProjectName + "/docker/username"
}

// DockerPassParameter returns the SSM parameter name holding the registry password.
func (c *Config) DockerPassParameter() string {
	return "/" + c.ProjectName + "/docker/password"
}

// MissingCredentials lists the credential variables that are currently empty.
// Callers use this to warn the operator before an apply that will fail late.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.GitHubToken == "" {
		missing = append(missing, constants.EnvGitHubToken)
	}
	if c.DockerUser == "" {
		missing = append(missing, constants.EnvDockerUser)
	}
	if c.DockerPass == "" {
		missing = append(missing, constants.EnvDockerPass)
	}
	return missing
}

// Helper functions

func setDefaults(v *viper.Viper) {
	v.SetDefault("project_name", constants.DefaultProjectName)
	v.SetDefault("github_account_name", constants.DefaultGitHubOwner)
	v.SetDefault("github_repo_name", constants.DefaultGitHubRepo)
	v.SetDefault("github_branch_to_observe", constants.DefaultGitHubBranch)
	v.SetDefault("github_access_token", "")
	v.SetDefault("docker_username", "")
	v.SetDefault("docker_password", "")
}

func bindEnvVars(v *viper.Viper) {
	// The variable names are unprefixed legacy names exported by the
	// project's CI environment, so each one is bound explicitly.
	bindings := map[string]string{
		"project_name":             constants.EnvProjectName,
		"github_account_name":      constants.EnvGitHubOwner,
		"github_repo_name":         constants.EnvGitHubRepo,
		"github_branch_to_observe": constants.EnvGitHubBranch,
		"github_access_token":      constants.EnvGitHubToken,
		"docker_username":          constants.EnvDockerUser,
		"docker_password":          constants.EnvDockerPass,
	}

	for key, envVar := range bindings {
		_ = v.BindEnv(key, envVar)
	}
}

// Package constants defines global constants used throughout slipway.
// It includes version information, environment variable names, and the
// default stack parameters applied when a variable is unset.
package constants

var version = "0.0.0-development" // Updated by CI/CD pipeline at build time

// GetVersion returns the current version of slipway.
func GetVersion() *string {
	return &version
}

// CLIName is the name of the CLI tool.
const CLIName = "slipway"

// DefaultStackName is the Pulumi stack used when --stack is not given.
const DefaultStackName = "dev"

// Environment variable names consumed by the stack configuration.
// These are intentionally unprefixed: they match the variables the
// surrounding CI environment already exports for this project.
const (
	EnvProjectName  = "PROJECT_NAME"
	EnvGitHubOwner  = "GITHUB_ACCOUNT_NAME"
	EnvGitHubRepo   = "GITHUB_REPO_NAME"
	EnvGitHubBranch = "GITHUB_BRANCH_TO_OBSERVE"
	EnvGitHubToken  = "GITHUB_ACCESS_TOKEN" //nolint:gosec // variable name, not a credential
	EnvDockerUser   = "DOCKER_USERNAME"
	EnvDockerPass   = "DOCKER_PASSWORD"
)

// Defaults applied when the corresponding environment variable is unset.
// Credentials deliberately default to empty strings: the external services
// report their own errors for missing credentials at apply time.
const (
	DefaultProjectName  = "my-project"
	DefaultGitHubOwner  = "my-account"
	DefaultGitHubRepo   = "my-repo"
	DefaultGitHubBranch = "master"
)

// Environment represents the execution environment (e.g., CLI, CI).
type Environment string

// Environment types for logger configuration
const (
	Development Environment = "development"
	Production  Environment = "production"
	CLI         Environment = "cli"
)

package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipway/slipway/internal/config"
)

func TestRenderLaunchScript(t *testing.T) {
	cfg := &config.Config{
		ProjectName: "my-project",
		DockerUser:  "registry-user",
		DockerPass:  "super-secret",
	}

	script, err := renderLaunchScript(cfg, "eu-west-1")
	require.NoError(t, err)

	// Bootstrap sequence: agent, runtime, compose, login.
	assert.Contains(t, script, "aws-codedeploy-eu-west-1.s3.eu-west-1.amazonaws.com")
	assert.Contains(t, script, "codedeploy-agent")
	assert.Contains(t, script, "systemctl enable --now docker")
	assert.Contains(t, script, "cli-plugins/docker-compose")
	assert.Contains(t, script, "docker login")

	// Credentials are fetched from SSM at boot, never rendered in.
	assert.Contains(t, script, "/my-project/docker/username")
	assert.Contains(t, script, "/my-project/docker/password")
	assert.Contains(t, script, "--with-decryption")
	assert.NotContains(t, script, "registry-user")
	assert.NotContains(t, script, "super-secret")
}

func TestRenderLaunchScriptRegionSubstitution(t *testing.T) {
	cfg := &config.Config{ProjectName: "p"}

	for _, region := range []string{"us-east-1", "ap-southeast-2"} {
		script, err := renderLaunchScript(cfg, region)
		require.NoError(t, err)
		assert.Contains(t, script, "aws-codedeploy-"+region)
	}
}

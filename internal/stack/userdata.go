package stack

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/slipway/slipway/internal/config"
)

// launchScript bootstraps the instance: package update, CodeDeploy agent,
// container runtime, compose plugin, registry login. Registry credentials
// are resolved from SSM at boot instead of being rendered into the script.
const launchScript = `#!/bin/bash
set -euo pipefail

dnf update -y
dnf install -y ruby wget docker

cd /tmp
wget "https://aws-codedeploy-{{.Region}}.s3.{{.Region}}.amazonaws.com/latest/install"
chmod +x ./install
./install auto
systemctl enable --now codedeploy-agent

systemctl enable --now docker

mkdir -p /usr/local/lib/docker/cli-plugins
curl -fsSL "https://github.com/docker/compose/releases/latest/download/docker-compose-linux-x86_64" \
  -o /usr/local/lib/docker/cli-plugins/docker-compose
chmod +x /usr/local/lib/docker/cli-plugins/docker-compose

REGISTRY_USER="$(aws ssm get-parameter --name '{{.UsernameParameter}}' --with-decryption --query 'Parameter.Value' --output text)"
REGISTRY_PASS="$(aws ssm get-parameter --name '{{.PasswordParameter}}' --with-decryption --query 'Parameter.Value' --output text)"
echo "$REGISTRY_PASS" | docker login --username "$REGISTRY_USER" --password-stdin
`

var launchScriptTemplate = template.Must(template.New("launch-script").Parse(launchScript))

// renderLaunchScript renders the instance launch script for the given region.
func renderLaunchScript(cfg *config.Config, region string) (string, error) {
	var buf strings.Builder
	err := launchScriptTemplate.Execute(&buf, struct {
		Region            string
		UsernameParameter string
		PasswordParameter string
	}{
		Region:            region,
		UsernameParameter: cfg.DockerUserParameter(),
		PasswordParameter: cfg.DockerPassParameter(),
	})
	if err != nil {
		return "", fmt.Errorf("error rendering launch script: %w", err)
	}

	return buf.String(), nil
}

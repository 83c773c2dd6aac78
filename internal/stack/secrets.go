package stack

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ssm"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/slipway/slipway/internal/config"
)

// RegistrySecrets holds the SecureString parameters carrying the container
// registry credentials. The instance resolves them at boot; the credentials
// never appear in the launch script or the instance metadata.
type RegistrySecrets struct {
	Username *ssm.Parameter
	Password *ssm.Parameter
}

const parameterReadPolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Action": ["ssm:GetParameter", "ssm:GetParameters"],
		"Resource": ["%s", "%s"]
	}]
}`

func provisionRegistrySecrets(ctx *pulumi.Context, cfg *config.Config, identity *Identity) (*RegistrySecrets, error) {
	username, err := ssm.NewParameter(ctx, cfg.ResourceName("docker-username"), &ssm.ParameterArgs{
		Name:        pulumi.String(cfg.DockerUserParameter()),
		Type:        pulumi.String("SecureString"),
		Value:       pulumi.ToSecret(pulumi.String(cfg.DockerUser)).(pulumi.StringOutput),
		Description: pulumi.String("Container registry username"),
	})
	if err != nil {
		return nil, err
	}

	password, err := ssm.NewParameter(ctx, cfg.ResourceName("docker-password"), &ssm.ParameterArgs{
		Name:        pulumi.String(cfg.DockerPassParameter()),
		Type:        pulumi.String("SecureString"),
		Value:       pulumi.ToSecret(pulumi.String(cfg.DockerPass)).(pulumi.StringOutput),
		Description: pulumi.String("Container registry password"),
	})
	if err != nil {
		return nil, err
	}

	_, err = iam.NewRolePolicy(ctx, cfg.ResourceName("instance-secrets-policy"), &iam.RolePolicyArgs{
		Role:   identity.InstanceRole.ID(),
		Policy: pulumi.Sprintf(parameterReadPolicy, username.Arn, password.Arn),
	})
	if err != nil {
		return nil, err
	}

	return &RegistrySecrets{
		Username: username,
		Password: password,
	}, nil
}

package stack

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/slipway/slipway/internal/config"
)

// Identity holds the execution identities the stack's permission grants
// attach to: the instance role, the CodeDeploy service role, and the
// pipeline role.
type Identity struct {
	InstanceRole    *iam.Role
	InstanceProfile *iam.InstanceProfile
	CodeDeployRole  *iam.Role
	PipelineRole    *iam.Role
}

const ec2AssumeRolePolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"Service": "ec2.amazonaws.com"},
		"Action": "sts:AssumeRole"
	}]
}`

const codeDeployAssumeRolePolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"Service": "codedeploy.amazonaws.com"},
		"Action": "sts:AssumeRole"
	}]
}`

const pipelineAssumeRolePolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"Service": "codepipeline.amazonaws.com"},
		"Action": "sts:AssumeRole"
	}]
}`

const codeDeployManagedPolicyArn = "arn:aws:iam::aws:policy/service-role/AWSCodeDeployRole"

func provisionIdentity(ctx *pulumi.Context, cfg *config.Config) (*Identity, error) {
	instanceRole, err := iam.NewRole(ctx, cfg.ResourceName("instance-role"), &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(ec2AssumeRolePolicy),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.ResourceName("instance-role")),
		},
	})
	if err != nil {
		return nil, err
	}

	instanceProfile, err := iam.NewInstanceProfile(ctx, cfg.ResourceName("instance-profile"), &iam.InstanceProfileArgs{
		Role: instanceRole.Name,
	})
	if err != nil {
		return nil, err
	}

	codeDeployRole, err := iam.NewRole(ctx, cfg.ResourceName("codedeploy-role"), &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(codeDeployAssumeRolePolicy),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.ResourceName("codedeploy-role")),
		},
	})
	if err != nil {
		return nil, err
	}

	_, err = iam.NewRolePolicyAttachment(ctx, cfg.ResourceName("codedeploy-managed-policy"), &iam.RolePolicyAttachmentArgs{
		Role:      codeDeployRole.Name,
		PolicyArn: pulumi.String(codeDeployManagedPolicyArn),
	})
	if err != nil {
		return nil, err
	}

	pipelineRole, err := iam.NewRole(ctx, cfg.ResourceName("pipeline-role"), &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(pipelineAssumeRolePolicy),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.ResourceName("pipeline-role")),
		},
	})
	if err != nil {
		return nil, err
	}

	return &Identity{
		InstanceRole:    instanceRole,
		InstanceProfile: instanceProfile,
		CodeDeployRole:  codeDeployRole,
		PipelineRole:    pipelineRole,
	}, nil
}

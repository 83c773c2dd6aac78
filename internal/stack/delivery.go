package stack

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/codedeploy"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/codepipeline"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/slipway/slipway/internal/config"
)

// sourceArtifactName names the artifact the Source stage produces and the
// Deploy stage consumes. Both stages must use this constant.
const sourceArtifactName = "source"

const allAtOnceDeploymentConfig = "CodeDeployDefault.AllAtOnce"

// Delivery holds the pipeline, its artifact store, and the deployment
// target group. The deployment group selects the instance by tag value, not
// by direct reference: the deployment service resolves targets on its own.
type Delivery struct {
	ArtifactBucket  *s3.BucketV2
	Application     *codedeploy.Application
	DeploymentGroup *codedeploy.DeploymentGroup
	Pipeline        *codepipeline.Pipeline
}

func provisionDelivery(ctx *pulumi.Context, cfg *config.Config, identity *Identity) (*Delivery, error) {
	bucket, err := s3.NewBucketV2(ctx, cfg.ResourceName("artifacts"), &s3.BucketV2Args{
		ForceDestroy: pulumi.Bool(true),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.ResourceName("artifacts")),
		},
	})
	if err != nil {
		return nil, err
	}

	application, err := codedeploy.NewApplication(ctx, cfg.ResourceName("codedeploy-app"), &codedeploy.ApplicationArgs{
		Name:            pulumi.String(cfg.ResourceName("codedeploy-app")),
		ComputePlatform: pulumi.String("Server"),
	})
	if err != nil {
		return nil, err
	}

	group, err := codedeploy.NewDeploymentGroup(ctx, cfg.ResourceName("deployment-group"), &codedeploy.DeploymentGroupArgs{
		AppName:              application.Name,
		DeploymentGroupName:  pulumi.String(cfg.ResourceName("deployment-group")),
		ServiceRoleArn:       identity.CodeDeployRole.Arn,
		DeploymentConfigName: pulumi.String(allAtOnceDeploymentConfig),
		Ec2TagFilters: codedeploy.DeploymentGroupEc2TagFilterArray{
			&codedeploy.DeploymentGroupEc2TagFilterArgs{
				Key:   pulumi.String("Name"),
				Type:  pulumi.String("KEY_AND_VALUE"),
				Value: pulumi.String(cfg.InstanceTag()),
			},
		},
		AutoRollbackConfiguration: &codedeploy.DeploymentGroupAutoRollbackConfigurationArgs{
			Enabled: pulumi.Bool(true),
			Events:  pulumi.StringArray{pulumi.String("DEPLOYMENT_FAILURE")},
		},
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := codepipeline.NewPipeline(ctx, cfg.ResourceName("pipeline"), &codepipeline.PipelineArgs{
		Name:    pulumi.String(cfg.ResourceName("pipeline")),
		RoleArn: identity.PipelineRole.Arn,
		ArtifactStores: codepipeline.PipelineArtifactStoreArray{
			&codepipeline.PipelineArtifactStoreArgs{
				Location: bucket.Bucket,
				Type:     pulumi.String("S3"),
			},
		},
		Stages: codepipeline.PipelineStageArray{
			&codepipeline.PipelineStageArgs{
				Name: pulumi.String("Source"),
				Actions: codepipeline.PipelineStageActionArray{
					&codepipeline.PipelineStageActionArgs{
						Name:            pulumi.String("Checkout"),
						Category:        pulumi.String("Source"),
						Owner:           pulumi.String("ThirdParty"),
						Provider:        pulumi.String("GitHub"),
						Version:         pulumi.String("1"),
						OutputArtifacts: pulumi.StringArray{pulumi.String(sourceArtifactName)},
						Configuration: pulumi.StringMap{
							"Owner":      pulumi.String(cfg.GitHubOwner),
							"Repo":       pulumi.String(cfg.GitHubRepo),
							"Branch":     pulumi.String(cfg.GitHubBranch),
							"OAuthToken": pulumi.ToSecret(pulumi.String(cfg.GitHubToken)).(pulumi.StringOutput),
						},
					},
				},
			},
			&codepipeline.PipelineStageArgs{
				Name: pulumi.String("Deploy"),
				Actions: codepipeline.PipelineStageActionArray{
					&codepipeline.PipelineStageActionArgs{
						Name:           pulumi.String("Deploy"),
						Category:       pulumi.String("Deploy"),
						Owner:          pulumi.String("AWS"),
						Provider:       pulumi.String("CodeDeploy"),
						Version:        pulumi.String("1"),
						InputArtifacts: pulumi.StringArray{pulumi.String(sourceArtifactName)},
						Configuration: pulumi.StringMap{
							"ApplicationName":     application.Name,
							"DeploymentGroupName": group.DeploymentGroupName,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return &Delivery{
		ArtifactBucket:  bucket,
		Application:     application,
		DeploymentGroup: group,
		Pipeline:        pipeline,
	}, nil
}

const artifactAccessPolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Action": [
			"s3:GetObject",
			"s3:GetObjectVersion",
			"s3:PutObject",
			"s3:GetBucketVersioning",
			"s3:ListBucket"
		],
		"Resource": ["%s", "%s/*"]
	}]
}`

const pipelinePolicy = `{
	"Version": "2012-10-17",
	"Statement": [
		{
			"Effect": "Allow",
			"Action": [
				"s3:GetObject",
				"s3:GetObjectVersion",
				"s3:PutObject",
				"s3:GetBucketVersioning",
				"s3:ListBucket"
			],
			"Resource": ["%s", "%s/*"]
		},
		{
			"Effect": "Allow",
			"Action": [
				"codedeploy:CreateDeployment",
				"codedeploy:GetApplication",
				"codedeploy:GetApplicationRevision",
				"codedeploy:GetDeployment",
				"codedeploy:GetDeploymentConfig",
				"codedeploy:RegisterApplicationRevision"
			],
			"Resource": "*"
		}
	]
}`

// grantArtifactAccess attaches read/write on the pipeline's artifact store
// to the instance role and the CodeDeploy service role, and gives the
// pipeline role the store access plus deployment permissions it needs to
// run both stages.
func grantArtifactAccess(ctx *pulumi.Context, cfg *config.Config, delivery *Delivery, identity *Identity) error {
	grants := []struct {
		name string
		role *iam.Role
	}{
		{"instance-artifact-policy", identity.InstanceRole},
		{"codedeploy-artifact-policy", identity.CodeDeployRole},
	}

	for _, grant := range grants {
		_, err := iam.NewRolePolicy(ctx, cfg.ResourceName(grant.name), &iam.RolePolicyArgs{
			Role:   grant.role.ID(),
			Policy: pulumi.Sprintf(artifactAccessPolicy, delivery.ArtifactBucket.Arn, delivery.ArtifactBucket.Arn),
		})
		if err != nil {
			return err
		}
	}

	_, err := iam.NewRolePolicy(ctx, cfg.ResourceName("pipeline-policy"), &iam.RolePolicyArgs{
		Role:   identity.PipelineRole.ID(),
		Policy: pulumi.Sprintf(pipelinePolicy, delivery.ArtifactBucket.Arn, delivery.ArtifactBucket.Arn),
	})
	return err
}

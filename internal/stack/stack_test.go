package stack

import (
	"sync"
	"testing"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/codedeploy"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/codepipeline"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipway/slipway/internal/config"
)

// mocks records every resource registration so tests can assert on the
// declared topology without a cloud account.
type mocks struct {
	mu      sync.Mutex
	created map[string]int
	names   map[string][]string
}

func newMocks() *mocks {
	return &mocks{
		created: map[string]int{},
		names:   map[string][]string{},
	}
}

func (m *mocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	m.mu.Lock()
	m.created[args.TypeToken]++
	m.names[args.TypeToken] = append(m.names[args.TypeToken], args.Name)
	m.mu.Unlock()

	outputs := args.Inputs.Copy()
	outputs["arn"] = resource.NewStringProperty("arn:aws:mock:::" + args.Name)

	switch args.TypeToken {
	case "aws:ec2/instance:Instance":
		outputs["publicDns"] = resource.NewStringProperty("ec2-203-0-113-25.compute-1.amazonaws.com")
		outputs["publicIp"] = resource.NewStringProperty("203.0.113.25")
	case "aws:s3/bucketV2:BucketV2":
		outputs["arn"] = resource.NewStringProperty("arn:aws:s3:::" + args.Name)
		outputs["bucket"] = resource.NewStringProperty(args.Name)
	}

	return args.Name + "_id", outputs, nil
}

func (m *mocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	switch args.Token {
	case "aws:ec2/getAmi:getAmi":
		return resource.PropertyMap{
			"id":           resource.NewStringProperty("ami-0123456789abcdef0"),
			"architecture": resource.NewStringProperty("x86_64"),
		}, nil
	case "aws:index/getRegion:getRegion":
		return resource.PropertyMap{
			"name": resource.NewStringProperty("us-east-1"),
		}, nil
	}
	return args.Args, nil
}

func testConfig() *config.Config {
	return &config.Config{
		ProjectName:  "my-project",
		GitHubOwner:  "my-account",
		GitHubRepo:   "my-repo",
		GitHubBranch: "master",
		GitHubToken:  "ghp_test",
		DockerUser:   "registry-user",
		DockerPass:   "registry-pass",
	}
}

func runStack(t *testing.T, cfg *config.Config, m *mocks, inspect func(*Resources)) {
	t.Helper()

	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		res, err := Provision(ctx, cfg)
		require.NoError(t, err)
		if inspect != nil {
			inspect(res)
		}
		return nil
	}, pulumi.WithMocks("slipway", "test", m))
	require.NoError(t, err)
}

func TestProvisionTopology(t *testing.T) {
	m := newMocks()
	runStack(t, testConfig(), m, nil)

	// Exactly one of everything the topology names, regardless of input.
	assert.Equal(t, 1, m.created["aws:ec2/vpc:Vpc"])
	assert.Equal(t, 1, m.created["aws:ec2/subnet:Subnet"])
	assert.Equal(t, 1, m.created["aws:ec2/securityGroup:SecurityGroup"])
	assert.Equal(t, 1, m.created["aws:ec2/instance:Instance"])
	assert.Equal(t, 1, m.created["aws:codepipeline/pipeline:Pipeline"])
	assert.Equal(t, 1, m.created["aws:codedeploy/application:Application"])
	assert.Equal(t, 1, m.created["aws:codedeploy/deploymentGroup:DeploymentGroup"])
	assert.Equal(t, 1, m.created["aws:s3/bucketV2:BucketV2"])
	assert.Equal(t, 2, m.created["aws:ssm/parameter:Parameter"])
}

func TestProvisionDefaultNames(t *testing.T) {
	m := newMocks()
	runStack(t, testConfig(), m, nil)

	assert.Equal(t, []string{"my-project-vpc"}, m.names["aws:ec2/vpc:Vpc"])
	assert.Equal(t, []string{"my-project-ec2"}, m.names["aws:ec2/instance:Instance"])
	assert.Equal(t, []string{"my-project-pipeline"}, m.names["aws:codepipeline/pipeline:Pipeline"])
	assert.Equal(t, []string{"my-project-deployment-group"}, m.names["aws:codedeploy/deploymentGroup:DeploymentGroup"])
}

func TestSecurityGroupPermits(t *testing.T) {
	runStack(t, testConfig(), newMocks(), func(res *Resources) {
		var wg sync.WaitGroup
		wg.Add(2)

		res.Network.SecurityGroup.Ingress.ApplyT(func(rules []ec2.SecurityGroupIngress) error {
			defer wg.Done()

			require.Len(t, rules, 3)
			ports := make([]int, 0, len(rules))
			for _, rule := range rules {
				ports = append(ports, rule.FromPort)
				assert.Equal(t, rule.FromPort, rule.ToPort)
				assert.Equal(t, "tcp", rule.Protocol)
				assert.Equal(t, []string{"0.0.0.0/0"}, rule.CidrBlocks)
			}
			assert.ElementsMatch(t, []int{22, 80, 443}, ports)
			return nil
		})

		res.Network.SecurityGroup.Egress.ApplyT(func(rules []ec2.SecurityGroupEgress) error {
			defer wg.Done()

			require.Len(t, rules, 1)
			assert.Equal(t, "-1", rules[0].Protocol)
			assert.Equal(t, []string{"0.0.0.0/0"}, rules[0].CidrBlocks)
			return nil
		})

		wg.Wait()
	})
}

func TestDeploymentGroupSelectsInstanceTag(t *testing.T) {
	tests := []struct {
		name    string
		project string
	}{
		{name: "default project name", project: "my-project"},
		{name: "custom project name", project: "storefront"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.ProjectName = tt.project

			runStack(t, cfg, newMocks(), func(res *Resources) {
				var wg sync.WaitGroup
				wg.Add(1)

				pulumi.All(res.Instance.Tags, res.Delivery.DeploymentGroup.Ec2TagFilters).ApplyT(func(args []interface{}) error {
					defer wg.Done()

					tags := args[0].(map[string]string)
					filters := args[1].([]codedeploy.DeploymentGroupEc2TagFilter)

					require.Len(t, filters, 1)
					require.NotNil(t, filters[0].Key)
					require.NotNil(t, filters[0].Type)
					require.NotNil(t, filters[0].Value)

					assert.Equal(t, "Name", *filters[0].Key)
					assert.Equal(t, "KEY_AND_VALUE", *filters[0].Type)
					// The selector must equal the tag on the instance or the
					// deployment has no valid target.
					assert.Equal(t, tags["Name"], *filters[0].Value)
					assert.Equal(t, tt.project+"-ec2", *filters[0].Value)
					return nil
				})

				wg.Wait()
			})
		})
	}
}

func TestPipelineStages(t *testing.T) {
	runStack(t, testConfig(), newMocks(), func(res *Resources) {
		var wg sync.WaitGroup
		wg.Add(1)

		res.Delivery.Pipeline.Stages.ApplyT(func(stages []codepipeline.PipelineStage) error {
			defer wg.Done()

			require.Len(t, stages, 2)

			source := stages[0]
			assert.Equal(t, "Source", source.Name)
			require.Len(t, source.Actions, 1)
			assert.Equal(t, "Source", source.Actions[0].Category)
			assert.Equal(t, "ThirdParty", source.Actions[0].Owner)
			assert.Equal(t, "GitHub", source.Actions[0].Provider)
			require.Len(t, source.Actions[0].OutputArtifacts, 1)

			deploy := stages[1]
			assert.Equal(t, "Deploy", deploy.Name)
			require.Len(t, deploy.Actions, 1)
			assert.Equal(t, "Deploy", deploy.Actions[0].Category)
			assert.Equal(t, "CodeDeploy", deploy.Actions[0].Provider)
			require.Len(t, deploy.Actions[0].InputArtifacts, 1)

			// The Deploy stage consumes exactly the artifact Source produces.
			assert.Equal(t, source.Actions[0].OutputArtifacts[0], deploy.Actions[0].InputArtifacts[0])
			assert.Equal(t, sourceArtifactName, deploy.Actions[0].InputArtifacts[0])
			return nil
		})

		wg.Wait()
	})
}

func TestPipelineSourceConfiguration(t *testing.T) {
	cfg := testConfig()
	cfg.GitHubOwner = "acme"
	cfg.GitHubRepo = "storefront"
	cfg.GitHubBranch = "release"

	runStack(t, cfg, newMocks(), func(res *Resources) {
		var wg sync.WaitGroup
		wg.Add(1)

		res.Delivery.Pipeline.Stages.ApplyT(func(stages []codepipeline.PipelineStage) error {
			defer wg.Done()

			require.Len(t, stages, 2)
			conf := stages[0].Actions[0].Configuration
			assert.Equal(t, "acme", conf["Owner"])
			assert.Equal(t, "storefront", conf["Repo"])
			assert.Equal(t, "release", conf["Branch"])
			return nil
		})

		wg.Wait()
	})
}

func TestDeploymentGroupRollbackPolicy(t *testing.T) {
	runStack(t, testConfig(), newMocks(), func(res *Resources) {
		var wg sync.WaitGroup
		wg.Add(1)

		pulumi.All(
			res.Delivery.DeploymentGroup.DeploymentConfigName,
			res.Delivery.DeploymentGroup.AutoRollbackConfiguration,
		).ApplyT(func(args []interface{}) error {
			defer wg.Done()

			configName := args[0].(*string)
			require.NotNil(t, configName)
			assert.Equal(t, allAtOnceDeploymentConfig, *configName)

			rollback := args[1].(*codedeploy.DeploymentGroupAutoRollbackConfiguration)
			require.NotNil(t, rollback)
			require.NotNil(t, rollback.Enabled)
			assert.True(t, *rollback.Enabled)
			assert.Equal(t, []string{"DEPLOYMENT_FAILURE"}, rollback.Events)
			return nil
		})

		wg.Wait()
	})
}

func TestRegistryParameterNames(t *testing.T) {
	runStack(t, testConfig(), newMocks(), func(res *Resources) {
		var wg sync.WaitGroup
		wg.Add(1)

		pulumi.All(res.Secrets.Username.Name, res.Secrets.Password.Name).ApplyT(func(args []interface{}) error {
			defer wg.Done()

			assert.Equal(t, "/my-project/docker/username", args[0].(string))
			assert.Equal(t, "/my-project/docker/password", args[1].(string))
			return nil
		})

		wg.Wait()
	})
}

func TestInstanceDoesNotEmbedCredentials(t *testing.T) {
	cfg := testConfig()

	runStack(t, cfg, newMocks(), func(res *Resources) {
		var wg sync.WaitGroup
		wg.Add(1)

		res.Instance.UserData.ApplyT(func(script *string) error {
			defer wg.Done()

			require.NotNil(t, script)
			assert.NotContains(t, *script, cfg.DockerUser)
			assert.NotContains(t, *script, cfg.DockerPass)
			assert.Contains(t, *script, cfg.DockerUserParameter())
			assert.Contains(t, *script, cfg.DockerPassParameter())
			return nil
		})

		wg.Wait()
	})
}

package stack

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/slipway/slipway/internal/config"
)

const instanceType = "t3.micro"

// provisionInstance declares the single compute instance. The base image is
// the latest Amazon Linux 2023 AMI at provisioning time, so the resolved
// image id can change between runs. The Name tag doubles as the deployment
// group's target selector.
func provisionInstance(
	ctx *pulumi.Context,
	cfg *config.Config,
	region string,
	network *Network,
	identity *Identity,
	secrets *RegistrySecrets,
) (*ec2.Instance, error) {
	ami, err := ec2.LookupAmi(ctx, &ec2.LookupAmiArgs{
		MostRecent: pulumi.BoolRef(true),
		Owners:     []string{"amazon"},
		Filters: []ec2.GetAmiFilter{
			{Name: "name", Values: []string{"al2023-ami-2023.*-x86_64"}},
			{Name: "virtualization-type", Values: []string{"hvm"}},
		},
	})
	if err != nil {
		return nil, err
	}

	script, err := renderLaunchScript(cfg, region)
	if err != nil {
		return nil, err
	}

	// The launch script reads the registry parameters on first boot, so
	// they must exist before the instance does.
	return ec2.NewInstance(ctx, cfg.ResourceName("ec2"), &ec2.InstanceArgs{
		Ami:                 pulumi.String(ami.Id),
		InstanceType:        pulumi.String(instanceType),
		SubnetId:            network.Subnet.ID(),
		VpcSecurityGroupIds: pulumi.StringArray{network.SecurityGroup.ID()},
		IamInstanceProfile:  identity.InstanceProfile.Name,
		UserData:            pulumi.String(script),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.InstanceTag()),
		},
	}, pulumi.DependsOn([]pulumi.Resource{secrets.Username, secrets.Password}))
}

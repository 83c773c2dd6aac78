package stack

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/slipway/slipway/internal/config"
)

const (
	vpcCidr      = "10.0.0.0/16"
	subnetCidr   = "10.0.1.0/24"
	anywhereCidr = "0.0.0.0/0"
)

// Network holds the provisioned network resources.
type Network struct {
	VPC           *ec2.Vpc
	Subnet        *ec2.Subnet
	SecurityGroup *ec2.SecurityGroup
}

// provisionNetwork declares the VPC with a single public subnet and the
// security group permitting inbound SSH, HTTP and HTTPS plus all outbound
// traffic. The internet gateway, route table and association are what make
// the subnet actually public.
func provisionNetwork(ctx *pulumi.Context, cfg *config.Config) (*Network, error) {
	vpc, err := ec2.NewVpc(ctx, cfg.ResourceName("vpc"), &ec2.VpcArgs{
		CidrBlock:          pulumi.String(vpcCidr),
		EnableDnsSupport:   pulumi.Bool(true),
		EnableDnsHostnames: pulumi.Bool(true),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.ResourceName("vpc")),
		},
	})
	if err != nil {
		return nil, err
	}

	subnet, err := ec2.NewSubnet(ctx, cfg.ResourceName("subnet"), &ec2.SubnetArgs{
		VpcId:               vpc.ID(),
		CidrBlock:           pulumi.String(subnetCidr),
		MapPublicIpOnLaunch: pulumi.Bool(true),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.ResourceName("subnet")),
		},
	})
	if err != nil {
		return nil, err
	}

	gateway, err := ec2.NewInternetGateway(ctx, cfg.ResourceName("igw"), &ec2.InternetGatewayArgs{
		VpcId: vpc.ID(),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.ResourceName("igw")),
		},
	})
	if err != nil {
		return nil, err
	}

	routeTable, err := ec2.NewRouteTable(ctx, cfg.ResourceName("public-rt"), &ec2.RouteTableArgs{
		VpcId: vpc.ID(),
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.ResourceName("public-rt")),
		},
	})
	if err != nil {
		return nil, err
	}

	_, err = ec2.NewRoute(ctx, cfg.ResourceName("public-route"), &ec2.RouteArgs{
		RouteTableId:         routeTable.ID(),
		DestinationCidrBlock: pulumi.String(anywhereCidr),
		GatewayId:            gateway.ID(),
	})
	if err != nil {
		return nil, err
	}

	_, err = ec2.NewRouteTableAssociation(ctx, cfg.ResourceName("public-rta"), &ec2.RouteTableAssociationArgs{
		SubnetId:     subnet.ID(),
		RouteTableId: routeTable.ID(),
	})
	if err != nil {
		return nil, err
	}

	securityGroup, err := provisionSecurityGroup(ctx, cfg, vpc)
	if err != nil {
		return nil, err
	}

	return &Network{
		VPC:           vpc,
		Subnet:        subnet,
		SecurityGroup: securityGroup,
	}, nil
}

// inboundRules is the complete permit set for the instance. The rules are
// independent and non-overlapping by port, so their order is irrelevant.
var inboundRules = []struct {
	port int
	name string
}{
	{22, "SSH"},
	{80, "HTTP"},
	{443, "HTTPS"},
}

func provisionSecurityGroup(ctx *pulumi.Context, cfg *config.Config, vpc *ec2.Vpc) (*ec2.SecurityGroup, error) {
	ingress := make(ec2.SecurityGroupIngressArray, 0, len(inboundRules))
	for _, rule := range inboundRules {
		ingress = append(ingress, &ec2.SecurityGroupIngressArgs{
			Description: pulumi.Sprintf("Allow inbound %s", rule.name),
			FromPort:    pulumi.Int(rule.port),
			ToPort:      pulumi.Int(rule.port),
			Protocol:    pulumi.String("tcp"),
			CidrBlocks:  pulumi.StringArray{pulumi.String(anywhereCidr)},
		})
	}

	return ec2.NewSecurityGroup(ctx, cfg.ResourceName("sg"), &ec2.SecurityGroupArgs{
		VpcId:       vpc.ID(),
		Description: pulumi.String("Instance traffic for " + cfg.ProjectName),
		Ingress:     ingress,
		Egress: ec2.SecurityGroupEgressArray{
			&ec2.SecurityGroupEgressArgs{
				Description: pulumi.String("Allow all outbound"),
				FromPort:    pulumi.Int(0),
				ToPort:      pulumi.Int(0),
				Protocol:    pulumi.String("-1"),
				CidrBlocks:  pulumi.StringArray{pulumi.String(anywhereCidr)},
			},
		},
		Tags: pulumi.StringMap{
			"Name": pulumi.String(cfg.ResourceName("sg")),
		},
	})
}

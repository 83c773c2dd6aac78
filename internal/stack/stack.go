// Package stack declares the project's cloud topology: a network with one
// public subnet, a single compute instance bootstrapped for container
// deployments, and a two-stage delivery pipeline that releases the observed
// branch onto that instance. The declarations are handed to the Pulumi
// engine, which owns ordering, diffing, and apply.
package stack

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/slipway/slipway/internal/config"
)

// Resources holds the handles created by Provision. The handles exist only
// to wire cross-references and to let tests inspect the declared topology.
type Resources struct {
	Network  *Network
	Identity *Identity
	Secrets  *RegistrySecrets
	Instance *ec2.Instance
	Delivery *Delivery
}

// Define returns the Pulumi program for the stack.
func Define(cfg *config.Config) pulumi.RunFunc {
	return func(ctx *pulumi.Context) error {
		_, err := Provision(ctx, cfg)
		return err
	}
}

// Provision declares every resource in the stack and exports the operator
// outputs. It is separate from Define so tests can inspect the handles.
func Provision(ctx *pulumi.Context, cfg *config.Config) (*Resources, error) {
	region, err := aws.GetRegion(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	network, err := provisionNetwork(ctx, cfg)
	if err != nil {
		return nil, err
	}

	identity, err := provisionIdentity(ctx, cfg)
	if err != nil {
		return nil, err
	}

	secrets, err := provisionRegistrySecrets(ctx, cfg, identity)
	if err != nil {
		return nil, err
	}

	instance, err := provisionInstance(ctx, cfg, region.Name, network, identity, secrets)
	if err != nil {
		return nil, err
	}

	delivery, err := provisionDelivery(ctx, cfg, identity)
	if err != nil {
		return nil, err
	}

	if err := grantArtifactAccess(ctx, cfg, delivery, identity); err != nil {
		return nil, err
	}

	ctx.Export("instanceId", instance.ID())
	ctx.Export("instancePublicUrl", pulumi.Sprintf("http://%s", instance.PublicDns))
	ctx.Export("region", pulumi.String(region.Name))

	return &Resources{
		Network:  network,
		Identity: identity,
		Secrets:  secrets,
		Instance: instance,
		Delivery: delivery,
	}, nil
}

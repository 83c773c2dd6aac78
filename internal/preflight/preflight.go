// Package preflight verifies the environment before any stack operation:
// AWS credentials must resolve and the pulumi binary must be on PATH.
package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"golang.org/x/sync/errgroup"
)

// STSAPI is the subset of the STS client used by the checks.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Check is the result of a single preflight check.
type Check struct {
	Name   string
	Detail string
	Err    error
}

// Runner executes the preflight checks.
type Runner struct {
	sts      STSAPI
	lookPath func(string) (string, error)
	version  func(ctx context.Context, bin string) (string, error)
}

// New returns a Runner using the given STS client.
func New(client STSAPI) *Runner {
	return &Runner{
		sts:      client,
		lookPath: exec.LookPath,
		version:  pulumiVersion,
	}
}

// Run executes all checks concurrently and returns them in a fixed order:
// AWS credentials first, engine binary second.
func (r *Runner) Run(ctx context.Context) []Check {
	checks := make([]Check, 2)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		checks[0] = r.awsIdentity(ctx)
		return nil
	})
	g.Go(func() error {
		checks[1] = r.engineBinary(ctx)
		return nil
	})
	_ = g.Wait()

	return checks
}

func (r *Runner) awsIdentity(ctx context.Context) Check {
	check := Check{Name: "AWS credentials"}

	out, err := r.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		check.Err = fmt.Errorf("AWS credentials do not resolve: %w", err)
		return check
	}

	check.Detail = aws.ToString(out.Arn)
	return check
}

func (r *Runner) engineBinary(ctx context.Context) Check {
	check := Check{Name: "Pulumi engine"}

	path, err := r.lookPath("pulumi")
	if err != nil {
		check.Err = fmt.Errorf("pulumi binary not found on PATH: %w", err)
		return check
	}

	version, err := r.version(ctx, path)
	if err != nil {
		check.Err = fmt.Errorf("error reading pulumi version: %w", err)
		return check
	}

	check.Detail = fmt.Sprintf("%s (%s)", path, version)
	return check
}

func pulumiVersion(ctx context.Context, bin string) (string, error) {
	out, err := exec.CommandContext(ctx, bin, "version").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

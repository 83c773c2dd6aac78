// Package engine drives the external Pulumi engine through the Automation
// API. It binds the inline stack program to a named stack; diffing,
// dependency ordering and apply belong to the engine, not to this package.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optpreview"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Engine runs stack operations against one named stack of one project.
type Engine struct {
	projectName string
	stackName   string
	program     pulumi.RunFunc
	stdout      io.Writer
	stderr      io.Writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithProgressWriters overrides where engine progress is streamed.
// The default is the process stdout/stderr.
func WithProgressWriters(stdout, stderr io.Writer) Option {
	return func(e *Engine) {
		e.stdout = stdout
		e.stderr = stderr
	}
}

// New returns an Engine for the given project and stack running the
// provided inline program.
func New(projectName, stackName string, program pulumi.RunFunc, opts ...Option) *Engine {
	e := &Engine{
		projectName: projectName,
		stackName:   stackName,
		program:     program,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StackName returns the stack this engine operates on.
func (e *Engine) StackName() string {
	return e.stackName
}

func (e *Engine) selectStack(ctx context.Context) (auto.Stack, error) {
	stack, err := auto.UpsertStackInlineSource(ctx, e.stackName, e.projectName, e.program)
	if err != nil {
		return auto.Stack{}, fmt.Errorf("error selecting stack %q: %w", e.stackName, err)
	}
	return stack, nil
}

// Up creates or updates the stack's resources.
func (e *Engine) Up(ctx context.Context) (auto.UpResult, error) {
	stack, err := e.selectStack(ctx)
	if err != nil {
		return auto.UpResult{}, err
	}

	result, err := stack.Up(ctx, optup.ProgressStreams(e.stdout), optup.ErrorProgressStreams(e.stderr))
	if err != nil {
		return auto.UpResult{}, fmt.Errorf("error updating stack %q: %w", e.stackName, err)
	}
	return result, nil
}

// Preview shows what an Up would change without applying anything.
func (e *Engine) Preview(ctx context.Context) (auto.PreviewResult, error) {
	stack, err := e.selectStack(ctx)
	if err != nil {
		return auto.PreviewResult{}, err
	}

	result, err := stack.Preview(ctx, optpreview.ProgressStreams(e.stdout), optpreview.ErrorProgressStreams(e.stderr))
	if err != nil {
		return auto.PreviewResult{}, fmt.Errorf("error previewing stack %q: %w", e.stackName, err)
	}
	return result, nil
}

// Destroy deletes the stack's resources.
func (e *Engine) Destroy(ctx context.Context) (auto.DestroyResult, error) {
	stack, err := e.selectStack(ctx)
	if err != nil {
		return auto.DestroyResult{}, err
	}

	result, err := stack.Destroy(ctx, optdestroy.ProgressStreams(e.stdout), optdestroy.ErrorProgressStreams(e.stderr))
	if err != nil {
		return auto.DestroyResult{}, fmt.Errorf("error destroying stack %q: %w", e.stackName, err)
	}
	return result, nil
}

// Outputs returns the stack's current output values.
func (e *Engine) Outputs(ctx context.Context) (auto.OutputMap, error) {
	stack, err := e.selectStack(ctx)
	if err != nil {
		return nil, err
	}

	outputs, err := stack.Outputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading outputs of stack %q: %w", e.stackName, err)
	}
	return outputs, nil
}

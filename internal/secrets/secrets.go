// Package secrets inspects the registry credential parameters the stack
// stores in SSM. Inspection is read-only and never decrypts values; it lets
// operators confirm that a credential rotation actually landed.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// SSMAPI is the subset of the SSM client used for parameter inspection.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Status describes one credential parameter without exposing its value.
type Status struct {
	Name         string
	Exists       bool
	Version      int64
	LastModified time.Time
}

// Inspector reads parameter metadata from SSM.
type Inspector struct {
	client SSMAPI
}

// NewInspector returns an Inspector using the given SSM client.
func NewInspector(client SSMAPI) *Inspector {
	return &Inspector{client: client}
}

// Status reports the state of each named parameter. A missing parameter is
// reported with Exists false rather than as an error; any other API failure
// aborts the inspection.
func (i *Inspector) Status(ctx context.Context, names ...string) ([]Status, error) {
	statuses := make([]Status, 0, len(names))

	for _, name := range names {
		out, err := i.client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(name),
			WithDecryption: aws.Bool(false),
		})
		if err != nil {
			var notFound *types.ParameterNotFound
			if errors.As(err, &notFound) {
				statuses = append(statuses, Status{Name: name})
				continue
			}
			return nil, fmt.Errorf("error describing parameter %q: %w", name, err)
		}

		status := Status{
			Name:    name,
			Exists:  true,
			Version: out.Parameter.Version,
		}
		if out.Parameter.LastModifiedDate != nil {
			status.LastModified = *out.Parameter.LastModifiedDate
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

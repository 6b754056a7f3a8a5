// Package dialogue phrases the notice shown under the current wizard step.
package dialogue

import (
	"context"

	"github.com/tbxark/tripwizard/types"
)

// Request describes the wizard right after an action. Failure holds the
// remote or navigation error the action ran into, if any.
type Request struct {
	Step    types.StepDescriptor
	Index   int
	Total   int
	Phase   types.Phase
	Answers types.Answers
	Errors  []types.FieldError
	Failure error
}

type Generator interface {
	GenerateDialogue(ctx context.Context, req *Request) (string, error)
}

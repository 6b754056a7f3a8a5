package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tbxark/tripwizard/enrich"
	"github.com/tbxark/tripwizard/submit"
	"github.com/tbxark/tripwizard/types"
	"github.com/tbxark/tripwizard/wizard"
)

type LocalDialogueGenerator struct {
	MergeAllFieldErrors bool
}

func (g *LocalDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	if req.Failure != nil {
		return FailureNotice(req.Failure), nil
	}
	switch req.Phase {
	case types.PhaseCollecting:
		if len(req.Errors) > 0 {
			var sb strings.Builder
			for _, err := range req.Errors {
				sb.WriteString(fmt.Sprintf("%s: %s\n", err.DisplayName, err.Message))
				if !g.MergeAllFieldErrors {
					break
				}
			}
			return strings.TrimRight(sb.String(), "\n"), nil
		}
		if req.Total > 0 {
			return fmt.Sprintf("Step %d of %d: %s.", req.Index+1, req.Total, req.Step.Title), nil
		}
		return "Please continue filling in the trip.", nil
	case types.PhaseConfirming:
		return "Every step is complete. Review the summary and confirm to publish the trip.", nil
	case types.PhaseSubmitted:
		return "The trip has been saved.", nil
	case types.PhaseCancelled:
		return "Trip creation was cancelled.", nil
	default:
		return "Please continue filling in the trip.", nil
	}
}

// FailureNotice phrases an error from a wizard action for the user. Every
// notice leaves the user a way to carry on.
func FailureNotice(err error) string {
	var parseFailure *enrich.ParseFailure
	var generationFailure *enrich.GenerationFailure
	var submissionFailure *submit.SubmissionFailure
	switch {
	case errors.As(err, &parseFailure):
		return fmt.Sprintf("The trip description could not be analysed (%v). Try again or start without a description.", parseFailure.Err)
	case errors.As(err, &generationFailure):
		return "The programme could not be generated. Add the timeline by hand or try again."
	case errors.As(err, &submissionFailure):
		switch submissionFailure.Phase {
		case submit.PhaseEnrich:
			return "Photos and pricing could not be gathered. Your answers are kept, try again."
		case submit.PhaseRender:
			return "The preview could not be rendered. Your answers are kept, try again."
		default:
			return "The trip could not be saved. Your answers are kept, try again."
		}
	case errors.Is(err, enrich.ErrPlacesDisabled):
		return "Hotel search is not available. Type the hotel details by hand."
	case errors.Is(err, wizard.ErrBusy):
		return "Please wait for the current request to finish."
	case errors.Is(err, wizard.ErrNotOptional):
		return "This step cannot be skipped."
	case errors.Is(err, wizard.ErrFinished):
		return "This trip is already finished."
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}

type FailbackDialogueGenerator struct {
	generators []Generator
}

func NewFailbackDialogueGenerator(generators ...Generator) *FailbackDialogueGenerator {
	return &FailbackDialogueGenerator{generators: generators}
}

func (g *FailbackDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	var lastErr error
	for _, generator := range g.generators {
		message, err := generator.GenerateDialogue(ctx, req)
		if err == nil {
			return message, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no dialogue generator configured")
	}
	return "", fmt.Errorf("all dialogue generators failed: %w", lastErr)
}

package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tbxark/tripwizard/enrich"
	"github.com/tbxark/tripwizard/internal/llmtest"
	"github.com/tbxark/tripwizard/submit"
	"github.com/tbxark/tripwizard/types"
	"github.com/tbxark/tripwizard/wizard"
)

func TestLocalDialogueByPhase(t *testing.T) {
	g := &LocalDialogueGenerator{}
	step := types.StepDescriptor{Kind: types.StepDestination, Title: "Destination"}
	cases := []struct {
		req  Request
		want string
	}{
		{Request{Step: step, Index: 1, Total: 8, Phase: types.PhaseCollecting}, "Step 2 of 8: Destination."},
		{Request{Phase: types.PhaseConfirming}, "Every step is complete. Review the summary and confirm to publish the trip."},
		{Request{Phase: types.PhaseSubmitted}, "The trip has been saved."},
		{Request{Phase: types.PhaseCancelled}, "Trip creation was cancelled."},
	}
	for _, tc := range cases {
		got, err := g.GenerateDialogue(context.Background(), &tc.req)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("phase %s: got %q, want %q", tc.req.Phase, got, tc.want)
		}
	}
}

func TestLocalDialogueFieldErrors(t *testing.T) {
	errs := []types.FieldError{
		{Field: types.FieldPrice, DisplayName: "Price", Message: "must be greater than zero"},
		{Field: types.FieldDestination, DisplayName: "Destination", Message: "is required"},
	}
	req := &Request{Phase: types.PhaseCollecting, Errors: errs}

	got, _ := (&LocalDialogueGenerator{}).GenerateDialogue(context.Background(), req)
	if got != "Price: must be greater than zero" {
		t.Errorf("got %q", got)
	}
	got, _ = (&LocalDialogueGenerator{MergeAllFieldErrors: true}).GenerateDialogue(context.Background(), req)
	if got != "Price: must be greater than zero\nDestination: is required" {
		t.Errorf("got %q", got)
	}
}

func TestFailureNotice(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"parse":    {&enrich.ParseFailure{Err: errors.New("503")}, "could not be analysed (503)"},
		"program":  {fmt.Errorf("wrap: %w", &enrich.GenerationFailure{Err: errors.New("x")}), "programme could not be generated"},
		"render":   {&submit.SubmissionFailure{Phase: submit.PhaseRender, Err: errors.New("x")}, "preview could not be rendered"},
		"persist":  {&submit.SubmissionFailure{Phase: submit.PhasePersist, Err: errors.New("x")}, "could not be saved"},
		"busy":     {fmt.Errorf("%w: program in flight", wizard.ErrBusy), "wait"},
		"places":   {enrich.ErrPlacesDisabled, "by hand"},
		"fallback": {errors.New("boom"), "Something went wrong: boom"},
	}
	for name, tc := range cases {
		if got := FailureNotice(tc.err); !strings.Contains(got, tc.want) {
			t.Errorf("%s: %q does not contain %q", name, got, tc.want)
		}
	}
}

func TestToolBasedDialogueGenerator(t *testing.T) {
	chat := llmtest.New(llmtest.Content("  Tell me where the group is heading.  "))
	g := NewToolBasedDialogueGenerator(chat, WithDialogueLang("French"))
	req := &Request{
		Step:    types.StepDescriptor{Kind: types.StepDestination, Title: "Destination"},
		Total:   8,
		Phase:   types.PhaseCollecting,
		Answers: types.Answers{types.FieldHotelName: "Hotel Metropole"},
	}
	got, err := g.GenerateDialogue(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Tell me where the group is heading." {
		t.Errorf("got %q", got)
	}
	prompt := chat.LastPrompt()
	if !strings.Contains(prompt[0].Content, "Reply in French") {
		t.Errorf("system prompt = %q", prompt[0].Content)
	}
	if !strings.Contains(prompt[1].Content, "Hotel Metropole") || !strings.Contains(prompt[1].Content, "Destination (1 of 8)") {
		t.Errorf("user prompt = %q", prompt[1].Content)
	}
}

func TestFailbackDialogueGenerator(t *testing.T) {
	g := NewFailbackDialogueGenerator(
		NewToolBasedDialogueGenerator(llmtest.New(llmtest.Fail(errors.New("down")))),
		&LocalDialogueGenerator{},
	)
	got, err := g.GenerateDialogue(context.Background(), &Request{Phase: types.PhaseSubmitted})
	if err != nil || got != "The trip has been saved." {
		t.Errorf("got %q, %v", got, err)
	}
	if _, err := NewFailbackDialogueGenerator().GenerateDialogue(context.Background(), &Request{}); err == nil {
		t.Error("expected an error without generators")
	}
}

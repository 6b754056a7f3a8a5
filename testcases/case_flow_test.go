package testcases

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/tripwizard"
	"github.com/tbxark/tripwizard/dialogue"
	"github.com/tbxark/tripwizard/submit"
	"github.com/tbxark/tripwizard/types"
	"github.com/tbxark/tripwizard/wizard"
)

// TestDayTripFlow walks a parsed day trip to a saved listing, generating the
// programme on the way.
func TestDayTripFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assistant, store := NewTestAssistant(t)

	run, resp, err := assistant.Start(ctx, "Day trip to Ghent by coach, Gravensteen castle and a boat tour, 79 euros")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Logf("start: %s", resp.Message)

	for run.State.Phase() == types.PhaseCollecting {
		step := run.State.Current()
		if step.Kind == types.StepProgram {
			if resp, err = assistant.GenerateProgram(ctx, run); err != nil {
				t.Fatalf("GenerateProgram: %v", err)
			}
		}
		values := types.Answers{}
		if step.Kind == types.StepPricing && !run.State.Answers().Has(types.FieldPrice) {
			values[types.FieldPrice] = 79.0
		}
		resp, err = assistant.Dispatch(ctx, run, wizard.Advance(values))
		if err != nil {
			t.Fatalf("Dispatch on %s: %v", step.Kind, err)
		}
		if !resp.Result.Valid() {
			t.Fatalf("step %s rejected: %s", step.Kind, types.FormatFieldErrors(resp.Result.Errors))
		}
	}

	if _, err := assistant.Preview(ctx, run); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	resp, err = assistant.Confirm(ctx, run, submit.StatusProposed)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	saved, err := store.Get(ctx, resp.Trip.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(saved.FormData.Program(types.FieldProgram)) == 0 {
		t.Error("saved day trip has no programme")
	}
}

func TestToolBasedDialogue(t *testing.T) {
	t.Parallel()
	generator := dialogue.NewToolBasedDialogueGenerator(InitChatModel(t), dialogue.WithDialogueLang("French"))
	message, err := generator.GenerateDialogue(context.Background(), &dialogue.Request{
		Step:  types.StepDescriptor{Kind: types.StepPricing, Title: "Price"},
		Index: 6,
		Total: 8,
		Phase: types.PhaseCollecting,
		Errors: []types.FieldError{{
			Field:       types.FieldPrice,
			DisplayName: types.DisplayName(types.FieldPrice),
			Message:     "The price must be greater than zero.",
		}},
	})
	if err != nil {
		t.Fatalf("GenerateDialogue: %v", err)
	}
	if strings.TrimSpace(message) == "" {
		t.Error("empty message")
	}
	t.Logf("dialogue: %s", message)
}

func TestPlanAgentRunner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assistant, _ := NewTestAssistant(t)
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: tripwizard.NewPlanAgent("TripPlanner", "Turns a trip request into a listing plan", assistant),
	})

	iter := runner.Run(ctx, []adk.Message{schema.UserMessage("A week in Crete, flight and all inclusive hotel")})
	event, ok := iter.Next()
	if !ok {
		t.Fatal("no event")
	}
	if event.Err != nil {
		t.Fatalf("agent error: %v", event.Err)
	}
	msg, err := event.Output.MessageOutput.GetMessage()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg.Content, "Crete") {
		t.Errorf("plan does not mention the destination: %s", msg.Content)
	}
}

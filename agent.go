package tripwizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/tripwizard/steps"
)

var _ adk.Agent = (*PlanAgent)(nil)

// PlanAgent answers a trip request with the step plan the wizard would walk
// through, so the planner can sit inside a larger agent graph.
type PlanAgent struct {
	name, description string
	assistant         *Assistant
}

func NewPlanAgent(name, description string, assistant *Assistant) *PlanAgent {
	return &PlanAgent{name: name, description: description, assistant: assistant}
}

func (a *PlanAgent) Name(context.Context) string        { return a.name }
func (a *PlanAgent) Description(context.Context) string { return a.description }

// Run plans the last message of input and emits a single assistant event.
func (a *PlanAgent) Run(ctx context.Context, input *adk.AgentInput, _ ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer gen.Close()
		defer func() {
			if r := recover(); r != nil {
				gen.Send(&adk.AgentEvent{Err: fmt.Errorf("plan agent panicked: %v", r)})
			}
		}()
		plan, err := a.plan(ctx, input)
		if err != nil {
			gen.Send(&adk.AgentEvent{Err: err})
			return
		}
		msg := schema.AssistantMessage(plan, nil)
		gen.Send(&adk.AgentEvent{
			AgentName: a.name,
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{Message: msg, Role: schema.Assistant},
			},
		})
	}()
	return iter
}

func (a *PlanAgent) plan(ctx context.Context, input *adk.AgentInput) (string, error) {
	if input == nil || len(input.Messages) == 0 {
		return "", errors.New("plan agent needs a trip request message")
	}
	request := input.Messages[len(input.Messages)-1].Content
	run, resp, err := a.assistant.Start(ctx, request)
	if err != nil {
		return "", fmt.Errorf("trip planning failed: %w", err)
	}
	var b strings.Builder
	if dest := run.Intent.Destination; dest != "" {
		fmt.Fprintf(&b, "Trip to %s\n\n", dest)
	}
	b.WriteString(steps.FormatPlan(run.State.Steps()))
	b.WriteString("\n")
	b.WriteString(resp.Message)
	return b.String(), nil
}

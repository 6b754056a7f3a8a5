package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/tripwizard/structured"
	"github.com/tbxark/tripwizard/types"
)

const (
	generateProgramToolName        = "propose_day_programme"
	generateProgramToolDescription = "Return a realistic hour-by-hour programme for a one-day coach trip."

	defaultDepartureTime    = "08:00"
	defaultReturnTime       = "20:00"
	defaultDepartureAddress = "the meeting point"
)

type programPayload struct {
	Program []types.ProgramEntry `json:"program" jsonschema:"required,description=Timeline entries in chronological order"`
}

func (r ProgramRequest) withDefaults() ProgramRequest {
	if r.DepartureTime == "" {
		r.DepartureTime = defaultDepartureTime
	}
	if r.ReturnTime == "" {
		r.ReturnTime = defaultReturnTime
	}
	if strings.TrimSpace(r.DepartureAddress) == "" {
		r.DepartureAddress = defaultDepartureAddress
	}
	return r
}

type ToolBasedProgramGenerator struct {
	chain *structured.Chain[ProgramRequest, programPayload]
}

func NewToolBasedProgramGenerator(chatModel model.ToolCallingChatModel) (*ToolBasedProgramGenerator, error) {
	chain, err := structured.NewChain[ProgramRequest, programPayload](
		chatModel,
		buildProgramPrompt,
		generateProgramToolName,
		generateProgramToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedProgramGenerator{chain: chain}, nil
}

func (g *ToolBasedProgramGenerator) GenerateProgram(ctx context.Context, req ProgramRequest) (types.Program, error) {
	req = req.withDefaults()
	slog.Debug("Generating programme", "destination", req.Destination, "activities", req.Activities)
	payload, err := g.chain.Invoke(ctx, req)
	if err != nil {
		return nil, &GenerationFailure{Err: err}
	}
	program := cleanProgram(payload.Program)
	if len(program) == 0 {
		return nil, &GenerationFailure{Err: errors.New("model returned an empty programme")}
	}
	return program, nil
}

func buildProgramPrompt(ctx context.Context, req ProgramRequest) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`You plan day trips for a coach travel agency.

Build a realistic timeline that:
- starts with the departure from the departure address at the departure time,
- includes travel time, a coffee break on the way and a lunch slot,
- visits the requested activities in a sensible order,
- ends with the arrival back at the departure address at the return time.

Use HH:MM times. Call the '%s' tool with the result.`, generateProgramToolName)

	activities := "none given, suggest the main sights"
	if len(req.Activities) > 0 {
		activities = strings.Join(req.Activities, ", ")
	}
	userPrompt := fmt.Sprintf("Destination: %s\nActivities: %s\nDeparture: %s from %s\nReturn: %s to %s",
		req.Destination, activities, req.DepartureTime, req.DepartureAddress, req.ReturnTime, req.DepartureAddress)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	}, nil
}

func cleanProgram(in []types.ProgramEntry) types.Program {
	out := make(types.Program, 0, len(in))
	for _, entry := range in {
		entry.Time = strings.TrimSpace(entry.Time)
		entry.Activity = strings.TrimSpace(entry.Activity)
		if entry.Activity == "" {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// TemplateProgramGenerator builds a fixed timeline without any remote call.
// At most three activities are scheduled, two hours apart from 14:00.
type TemplateProgramGenerator struct{}

func (TemplateProgramGenerator) GenerateProgram(ctx context.Context, req ProgramRequest) (types.Program, error) {
	req = req.withDefaults()
	program := types.Program{
		{Time: req.DepartureTime, Activity: "Departure from " + req.DepartureAddress},
		{Time: "10:30", Activity: "Coffee break"},
		{Time: "12:00", Activity: "Arrival in " + req.Destination},
		{Time: "12:30", Activity: "Free lunch"},
	}
	freeTime := "14:00"
	for i, activity := range cleanList(req.Activities) {
		if i == 3 {
			break
		}
		hour := 14 + i*2
		program = append(program, types.ProgramEntry{Time: fmt.Sprintf("%02d:00", hour), Activity: "Visit: " + activity})
		freeTime = fmt.Sprintf("%02d:30", hour+1)
	}
	program = append(program,
		types.ProgramEntry{Time: freeTime, Activity: "Free time"},
		types.ProgramEntry{Time: "17:30", Activity: "Return journey to " + req.DepartureAddress},
		types.ProgramEntry{Time: req.ReturnTime, Activity: "Arrival in " + req.DepartureAddress},
	)
	return program, nil
}

type FailbackProgramGenerator struct {
	generators []ProgramGenerator
}

func NewFailbackProgramGenerator(generators ...ProgramGenerator) *FailbackProgramGenerator {
	return &FailbackProgramGenerator{generators: generators}
}

func (g *FailbackProgramGenerator) GenerateProgram(ctx context.Context, req ProgramRequest) (types.Program, error) {
	var lastErr error
	for _, generator := range g.generators {
		program, err := generator.GenerateProgram(ctx, req)
		if err == nil {
			return program, nil
		}
		slog.Debug("Programme generator failed, trying next", "error", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no programme generator configured")
	}
	return nil, &GenerationFailure{Err: fmt.Errorf("all programme generators failed: %w", lastErr)}
}

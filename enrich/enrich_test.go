package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tbxark/tripwizard/internal/llmtest"
	"github.com/tbxark/tripwizard/types"
)

func newParser(t *testing.T, replies ...llmtest.Reply) *ToolBasedIntentParser {
	t.Helper()
	p, err := NewToolBasedIntentParser(llmtest.New(replies...))
	if err != nil {
		t.Fatalf("NewToolBasedIntentParser: %v", err)
	}
	return p
}

func TestParseIntentNormalizes(t *testing.T) {
	p := newParser(t, llmtest.ToolCall(parseIntentToolName, `{
		"destination": " Rome ",
		"transport_type": "Train",
		"activities": ["Colosseum", " ", "Vatican"],
		"price": 899,
		"hotel_name": "Hotel Artemide",
		"estimated_duration": 4,
		"stars": 7,
		"meal_plan": "demi_pension",
		"departure_city": "Brussels"
	}`))

	got, err := p.ParseIntent(context.Background(), "4 days in Rome by train")
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	want := types.Intent{
		Destination:       "Rome",
		TransportMode:     types.TransportRail,
		Activities:        []string{"Colosseum", "Vatican"},
		Price:             types.Ptr(899.0),
		HotelName:         types.Ptr("Hotel Artemide"),
		EstimatedDuration: types.Ptr(4),
		StarRating:        types.Ptr(5),
		MealPlan:          types.Ptr(types.MealHalfBoard),
		DepartureCity:     types.Ptr("Brussels"),
		Travellers:        types.Ptr(DefaultTravellers),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("intent mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIntentUnknownValues(t *testing.T) {
	p := newParser(t, llmtest.ToolCall(parseIntentToolName,
		`{"destination":"Oslo","transport_type":"hovercraft","stars":0.2,"meal_plan":"snacks","num_people":6,"price":-3}`))

	got, err := p.ParseIntent(context.Background(), "Oslo")
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if got.TransportMode != types.TransportAir {
		t.Errorf("transport = %q, want air", got.TransportMode)
	}
	if got.StarRating == nil || *got.StarRating != 1 {
		t.Errorf("stars = %v, want 1", got.StarRating)
	}
	if got.MealPlan != nil {
		t.Errorf("meal plan = %v, want nil", *got.MealPlan)
	}
	if got.Price != nil {
		t.Errorf("price = %v, want nil", *got.Price)
	}
	if got.Travellers == nil || *got.Travellers != 6 {
		t.Errorf("travellers = %v", got.Travellers)
	}
}

func TestParseIntentMalformedDegradesToEmpty(t *testing.T) {
	p := newParser(t, llmtest.Content("Sorry, I could not understand."))
	got, err := p.ParseIntent(context.Background(), "???")
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if !got.Empty() {
		t.Errorf("intent = %+v, want empty", got)
	}
}

func TestParseIntentRemoteFailure(t *testing.T) {
	p := newParser(t, llmtest.Fail(errors.New("503 upstream")))
	_, err := p.ParseIntent(context.Background(), "Rome")
	var failure *ParseFailure
	if !errors.As(err, &failure) {
		t.Fatalf("err = %v, want ParseFailure", err)
	}
}

func TestParseIntentPromptCarriesText(t *testing.T) {
	chat := llmtest.New(llmtest.ToolCall(parseIntentToolName, `{"destination":"Bruges"}`))
	p, err := NewToolBasedIntentParser(chat)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.ParseIntent(context.Background(), "a day in Bruges"); err != nil {
		t.Fatal(err)
	}
	prompt := chat.LastPrompt()
	if len(prompt) != 2 || prompt[1].Content != "a day in Bruges" {
		t.Errorf("prompt = %+v", prompt)
	}
}

func TestToolBasedProgramGenerator(t *testing.T) {
	chat := llmtest.New(llmtest.ToolCall(generateProgramToolName, `{"program":[
		{"time":"07:30","activity":"Departure"},
		{"time":"","activity":"  "},
		{"time":"11:00","activity":" Cathedral "}
	]}`))
	g, err := NewToolBasedProgramGenerator(chat)
	if err != nil {
		t.Fatal(err)
	}
	got, err := g.GenerateProgram(context.Background(), ProgramRequest{Destination: "Cologne", Activities: []string{"Cathedral"}})
	if err != nil {
		t.Fatalf("GenerateProgram: %v", err)
	}
	want := types.Program{{Time: "07:30", Activity: "Departure"}, {Time: "11:00", Activity: "Cathedral"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
	if user := chat.LastPrompt()[1].Content; !strings.Contains(user, "08:00 from the meeting point") {
		t.Errorf("defaults missing from prompt: %q", user)
	}
}

func TestToolBasedProgramGeneratorFailures(t *testing.T) {
	for name, reply := range map[string]llmtest.Reply{
		"remote": llmtest.Fail(errors.New("timeout")),
		"empty":  llmtest.ToolCall(generateProgramToolName, `{"program":[]}`),
		"prose":  llmtest.Content("Here is a nice day out."),
	} {
		t.Run(name, func(t *testing.T) {
			g, err := NewToolBasedProgramGenerator(llmtest.New(reply))
			if err != nil {
				t.Fatal(err)
			}
			_, err = g.GenerateProgram(context.Background(), ProgramRequest{Destination: "Ghent"})
			var failure *GenerationFailure
			if !errors.As(err, &failure) {
				t.Errorf("err = %v, want GenerationFailure", err)
			}
		})
	}
}

func TestTemplateProgramGenerator(t *testing.T) {
	got, err := TemplateProgramGenerator{}.GenerateProgram(context.Background(), ProgramRequest{
		Destination:      "Paris",
		Activities:       []string{"Louvre", "Eiffel Tower", "Montmartre", "Seine cruise"},
		DepartureTime:    "07:00",
		ReturnTime:       "21:00",
		DepartureAddress: "Brussels",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := types.Program{
		{Time: "07:00", Activity: "Departure from Brussels"},
		{Time: "10:30", Activity: "Coffee break"},
		{Time: "12:00", Activity: "Arrival in Paris"},
		{Time: "12:30", Activity: "Free lunch"},
		{Time: "14:00", Activity: "Visit: Louvre"},
		{Time: "16:00", Activity: "Visit: Eiffel Tower"},
		{Time: "18:00", Activity: "Visit: Montmartre"},
		{Time: "19:30", Activity: "Free time"},
		{Time: "17:30", Activity: "Return journey to Brussels"},
		{Time: "21:00", Activity: "Arrival in Brussels"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateProgramWithoutActivities(t *testing.T) {
	got, _ := TemplateProgramGenerator{}.GenerateProgram(context.Background(), ProgramRequest{Destination: "Lille"})
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	if got[4] != (types.ProgramEntry{Time: "14:00", Activity: "Free time"}) {
		t.Errorf("free time entry = %+v", got[4])
	}
	if got[0].Time != "08:00" || got[6].Time != "20:00" {
		t.Errorf("default times not applied: %+v", got)
	}
}

type failingGenerator struct{ err error }

func (f failingGenerator) GenerateProgram(context.Context, ProgramRequest) (types.Program, error) {
	return nil, f.err
}

func TestFailbackProgramGenerator(t *testing.T) {
	g := NewFailbackProgramGenerator(failingGenerator{errors.New("down")}, TemplateProgramGenerator{})
	got, err := g.GenerateProgram(context.Background(), ProgramRequest{Destination: "Namur"})
	if err != nil {
		t.Fatalf("GenerateProgram: %v", err)
	}
	if got[2].Activity != "Arrival in Namur" {
		t.Errorf("unexpected program %+v", got)
	}

	boom := errors.New("down")
	_, err = NewFailbackProgramGenerator(failingGenerator{boom}).GenerateProgram(context.Background(), ProgramRequest{})
	var failure *GenerationFailure
	if !errors.As(err, &failure) || !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if _, err := NewFailbackProgramGenerator().GenerateProgram(context.Background(), ProgramRequest{}); err == nil {
		t.Error("empty failback should fail")
	}
}

package render

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/tbxark/tripwizard/steps"
	"github.com/tbxark/tripwizard/types"
)

func roundTrip(t *testing.T, r *Registry, step types.StepDescriptor, answers types.Answers) types.Answers {
	t.Helper()
	markup, err := r.Render(step, answers)
	if err != nil {
		t.Fatalf("Render(%s): %v", step.Kind, err)
	}
	form, err := FormValues(string(markup))
	if err != nil {
		t.Fatalf("FormValues(%s): %v", step.Kind, err)
	}
	collected, err := r.Collect(step.Kind, form)
	if err != nil {
		t.Fatalf("Collect(%s): %v", step.Kind, err)
	}
	return collected
}

func TestRoundTripReturnsSeeds(t *testing.T) {
	r := DefaultRegistry()
	intents := map[string]types.Intent{
		"multi day defaults": {},
		"day trip defaults":  {IsDayTrip: true},
		"multi day seeded": {
			Destination:   "Vienna",
			Activities:    []string{"Opera", "Prater"},
			HotelName:     types.Ptr("Sacher"),
			StarRating:    types.Ptr(5),
			MealPlan:      types.Ptr(types.MealHalfBoard),
			Price:         types.Ptr(640.5),
			TransportMode: types.TransportRail,
		},
		"coach day trip": {
			IsDayTrip:     true,
			Destination:   "Amsterdam",
			DepartureCity: types.Ptr("Brussels"),
			TransportMode: types.TransportCoach,
		},
	}
	for name, intent := range intents {
		t.Run(name, func(t *testing.T) {
			for _, step := range steps.Build(intent) {
				got := roundTrip(t, r, step, nil)
				if diff := cmp.Diff(step.Initial, got, cmpopts.EquateEmpty()); diff != "" {
					t.Errorf("%s round trip mismatch (-seed +collected):\n%s", step.Kind, diff)
				}
			}
		})
	}
}

func TestRenderPrefersCommittedAnswers(t *testing.T) {
	r := DefaultRegistry()
	step := types.StepDescriptor{Kind: types.StepDestination, Title: "Destination", Initial: types.Answers{types.FieldDestination: "Seed"}}
	got := roundTrip(t, r, step, types.Answers{types.FieldDestination: "Committed"})
	if got.String(types.FieldDestination) != "Committed" {
		t.Errorf("destination = %q", got.String(types.FieldDestination))
	}
}

func TestRenderEscapesValues(t *testing.T) {
	r := DefaultRegistry()
	step := types.StepDescriptor{Kind: types.StepDestination, Title: "Destination"}
	markup, err := r.Render(step, types.Answers{types.FieldDestination: `"><script>alert(1)</script>`})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(markup), "<script>") {
		t.Errorf("value not escaped: %s", markup)
	}
}

func TestActivitiesDropBlankRows(t *testing.T) {
	h := activitiesHandler{}
	got := h.Collect(url.Values{types.FieldActivities: {"Louvre", "  ", "", " Orsay "}})
	if diff := cmp.Diff([]string{"Louvre", "Orsay"}, got.Strings(types.FieldActivities)); diff != "" {
		t.Errorf("activities (-want +got):\n%s", diff)
	}
}

func TestProgramKeepsEnteredOrder(t *testing.T) {
	h := programHandler{}
	form := url.Values{
		formProgramTime:     {"14:00", "09:00", "12:00", ""},
		formProgramActivity: {"Museum", "Departure", "  ", ""},
	}
	got := h.Collect(form).Program(types.FieldProgram)
	want := types.Program{{Time: "14:00", Activity: "Museum"}, {Time: "09:00", Activity: "Departure"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("program (-want +got):\n%s", diff)
	}
}

func TestProgramRoundTripWithEntries(t *testing.T) {
	r := DefaultRegistry()
	step := types.StepDescriptor{Kind: types.StepProgram, Title: "Day programme", Initial: types.Answers{types.FieldProgram: types.Program{}}}
	program := types.Program{{Time: "08:00", Activity: "Departure"}, {Time: "11:30", Activity: "Arrival"}}
	got := roundTrip(t, r, step, types.Answers{types.FieldProgram: program})
	if diff := cmp.Diff(program, got.Program(types.FieldProgram)); diff != "" {
		t.Errorf("program (-want +got):\n%s", diff)
	}
	markup, _ := r.Render(step, types.Answers{types.FieldProgram: program})
	if !strings.Contains(string(markup), "Generate again") {
		t.Error("generated programme should offer a retry control")
	}
}

func TestTransportCoachFields(t *testing.T) {
	h := transportHandler{}
	coach := h.Collect(url.Values{
		types.FieldTransportMode:    {"coach"},
		types.FieldDepartureAddress: {" Gare du Midi "},
		types.FieldTravelHours:      {"2"},
		types.FieldTravelMinutes:    {"75"},
	})
	want := types.Answers{
		types.FieldTransportMode:    types.TransportCoach,
		types.FieldDepartureAddress: "Gare du Midi",
		types.FieldTravelHours:      3,
		types.FieldTravelMinutes:    15,
	}
	if diff := cmp.Diff(want, coach); diff != "" {
		t.Errorf("coach (-want +got):\n%s", diff)
	}

	air := h.Collect(url.Values{
		types.FieldTransportMode:    {"air"},
		types.FieldDepartureAddress: {"ignored"},
	})
	if diff := cmp.Diff(types.Answers{types.FieldTransportMode: types.TransportAir}, air); diff != "" {
		t.Errorf("air (-want +got):\n%s", diff)
	}

	step := types.StepDescriptor{Kind: types.StepTransport, Title: "Transport"}
	markup, err := h.Render(step, types.Answers{types.FieldTransportMode: types.TransportAir, types.FieldDepartureAddress: "x"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	form, _ := FormValues(string(markup))
	if form.Has(types.FieldDepartureAddress) {
		t.Error("non-coach render submits a departure address")
	}
}

func TestTripTypeToggle(t *testing.T) {
	r := DefaultRegistry()
	step := types.StepDescriptor{Kind: types.StepTripType, Title: "Trip type"}
	got := roundTrip(t, r, step, types.Answers{types.FieldIsDayTrip: true})
	if !got.Bool(types.FieldIsDayTrip) {
		t.Error("day trip toggle lost")
	}
	markup, _ := r.Render(step, types.Answers{types.FieldIsDayTrip: true})
	if strings.Count(string(markup), "checked") != 1 {
		t.Errorf("exactly one option should be checked:\n%s", markup)
	}
}

func TestValidation(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		kind   types.StepKind
		values types.Answers
		field  string
	}{
		{types.StepDestination, types.Answers{types.FieldDestination: " \t"}, types.FieldDestination},
		{types.StepDestination, types.Answers{}, types.FieldDestination},
		{types.StepPricing, types.Answers{types.FieldPrice: 0.0}, types.FieldPrice},
		{types.StepPricing, types.Answers{types.FieldPrice: -5.0}, types.FieldPrice},
		{types.StepPricing, types.Answers{}, types.FieldPrice},
		{types.StepDestination, types.Answers{types.FieldDestination: "Rome"}, ""},
		{types.StepPricing, types.Answers{types.FieldPrice: 10.0}, ""},
		{types.StepRating, types.Answers{types.FieldStarRating: 9}, ""},
	}
	for _, tt := range tests {
		errs := r.Validate(tt.kind, tt.values)
		if tt.field == "" {
			if len(errs) != 0 {
				t.Errorf("%s %v: unexpected errors %v", tt.kind, tt.values, errs)
			}
			continue
		}
		if len(errs) != 1 || errs[0].Field != tt.field {
			t.Errorf("%s %v: errors = %v", tt.kind, tt.values, errs)
		}
	}
}

func TestOptional(t *testing.T) {
	r := DefaultRegistry()
	for _, kind := range []types.StepKind{types.StepDestination, types.StepPricing, types.StepSummary} {
		if r.Optional(kind) {
			t.Errorf("%s should be required", kind)
		}
	}
	for _, kind := range []types.StepKind{types.StepActivities, types.StepLodging, types.StepTripType} {
		if !r.Optional(kind) {
			t.Errorf("%s should be optional", kind)
		}
	}
}

func TestMissingHandler(t *testing.T) {
	r := NewRegistry(destinationHandler{})
	_, err := r.Render(types.StepDescriptor{Kind: types.StepPricing}, nil)
	if !errors.Is(err, ErrNoHandler) {
		t.Errorf("err = %v", err)
	}
}

func TestSummaryListsAnswers(t *testing.T) {
	r := DefaultRegistry()
	markup, err := r.Render(types.StepDescriptor{Kind: types.StepSummary, Title: "Summary"}, types.Answers{
		types.FieldDestination: "Porto",
		types.FieldActivities:  []string{"Ribeira", "Port cellars"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(markup), "Porto") || !strings.Contains(string(markup), "Ribeira, Port cellars") {
		t.Errorf("summary markup:\n%s", markup)
	}
}

func TestFormValues(t *testing.T) {
	form, err := FormValues(`<form>
<input name="a" value="1"><input name="a" value="2">
<input type="radio" name="r" value="x"><input type="radio" name="r" value="y" checked>
<input name="d" value="skip" disabled>
<button name="b" value="c">go</button>
<select name="s"><option value="1">one</option><option selected>two</option></select>
<textarea name="t">hello</textarea>
</form>`)
	if err != nil {
		t.Fatalf("FormValues: %v", err)
	}
	want := url.Values{"a": {"1", "2"}, "r": {"y"}, "s": {"two"}, "t": {"hello"}}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Errorf("form values (-want +got):\n%s", diff)
	}
}

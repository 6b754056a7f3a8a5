package steps

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tbxark/tripwizard/types"
)

func kinds(list []types.StepDescriptor) []types.StepKind {
	out := make([]types.StepKind, 0, len(list))
	for _, desc := range list {
		out = append(out, desc.Kind)
	}
	return out
}

func TestBuildOrder(t *testing.T) {
	tests := []struct {
		name   string
		intent types.Intent
		want   []types.StepKind
	}{
		{
			name:   "day trip",
			intent: types.Intent{IsDayTrip: true},
			want: []types.StepKind{
				types.StepDestination, types.StepActivities, types.StepTransport, types.StepTripType,
				types.StepSchedule, types.StepProgram, types.StepPricing, types.StepSummary,
			},
		},
		{
			name:   "multi day",
			intent: types.Intent{IsDayTrip: false},
			want: []types.StepKind{
				types.StepLodging, types.StepDestination, types.StepActivities, types.StepTransport, types.StepTripType,
				types.StepDates, types.StepRating, types.StepMealPlan, types.StepPricing, types.StepSummary,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.intent)
			if diff := cmp.Diff(tt.want, kinds(got)); diff != "" {
				t.Errorf("step kinds mismatch (-want +got):\n%s", diff)
			}
			if got[len(got)-1].Kind != types.StepSummary {
				t.Errorf("last step = %s", got[len(got)-1].Kind)
			}
		})
	}
}

func TestBuildSeedsFromIntent(t *testing.T) {
	intent := types.Intent{
		Destination:   "Paris",
		Activities:    []string{"Louvre"},
		HotelName:     types.Ptr("Ritz"),
		StarRating:    types.Ptr(5),
		Price:         types.Ptr(1200.0),
		TransportMode: types.TransportAir,
	}
	list := Build(intent)

	lodging := list[IndexOf(list, types.StepLodging)]
	if got := lodging.Initial.String(types.FieldHotelName); got != "Ritz" {
		t.Errorf("hotel seed = %q", got)
	}
	rating := list[IndexOf(list, types.StepRating)]
	if stars, _ := rating.Initial.Int(types.FieldStarRating); stars != 5 {
		t.Errorf("stars seed = %d", stars)
	}
	pricing := list[IndexOf(list, types.StepPricing)]
	if price, _ := pricing.Initial.Float(types.FieldPrice); price != 1200 {
		t.Errorf("price seed = %v", price)
	}
	transport := list[IndexOf(list, types.StepTransport)]
	if transport.Initial.Has(types.FieldDepartureAddress) {
		t.Error("non-coach transport should not seed a departure address")
	}
}

func TestBuildDefaults(t *testing.T) {
	list := Build(types.Intent{})

	transport := list[IndexOf(list, types.StepTransport)]
	if transport.Initial.TransportMode() != types.TransportCoach {
		t.Errorf("default transport = %q", transport.Initial.TransportMode())
	}
	if !transport.Initial.Has(types.FieldTravelHours) {
		t.Error("coach transport should seed travel duration")
	}
	dates := list[IndexOf(list, types.StepDates)]
	if days, _ := dates.Initial.Int(types.FieldDurationDays); days != DefaultDurationDays {
		t.Errorf("duration seed = %d", days)
	}
	meal := list[IndexOf(list, types.StepMealPlan)]
	if meal.Initial.MealPlan() != types.MealBreakfastOnly {
		t.Errorf("meal plan seed = %q", meal.Initial.MealPlan())
	}
	activities := list[IndexOf(list, types.StepActivities)]
	if got := activities.Initial.Strings(types.FieldActivities); got == nil || len(got) != 0 {
		t.Errorf("activities seed = %#v, want empty non-nil", got)
	}

	day := Build(types.Intent{IsDayTrip: true})
	schedule := day[IndexOf(day, types.StepSchedule)]
	if schedule.Initial.String(types.FieldDepartureTime) != "08:00" || schedule.Initial.String(types.FieldReturnTime) != "20:00" {
		t.Errorf("schedule seed = %v", schedule.Initial)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	intent := types.Intent{Destination: "Oslo", Activities: []string{"Fjords"}}
	if diff := cmp.Diff(Build(intent), Build(intent)); diff != "" {
		t.Errorf("Build is not deterministic:\n%s", diff)
	}
}

func TestRebuildKeepsCommonSeeds(t *testing.T) {
	list := Build(types.Intent{Destination: "Bruges", Price: types.Ptr(49.0), StarRating: types.Ptr(4)})
	day := Rebuild(list, true)
	if !IsDayTrip(day) {
		t.Fatal("expected day trip branch")
	}
	if IndexOf(day, types.StepLodging) != -1 {
		t.Error("day trip still has a lodging step")
	}
	if got := day[IndexOf(day, types.StepDestination)].Initial.String(types.FieldDestination); got != "Bruges" {
		t.Errorf("destination seed = %q", got)
	}
	if price, _ := day[IndexOf(day, types.StepPricing)].Initial.Float(types.FieldPrice); price != 49 {
		t.Errorf("price seed = %v", price)
	}

	back := Rebuild(day, false)
	if IndexOf(back, types.StepLodging) != 0 {
		t.Error("multi-day branch should start with lodging")
	}
}

func TestBranchFields(t *testing.T) {
	day := BranchFields(true)
	if diff := cmp.Diff([]string{types.FieldDepartureTime, types.FieldReturnTime, types.FieldProgram}, day); diff != "" {
		t.Errorf("day trip fields (-want +got):\n%s", diff)
	}
	multi := strings.Join(BranchFields(false), ",")
	for _, field := range []string{types.FieldHotelName, types.FieldDurationDays, types.FieldStarRating, types.FieldMealPlan} {
		if !strings.Contains(multi, field) {
			t.Errorf("multi-day fields missing %s", field)
		}
	}
}

func TestFormatPlan(t *testing.T) {
	out := FormatPlan(Build(types.Intent{Destination: "Ghent", IsDayTrip: true}))
	if !strings.Contains(out, "Ghent") || !strings.Contains(out, "Day programme") {
		t.Errorf("plan output:\n%s", out)
	}
}

// Package steps computes the ordered list of wizard pages for a trip intent.
package steps

import (
	"github.com/tbxark/tripwizard/types"
)

const (
	DefaultDurationDays  = 3
	DefaultStarRating    = 3
	DefaultDepartureTime = "08:00"
	DefaultReturnTime    = "20:00"
	DefaultTransport     = types.TransportCoach
	DefaultMealPlan      = types.MealBreakfastOnly
)

var titles = map[types.StepKind]string{
	types.StepLodging:     "Hotel",
	types.StepDestination: "Destination",
	types.StepActivities:  "Activities",
	types.StepTransport:   "Transport",
	types.StepTripType:    "Trip type",
	types.StepSchedule:    "Schedule",
	types.StepProgram:     "Day programme",
	types.StepDates:       "Dates",
	types.StepRating:      "Hotel rating",
	types.StepMealPlan:    "Meal plan",
	types.StepPricing:     "Pricing",
	types.StepSummary:     "Summary",
}

func Title(kind types.StepKind) string {
	return titles[kind]
}

// seeds are the initial values every step is built from.
type seeds struct {
	hotelName     string
	destination   string
	activities    []string
	transport     types.TransportMode
	departureCity string
	dayTrip       bool
	duration      int
	stars         int
	mealPlan      types.MealPlan
	price         float64
}

func seedsFromIntent(intent types.Intent) seeds {
	s := seeds{
		destination: intent.Destination,
		activities:  append([]string{}, intent.Activities...),
		transport:   intent.TransportMode,
		dayTrip:     intent.IsDayTrip,
		duration:    DefaultDurationDays,
		stars:       DefaultStarRating,
		mealPlan:    DefaultMealPlan,
	}
	if s.transport == "" {
		s.transport = DefaultTransport
	}
	if intent.HotelName != nil {
		s.hotelName = *intent.HotelName
	}
	if intent.DepartureCity != nil {
		s.departureCity = *intent.DepartureCity
	}
	if intent.EstimatedDuration != nil && *intent.EstimatedDuration > 0 {
		s.duration = *intent.EstimatedDuration
	}
	if intent.StarRating != nil {
		s.stars = *intent.StarRating
	}
	if intent.MealPlan != nil {
		s.mealPlan = *intent.MealPlan
	}
	if intent.Price != nil {
		s.price = *intent.Price
	}
	return s
}

// Build returns the step list for intent. It is pure: the same intent always
// yields the same list.
func Build(intent types.Intent) []types.StepDescriptor {
	return assemble(seedsFromIntent(intent))
}

func assemble(s seeds) []types.StepDescriptor {
	out := make([]types.StepDescriptor, 0, 10)
	if !s.dayTrip {
		out = append(out, step(types.StepLodging, types.Answers{types.FieldHotelName: s.hotelName}))
	}
	out = append(out,
		step(types.StepDestination, types.Answers{types.FieldDestination: s.destination}),
		step(types.StepActivities, types.Answers{types.FieldActivities: append([]string{}, s.activities...)}),
		step(types.StepTransport, transportSeed(s)),
		step(types.StepTripType, types.Answers{types.FieldIsDayTrip: s.dayTrip}),
	)
	if s.dayTrip {
		out = append(out,
			step(types.StepSchedule, types.Answers{
				types.FieldDepartureTime: DefaultDepartureTime,
				types.FieldReturnTime:    DefaultReturnTime,
			}),
			step(types.StepProgram, types.Answers{types.FieldProgram: types.Program{}}),
		)
	} else {
		out = append(out,
			step(types.StepDates, types.Answers{types.FieldDurationDays: s.duration, types.FieldDateStart: ""}),
			step(types.StepRating, types.Answers{types.FieldStarRating: s.stars}),
			step(types.StepMealPlan, types.Answers{types.FieldMealPlan: s.mealPlan}),
		)
	}
	out = append(out,
		step(types.StepPricing, types.Answers{types.FieldPrice: s.price}),
		step(types.StepSummary, nil),
	)
	return out
}

func transportSeed(s seeds) types.Answers {
	seed := types.Answers{types.FieldTransportMode: s.transport}
	if s.transport == types.TransportCoach {
		seed[types.FieldDepartureAddress] = s.departureCity
		seed[types.FieldTravelHours] = 0
		seed[types.FieldTravelMinutes] = 0
	}
	return seed
}

func step(kind types.StepKind, initial types.Answers) types.StepDescriptor {
	return types.StepDescriptor{Kind: kind, Title: titles[kind], Initial: initial}
}

// Rebuild regenerates the list after the day-trip flag changed. The seeds of
// the steps common to both branches are carried over from current.
func Rebuild(current []types.StepDescriptor, dayTrip bool) []types.StepDescriptor {
	s := seeds{
		transport: DefaultTransport,
		duration:  DefaultDurationDays,
		stars:     DefaultStarRating,
		mealPlan:  DefaultMealPlan,
	}
	for _, desc := range current {
		seed := desc.Initial
		switch desc.Kind {
		case types.StepLodging:
			s.hotelName = seed.String(types.FieldHotelName)
		case types.StepDestination:
			s.destination = seed.String(types.FieldDestination)
		case types.StepActivities:
			s.activities = seed.Strings(types.FieldActivities)
		case types.StepTransport:
			if mode := seed.TransportMode(); mode != "" {
				s.transport = mode
			}
			s.departureCity = seed.String(types.FieldDepartureAddress)
		case types.StepDates:
			if days, ok := seed.Int(types.FieldDurationDays); ok {
				s.duration = days
			}
		case types.StepRating:
			if stars, ok := seed.Int(types.FieldStarRating); ok {
				s.stars = stars
			}
		case types.StepMealPlan:
			if plan := seed.MealPlan(); plan != "" {
				s.mealPlan = plan
			}
		case types.StepPricing:
			s.price, _ = seed.Float(types.FieldPrice)
		}
	}
	s.dayTrip = dayTrip
	return assemble(s)
}

// IsDayTrip reports which branch a step list was built for.
func IsDayTrip(list []types.StepDescriptor) bool {
	return IndexOf(list, types.StepSchedule) >= 0
}

func IndexOf(list []types.StepDescriptor, kind types.StepKind) int {
	for i, desc := range list {
		if desc.Kind == kind {
			return i
		}
	}
	return -1
}

// BranchFields lists the answer fields that only exist on one side of the
// day-trip toggle.
func BranchFields(dayTrip bool) []string {
	var kinds []types.StepKind
	if dayTrip {
		kinds = []types.StepKind{types.StepSchedule, types.StepProgram}
	} else {
		kinds = []types.StepKind{types.StepLodging, types.StepDates, types.StepRating, types.StepMealPlan}
	}
	var fields []string
	for _, kind := range kinds {
		fields = append(fields, kind.Fields()...)
	}
	return fields
}

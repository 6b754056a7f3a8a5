package types

import "strings"

type TransportMode string

const (
	TransportAir   TransportMode = "air"
	TransportRail  TransportMode = "rail"
	TransportCoach TransportMode = "coach"
	TransportCar   TransportMode = "car"
)

var TransportModes = []TransportMode{TransportAir, TransportRail, TransportCoach, TransportCar}

var transportAliases = map[string]TransportMode{
	"air":     TransportAir,
	"plane":   TransportAir,
	"flight":  TransportAir,
	"avion":   TransportAir,
	"rail":    TransportRail,
	"train":   TransportRail,
	"coach":   TransportCoach,
	"bus":     TransportCoach,
	"autocar": TransportCoach,
	"car":     TransportCar,
	"voiture": TransportCar,
}

// ParseTransportMode accepts the canonical identifiers and a few common aliases.
func ParseTransportMode(s string) (TransportMode, bool) {
	mode, ok := transportAliases[strings.ToLower(strings.TrimSpace(s))]
	return mode, ok
}

func (m TransportMode) Label() string {
	switch m {
	case TransportAir:
		return "Plane"
	case TransportRail:
		return "Train"
	case TransportCoach:
		return "Coach"
	case TransportCar:
		return "Car"
	}
	return string(m)
}

type MealPlan string

const (
	MealRoomOnly      MealPlan = "room-only"
	MealBreakfastOnly MealPlan = "breakfast-only"
	MealHalfBoard     MealPlan = "half-board"
	MealFullBoard     MealPlan = "full-board"
	MealAllInclusive  MealPlan = "all-inclusive"
)

var MealPlans = []MealPlan{MealRoomOnly, MealBreakfastOnly, MealHalfBoard, MealFullBoard, MealAllInclusive}

var mealPlanAliases = map[string]MealPlan{
	"room-only":        MealRoomOnly,
	"room_only":        MealRoomOnly,
	"logement_seul":    MealRoomOnly,
	"breakfast-only":   MealBreakfastOnly,
	"breakfast":        MealBreakfastOnly,
	"petit_dejeuner":   MealBreakfastOnly,
	"half-board":       MealHalfBoard,
	"half_board":       MealHalfBoard,
	"demi_pension":     MealHalfBoard,
	"full-board":       MealFullBoard,
	"full_board":       MealFullBoard,
	"pension_complete": MealFullBoard,
	"all-inclusive":    MealAllInclusive,
	"all_inclusive":    MealAllInclusive,
	"all_in":           MealAllInclusive,
}

func ParseMealPlan(s string) (MealPlan, bool) {
	plan, ok := mealPlanAliases[strings.ToLower(strings.TrimSpace(s))]
	return plan, ok
}

func (p MealPlan) Label() string {
	switch p {
	case MealRoomOnly:
		return "Room only"
	case MealBreakfastOnly:
		return "Breakfast included"
	case MealHalfBoard:
		return "Half board"
	case MealFullBoard:
		return "Full board"
	case MealAllInclusive:
		return "All inclusive"
	}
	return string(p)
}

// Intent is the structured pre-fill extracted from a free-text trip request.
// Nil pointers mean the field was not mentioned and must be asked for.
type Intent struct {
	Destination       string        `json:"destination" jsonschema:"description=Destination city or region"`
	TransportMode     TransportMode `json:"transport_mode,omitempty" jsonschema:"enum=air,enum=rail,enum=coach,enum=car,description=Main means of transport"`
	IsDayTrip         bool          `json:"is_day_trip" jsonschema:"description=True when the trip starts and ends on the same day"`
	Activities        []string      `json:"activities" jsonschema:"description=Activities or sights mentioned in the request"`
	Price             *float64      `json:"price,omitempty" jsonschema:"description=Selling price per person"`
	HotelName         *string       `json:"hotel_name,omitempty" jsonschema:"description=Hotel name if one was mentioned"`
	EstimatedDuration *int          `json:"estimated_duration,omitempty" jsonschema:"description=Trip length in days"`
	StarRating        *int          `json:"star_rating,omitempty" jsonschema:"minimum=1,maximum=5,description=Hotel star rating"`
	MealPlan          *MealPlan     `json:"meal_plan,omitempty" jsonschema:"enum=room-only,enum=breakfast-only,enum=half-board,enum=full-board,enum=all-inclusive"`
	DepartureCity     *string       `json:"departure_city,omitempty" jsonschema:"description=City the group leaves from"`
	Travellers        *int          `json:"travellers,omitempty" jsonschema:"description=Number of travellers"`
}

// Empty reports whether nothing beyond defaults was extracted.
func (i Intent) Empty() bool {
	return i.Destination == "" && i.TransportMode == "" && !i.IsDayTrip && len(i.Activities) == 0 &&
		i.Price == nil && i.HotelName == nil && i.EstimatedDuration == nil && i.StarRating == nil &&
		i.MealPlan == nil && i.DepartureCity == nil && i.Travellers == nil
}

func Ptr[T any](v T) *T {
	return &v
}

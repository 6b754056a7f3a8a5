package types

type StepKind string

const (
	StepLodging     StepKind = "lodging"
	StepDestination StepKind = "destination"
	StepActivities  StepKind = "activities"
	StepTransport   StepKind = "transport"
	StepTripType    StepKind = "trip-type"
	StepSchedule    StepKind = "schedule"
	StepProgram     StepKind = "program"
	StepDates       StepKind = "dates"
	StepRating      StepKind = "rating"
	StepMealPlan    StepKind = "meal-plan"
	StepPricing     StepKind = "pricing"
	StepSummary     StepKind = "summary"
)

// Answer field names. They double as form input names and as keys of the
// persisted form data.
const (
	FieldHotelName        = "hotel_name"
	FieldHotelPlaceID     = "hotel_place_id"
	FieldHotelAddress     = "hotel_address"
	FieldHotelLat         = "hotel_lat"
	FieldHotelLng         = "hotel_lng"
	FieldDestination      = "destination"
	FieldActivities       = "activities"
	FieldTransportMode    = "transport_mode"
	FieldDepartureAddress = "departure_address"
	FieldTravelHours      = "travel_hours"
	FieldTravelMinutes    = "travel_minutes"
	FieldIsDayTrip        = "is_day_trip"
	FieldDepartureTime    = "departure_time"
	FieldReturnTime       = "return_time"
	FieldProgram          = "program"
	FieldDurationDays     = "duration_days"
	FieldDateStart        = "date_start"
	FieldStarRating       = "star_rating"
	FieldMealPlan         = "meal_plan"
	FieldPrice            = "price"
)

var stepFields = map[StepKind][]string{
	StepLodging:     {FieldHotelName, FieldHotelPlaceID, FieldHotelAddress, FieldHotelLat, FieldHotelLng},
	StepDestination: {FieldDestination},
	StepActivities:  {FieldActivities},
	StepTransport:   {FieldTransportMode, FieldDepartureAddress, FieldTravelHours, FieldTravelMinutes},
	StepTripType:    {FieldIsDayTrip},
	StepSchedule:    {FieldDepartureTime, FieldReturnTime},
	StepProgram:     {FieldProgram},
	StepDates:       {FieldDurationDays, FieldDateStart},
	StepRating:      {FieldStarRating},
	StepMealPlan:    {FieldMealPlan},
	StepPricing:     {FieldPrice},
}

// Fields lists the answer fields a step of this kind owns.
func (k StepKind) Fields() []string {
	return stepFields[k]
}

// StepDescriptor is one page of the wizard. Initial holds the seed values the
// step shows before the user touches it.
type StepDescriptor struct {
	Kind    StepKind `json:"kind"`
	Title   string   `json:"title"`
	Initial Answers  `json:"initial,omitempty"`
}

// ProgramEntry is one line of a day-trip timeline.
type ProgramEntry struct {
	Time     string `json:"time" jsonschema:"description=Local time formatted HH:MM"`
	Activity string `json:"activity" jsonschema:"description=What happens at that time"`
}

type Program []ProgramEntry

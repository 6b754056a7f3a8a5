package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eino-contrib/jsonschema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// SummaryOrder is the order answers are listed in summaries and previews.
var SummaryOrder = []string{
	FieldHotelName, FieldHotelAddress, FieldDestination, FieldActivities, FieldTransportMode,
	FieldDepartureAddress, FieldTravelHours, FieldTravelMinutes, FieldIsDayTrip,
	FieldDepartureTime, FieldReturnTime, FieldProgram, FieldDurationDays, FieldDateStart,
	FieldStarRating, FieldMealPlan, FieldPrice,
}

var displayNames = map[string]string{
	FieldHotelName:        "Hotel",
	FieldHotelPlaceID:     "Hotel place",
	FieldHotelAddress:     "Hotel address",
	FieldHotelLat:         "Latitude",
	FieldHotelLng:         "Longitude",
	FieldDestination:      "Destination",
	FieldActivities:       "Activities",
	FieldTransportMode:    "Transport",
	FieldDepartureAddress: "Departure address",
	FieldTravelHours:      "Travel hours",
	FieldTravelMinutes:    "Travel minutes",
	FieldIsDayTrip:        "Trip type",
	FieldDepartureTime:    "Departure",
	FieldReturnTime:       "Return",
	FieldProgram:          "Programme",
	FieldDurationDays:     "Duration (days)",
	FieldDateStart:        "Start date",
	FieldStarRating:       "Stars",
	FieldMealPlan:         "Meal plan",
	FieldPrice:            "Price",
}

func DisplayName(field string) string {
	if name, ok := displayNames[field]; ok {
		return name
	}
	return field
}

// DisplayValue renders a single answer for humans.
func (a Answers) DisplayValue(field string) string {
	switch field {
	case FieldActivities:
		return strings.Join(a.Strings(field), ", ")
	case FieldProgram:
		rows := make([]string, 0)
		for _, entry := range a.Program(field) {
			rows = append(rows, entry.Time+" "+entry.Activity)
		}
		return strings.Join(rows, "; ")
	case FieldIsDayTrip:
		if a.Bool(field) {
			return "Day trip"
		}
		return "Multi-day stay"
	case FieldTransportMode:
		return a.TransportMode().Label()
	case FieldMealPlan:
		return a.MealPlan().Label()
	}
	return a.String(field)
}

// FormatSummary renders the answered fields as a markdown table.
func FormatSummary(answers Answers) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value")
	for _, field := range SummaryOrder {
		if !answers.Has(field) {
			continue
		}
		_ = table.Append(DisplayName(field), answers.DisplayValue(field))
	}
	_ = table.Render()
	return buf.String()
}

func FormatFieldErrors(errs []FieldError) string {
	if len(errs) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Validation errors:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Error")
	for _, err := range errs {
		_ = table.Append(err.DisplayName, err.Message)
	}
	_ = table.Render()
	return buf.String()
}

// IntentSchema returns the JSON schema of Intent.
func IntentSchema() (string, error) {
	schema := jsonschema.Reflect(&Intent{})
	schema.Title = "Trip intent"
	schema.Description = "Structured pre-fill extracted from a free-text trip request."
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return string(schemaBytes), nil
}

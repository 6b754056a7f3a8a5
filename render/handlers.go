package render

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/tbxark/tripwizard/types"
)

type option struct {
	Value   string
	Label   string
	Checked bool
}

func formatFloat(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseInt(form url.Values, field string) (int, bool) {
	raw := strings.TrimSpace(form.Get(field))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

func parseFloat(form url.Values, field string) (float64, bool) {
	raw := strings.TrimSpace(form.Get(field))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	return v, err == nil
}

type lodgingHandler struct{}

func (lodgingHandler) Kind() types.StepKind { return types.StepLodging }
func (lodgingHandler) Optional() bool       { return true }

func (lodgingHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	view := lookup(step, answers)
	lat, latOK := view.Float(types.FieldHotelLat)
	lng, lngOK := view.Float(types.FieldHotelLng)
	return execute("lodging", step, struct {
		HotelName, PlaceID, Address, Lat, Lng string
	}{
		HotelName: view.String(types.FieldHotelName),
		PlaceID:   view.String(types.FieldHotelPlaceID),
		Address:   view.String(types.FieldHotelAddress),
		Lat:       formatFloat(lat, latOK),
		Lng:       formatFloat(lng, lngOK),
	})
}

func (lodgingHandler) Collect(form url.Values) types.Answers {
	out := types.Answers{types.FieldHotelName: strings.TrimSpace(form.Get(types.FieldHotelName))}
	for _, field := range []string{types.FieldHotelPlaceID, types.FieldHotelAddress} {
		if v := strings.TrimSpace(form.Get(field)); v != "" {
			out[field] = v
		}
	}
	for _, field := range []string{types.FieldHotelLat, types.FieldHotelLng} {
		if v, ok := parseFloat(form, field); ok {
			out[field] = v
		}
	}
	return out
}

func (lodgingHandler) Validate(types.Answers) []types.FieldError { return nil }

type destinationHandler struct{}

func (destinationHandler) Kind() types.StepKind { return types.StepDestination }
func (destinationHandler) Optional() bool       { return false }

func (destinationHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	return execute("destination", step, lookup(step, answers).String(types.FieldDestination))
}

func (destinationHandler) Collect(form url.Values) types.Answers {
	return types.Answers{types.FieldDestination: strings.TrimSpace(form.Get(types.FieldDestination))}
}

func (destinationHandler) Validate(values types.Answers) []types.FieldError {
	if strings.TrimSpace(values.String(types.FieldDestination)) == "" {
		return []types.FieldError{{
			Field:       types.FieldDestination,
			DisplayName: types.DisplayName(types.FieldDestination),
			Message:     "Please enter a destination.",
		}}
	}
	return nil
}

// activitiesHandler edits a free list of rows. One blank row is always
// rendered for the next entry; blank rows never reach the answers.
type activitiesHandler struct{}

func (activitiesHandler) Kind() types.StepKind { return types.StepActivities }
func (activitiesHandler) Optional() bool       { return true }

func (activitiesHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	rows := append([]string(nil), lookup(step, answers).Strings(types.FieldActivities)...)
	if len(rows) == 0 || strings.TrimSpace(rows[len(rows)-1]) != "" {
		rows = append(rows, "")
	}
	return execute("activities", step, rows)
}

func (activitiesHandler) Collect(form url.Values) types.Answers {
	rows := make([]string, 0, len(form[types.FieldActivities]))
	for _, row := range form[types.FieldActivities] {
		if row = strings.TrimSpace(row); row != "" {
			rows = append(rows, row)
		}
	}
	return types.Answers{types.FieldActivities: rows}
}

func (activitiesHandler) Validate(types.Answers) []types.FieldError { return nil }

type transportHandler struct{}

func (transportHandler) Kind() types.StepKind { return types.StepTransport }
func (transportHandler) Optional() bool       { return true }

func (transportHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	view := lookup(step, answers)
	mode := view.TransportMode()
	if mode == "" {
		mode = types.TransportCoach
	}
	modes := make([]option, 0, len(types.TransportModes))
	for _, m := range types.TransportModes {
		modes = append(modes, option{Value: string(m), Label: m.Label(), Checked: m == mode})
	}
	hours, _ := view.Int(types.FieldTravelHours)
	minutes, _ := view.Int(types.FieldTravelMinutes)
	return execute("transport", step, struct {
		Modes            []option
		Coach            bool
		DepartureAddress string
		Hours, Minutes   int
	}{
		Modes:            modes,
		Coach:            mode == types.TransportCoach,
		DepartureAddress: view.String(types.FieldDepartureAddress),
		Hours:            hours,
		Minutes:          minutes,
	})
}

// Collect only keeps the departure address and duration for coach trips.
func (transportHandler) Collect(form url.Values) types.Answers {
	out := types.Answers{}
	mode, ok := types.ParseTransportMode(form.Get(types.FieldTransportMode))
	if !ok {
		return out
	}
	out[types.FieldTransportMode] = mode
	if mode != types.TransportCoach {
		return out
	}
	hours, _ := parseInt(form, types.FieldTravelHours)
	minutes, _ := parseInt(form, types.FieldTravelMinutes)
	if minutes >= 60 {
		hours += minutes / 60
		minutes %= 60
	}
	out[types.FieldDepartureAddress] = strings.TrimSpace(form.Get(types.FieldDepartureAddress))
	out[types.FieldTravelHours] = hours
	out[types.FieldTravelMinutes] = minutes
	return out
}

func (transportHandler) Validate(types.Answers) []types.FieldError { return nil }

type tripTypeHandler struct{}

func (tripTypeHandler) Kind() types.StepKind { return types.StepTripType }
func (tripTypeHandler) Optional() bool       { return true }

func (tripTypeHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	return execute("trip-type", step, lookup(step, answers).Bool(types.FieldIsDayTrip))
}

func (tripTypeHandler) Collect(form url.Values) types.Answers {
	return types.Answers{types.FieldIsDayTrip: form.Get(types.FieldIsDayTrip) == "day"}
}

func (tripTypeHandler) Validate(types.Answers) []types.FieldError { return nil }

type scheduleHandler struct{}

func (scheduleHandler) Kind() types.StepKind { return types.StepSchedule }
func (scheduleHandler) Optional() bool       { return true }

func (scheduleHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	view := lookup(step, answers)
	return execute("schedule", step, struct{ Departure, Return string }{
		Departure: view.String(types.FieldDepartureTime),
		Return:    view.String(types.FieldReturnTime),
	})
}

func (scheduleHandler) Collect(form url.Values) types.Answers {
	return types.Answers{
		types.FieldDepartureTime: strings.TrimSpace(form.Get(types.FieldDepartureTime)),
		types.FieldReturnTime:    strings.TrimSpace(form.Get(types.FieldReturnTime)),
	}
}

func (scheduleHandler) Validate(types.Answers) []types.FieldError { return nil }

const (
	formProgramTime     = "program_time"
	formProgramActivity = "program_activity"
)

// programHandler edits the day-trip timeline. Rows keep the order the user
// entered them in.
type programHandler struct{}

func (programHandler) Kind() types.StepKind { return types.StepProgram }
func (programHandler) Optional() bool       { return true }

func (programHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	entries := lookup(step, answers).Program(types.FieldProgram)
	rows := append(types.Program(nil), entries...)
	if len(rows) == 0 || strings.TrimSpace(rows[len(rows)-1].Activity) != "" {
		rows = append(rows, types.ProgramEntry{})
	}
	return execute("program", step, struct {
		Rows      types.Program
		Generated bool
	}{Rows: rows, Generated: len(entries) > 0})
}

func (programHandler) Collect(form url.Values) types.Answers {
	times := form[formProgramTime]
	activities := form[formProgramActivity]
	n := max(len(times), len(activities))
	program := make(types.Program, 0, n)
	for i := 0; i < n; i++ {
		var entry types.ProgramEntry
		if i < len(times) {
			entry.Time = strings.TrimSpace(times[i])
		}
		if i < len(activities) {
			entry.Activity = strings.TrimSpace(activities[i])
		}
		if entry.Activity == "" {
			continue
		}
		program = append(program, entry)
	}
	return types.Answers{types.FieldProgram: program}
}

func (programHandler) Validate(types.Answers) []types.FieldError { return nil }

type datesHandler struct{}

func (datesHandler) Kind() types.StepKind { return types.StepDates }
func (datesHandler) Optional() bool       { return true }

func (datesHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	view := lookup(step, answers)
	days, ok := view.Int(types.FieldDurationDays)
	daysText := ""
	if ok {
		daysText = strconv.Itoa(days)
	}
	return execute("dates", step, struct{ Days, Start string }{
		Days:  daysText,
		Start: view.String(types.FieldDateStart),
	})
}

func (datesHandler) Collect(form url.Values) types.Answers {
	out := types.Answers{types.FieldDateStart: strings.TrimSpace(form.Get(types.FieldDateStart))}
	if days, ok := parseInt(form, types.FieldDurationDays); ok {
		out[types.FieldDurationDays] = days
	}
	return out
}

func (datesHandler) Validate(types.Answers) []types.FieldError { return nil }

type ratingHandler struct{}

func (ratingHandler) Kind() types.StepKind { return types.StepRating }
func (ratingHandler) Optional() bool       { return true }

func (ratingHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	stars, _ := lookup(step, answers).Int(types.FieldStarRating)
	options := make([]option, 0, 5)
	for i := 1; i <= 5; i++ {
		options = append(options, option{
			Value:   strconv.Itoa(i),
			Label:   strings.Repeat("★", i),
			Checked: i == stars,
		})
	}
	return execute("rating", step, options)
}

func (ratingHandler) Collect(form url.Values) types.Answers {
	out := types.Answers{}
	if stars, ok := parseInt(form, types.FieldStarRating); ok {
		out[types.FieldStarRating] = stars
	}
	return out
}

func (ratingHandler) Validate(types.Answers) []types.FieldError { return nil }

type mealPlanHandler struct{}

func (mealPlanHandler) Kind() types.StepKind { return types.StepMealPlan }
func (mealPlanHandler) Optional() bool       { return true }

func (mealPlanHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	current := lookup(step, answers).MealPlan()
	options := make([]option, 0, len(types.MealPlans))
	for _, plan := range types.MealPlans {
		options = append(options, option{Value: string(plan), Label: plan.Label(), Checked: plan == current})
	}
	return execute("meal-plan", step, options)
}

func (mealPlanHandler) Collect(form url.Values) types.Answers {
	out := types.Answers{}
	if plan, ok := types.ParseMealPlan(form.Get(types.FieldMealPlan)); ok {
		out[types.FieldMealPlan] = plan
	}
	return out
}

func (mealPlanHandler) Validate(types.Answers) []types.FieldError { return nil }

type pricingHandler struct{}

func (pricingHandler) Kind() types.StepKind { return types.StepPricing }
func (pricingHandler) Optional() bool       { return false }

func (pricingHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	price, ok := lookup(step, answers).Float(types.FieldPrice)
	return execute("pricing", step, formatFloat(price, ok))
}

func (pricingHandler) Collect(form url.Values) types.Answers {
	out := types.Answers{}
	if price, ok := parseFloat(form, types.FieldPrice); ok {
		out[types.FieldPrice] = price
	}
	return out
}

func (pricingHandler) Validate(values types.Answers) []types.FieldError {
	if price, ok := values.Float(types.FieldPrice); !ok || price <= 0 {
		return []types.FieldError{{
			Field:       types.FieldPrice,
			DisplayName: types.DisplayName(types.FieldPrice),
			Message:     "The price must be greater than zero.",
		}}
	}
	return nil
}

type summaryHandler struct{}

func (summaryHandler) Kind() types.StepKind { return types.StepSummary }
func (summaryHandler) Optional() bool       { return false }

func (summaryHandler) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	rows := make([]option, 0, len(types.SummaryOrder))
	for _, field := range types.SummaryOrder {
		if !answers.Has(field) {
			continue
		}
		rows = append(rows, option{Value: answers.DisplayValue(field), Label: types.DisplayName(field)})
	}
	return execute("summary", step, rows)
}

func (summaryHandler) Collect(url.Values) types.Answers { return types.Answers{} }

func (summaryHandler) Validate(types.Answers) []types.FieldError { return nil }

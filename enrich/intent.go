package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/tripwizard/structured"
	"github.com/tbxark/tripwizard/types"
)

const (
	parseIntentToolName        = "extract_trip_intent"
	parseIntentToolDescription = "Extract the structured trip details mentioned in a travel agent's request."

	DefaultTravellers = 2
)

// intentPayload is the wire shape requested from the model. Numbers are
// floats so that a stray "4.5" does not throw the whole reply away.
type intentPayload struct {
	Destination       string   `json:"destination" jsonschema:"description=Destination city or region; empty if not mentioned"`
	TransportType     string   `json:"transport_type,omitempty" jsonschema:"enum=air,enum=rail,enum=coach,enum=car,description=Main means of transport"`
	IsDayTrip         bool     `json:"is_day_trip" jsonschema:"description=True for a trip that starts and ends on the same day"`
	Activities        []string `json:"activities" jsonschema:"description=Activities or sights mentioned"`
	Price             *float64 `json:"price,omitempty" jsonschema:"description=Selling price per person in euros"`
	HotelName         *string  `json:"hotel_name,omitempty" jsonschema:"description=Hotel name if mentioned"`
	EstimatedDuration *float64 `json:"estimated_duration,omitempty" jsonschema:"description=Trip length in days"`
	Stars             *float64 `json:"stars,omitempty" jsonschema:"description=Hotel star rating from 1 to 5"`
	MealPlan          *string  `json:"meal_plan,omitempty" jsonschema:"enum=room-only,enum=breakfast-only,enum=half-board,enum=full-board,enum=all-inclusive"`
	NumPeople         *float64 `json:"num_people,omitempty" jsonschema:"description=Number of travellers"`
	DepartureCity     *string  `json:"departure_city,omitempty" jsonschema:"description=City the group leaves from"`
}

type ToolBasedIntentParser struct {
	chain *structured.Chain[string, intentPayload]
}

func NewToolBasedIntentParser(chatModel model.ToolCallingChatModel) (*ToolBasedIntentParser, error) {
	chain, err := structured.NewChain[string, intentPayload](
		chatModel,
		buildParseIntentPrompt,
		parseIntentToolName,
		parseIntentToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedIntentParser{chain: chain}, nil
}

// ParseIntent returns a ParseFailure when the model call fails. A reply that
// arrives but cannot be decoded yields an empty intent instead.
func (p *ToolBasedIntentParser) ParseIntent(ctx context.Context, prompt string) (types.Intent, error) {
	slog.Debug("Parsing intent", "prompt", prompt)
	payload, err := p.chain.Invoke(ctx, prompt)
	if err != nil {
		if errors.Is(err, structured.ErrMalformedOutput) {
			slog.Warn("Discarding malformed intent reply", "error", err)
			return types.Intent{}, nil
		}
		return types.Intent{}, &ParseFailure{Err: err}
	}
	intent := normalizeIntent(*payload)
	slog.Debug("Parsed intent", "intent", intent)
	return intent, nil
}

func buildParseIntentPrompt(ctx context.Context, prompt string) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`You help a travel agency create trip listings.

Read the agent's request and extract only what it states. Leave a field out when the request does not mention it; never invent a hotel, a price or a star rating.

Rules:
- transport_type is one of air, rail, coach, car.
- is_day_trip is true only for an outing that returns the same day.
- estimated_duration is a number of days.
- meal_plan is one of room-only, breakfast-only, half-board, full-board, all-inclusive.

Current date: %s

Call the '%s' tool with the result.`, time.Now().Format(time.DateOnly), parseIntentToolName)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(prompt),
	}, nil
}

func normalizeIntent(p intentPayload) types.Intent {
	intent := types.Intent{
		Destination: strings.TrimSpace(p.Destination),
		IsDayTrip:   p.IsDayTrip,
		Activities:  cleanList(p.Activities),
	}
	if raw := strings.TrimSpace(p.TransportType); raw != "" {
		mode, ok := types.ParseTransportMode(raw)
		if !ok {
			mode = types.TransportAir
		}
		intent.TransportMode = mode
	}
	if p.Price != nil && *p.Price > 0 {
		intent.Price = types.Ptr(*p.Price)
	}
	if s := trimmed(p.HotelName); s != "" {
		intent.HotelName = types.Ptr(s)
	}
	if s := trimmed(p.DepartureCity); s != "" {
		intent.DepartureCity = types.Ptr(s)
	}
	if p.EstimatedDuration != nil && *p.EstimatedDuration >= 1 {
		intent.EstimatedDuration = types.Ptr(int(math.Round(*p.EstimatedDuration)))
	}
	if p.Stars != nil {
		stars := int(math.Round(*p.Stars))
		intent.StarRating = types.Ptr(min(max(stars, 1), 5))
	}
	if p.MealPlan != nil {
		if plan, ok := types.ParseMealPlan(*p.MealPlan); ok {
			intent.MealPlan = types.Ptr(plan)
		}
	}
	travellers := DefaultTravellers
	if p.NumPeople != nil && *p.NumPeople >= 1 {
		travellers = int(math.Round(*p.NumPeople))
	}
	intent.Travellers = types.Ptr(travellers)
	return intent
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

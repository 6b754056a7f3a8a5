package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/tbxark/tripwizard/types"
)

type Pipeline struct {
	enricher Enricher
	renderer PreviewRenderer
	store    TripStore
	now      func() time.Time
	newID    func() string
}

func NewPipeline(enricher Enricher, renderer PreviewRenderer, store TripStore) *Pipeline {
	return &Pipeline{
		enricher: enricher,
		renderer: renderer,
		store:    store,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Prepare runs the enrich and render phases. Nothing is persisted.
func (p *Pipeline) Prepare(ctx context.Context, answers types.Answers) (*Preview, error) {
	answers = answers.Clone()
	slog.Debug("Enriching submission", "destination", answers.String(types.FieldDestination))
	enrichment, err := p.enricher.Enrich(ctx, answers)
	if err != nil {
		return nil, &SubmissionFailure{Phase: PhaseEnrich, Err: err}
	}
	if enrichment == nil {
		return nil, &SubmissionFailure{Phase: PhaseEnrich, Err: errors.New("enricher returned no data")}
	}

	slog.Debug("Rendering preview")
	html, err := p.renderer.RenderPreview(ctx, answers, *enrichment)
	if err != nil {
		return nil, &SubmissionFailure{Phase: PhaseRender, Err: err}
	}
	return &Preview{
		Answers:    answers,
		Enrichment: *enrichment,
		DayTrip:    answers.Bool(types.FieldIsDayTrip),
		HTML:       html,
	}, nil
}

// Confirm persists a prepared preview.
func (p *Pipeline) Confirm(ctx context.Context, preview *Preview, status Status) (*Trip, error) {
	if preview == nil {
		return nil, &SubmissionFailure{Phase: PhasePersist, Err: errors.New("no preview to confirm")}
	}
	if status == "" {
		status = StatusProposed
	}
	if _, ok := ParseStatus(string(status)); !ok {
		return nil, &SubmissionFailure{Phase: PhasePersist, Err: fmt.Errorf("unknown status %q", status)}
	}
	price, _ := preview.Answers.Float(types.FieldPrice)
	trip := &Trip{
		ID:          p.newID(),
		Destination: preview.Answers.String(types.FieldDestination),
		HotelName:   preview.Answers.String(types.FieldHotelName),
		Price:       int(math.Round(price)),
		Status:      status,
		FormData:    preview.Answers.Clone(),
		Enrichment:  preview.Enrichment,
		PreviewHTML: preview.HTML,
		CreatedAt:   p.now().UTC(),
	}
	if err := p.store.Save(ctx, trip); err != nil {
		return nil, &SubmissionFailure{Phase: PhasePersist, Err: err}
	}
	slog.Debug("Trip saved", "id", trip.ID, "status", trip.Status)
	return trip, nil
}

// Submit runs all three phases.
func (p *Pipeline) Submit(ctx context.Context, answers types.Answers, status Status) (*Trip, error) {
	preview, err := p.Prepare(ctx, answers)
	if err != nil {
		return nil, err
	}
	return p.Confirm(ctx, preview, status)
}

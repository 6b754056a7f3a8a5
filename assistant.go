package tripwizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/google/uuid"
	"github.com/tbxark/tripwizard/dialogue"
	"github.com/tbxark/tripwizard/enrich"
	"github.com/tbxark/tripwizard/metrics"
	"github.com/tbxark/tripwizard/patch"
	"github.com/tbxark/tripwizard/render"
	"github.com/tbxark/tripwizard/steps"
	"github.com/tbxark/tripwizard/submit"
	"github.com/tbxark/tripwizard/types"
	"github.com/tbxark/tripwizard/wizard"
)

const degradedNotice = "The trip description could not be interpreted, every step starts empty."

// Assistant wires the enrichment collaborators, the step renderers and the
// submission pipeline around wizard runs. It holds no run state itself.
type Assistant struct {
	parser           enrich.IntentParser
	programs         enrich.ProgramGenerator
	places           enrich.PlaceLookup
	registry         *render.Registry
	pipeline         *submit.Pipeline
	dialogue         dialogue.Generator
	flight           enrich.Flight
	timeout          time.Duration
	departureAddress string
	newID            func() string
}

type Option func(*Assistant)

// WithPlaces enables hotel lookups on the lodging step.
func WithPlaces(places enrich.PlaceLookup) Option {
	return func(a *Assistant) { a.places = places }
}

func WithRegistry(registry *render.Registry) Option {
	return func(a *Assistant) { a.registry = registry }
}

func WithDialogue(generator dialogue.Generator) Option {
	return func(a *Assistant) { a.dialogue = generator }
}

// WithTimeout bounds every remote call. Zero leaves calls unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Assistant) { a.timeout = timeout }
}

// WithDepartureAddress is used for programme generation when the run has no
// coach departure address.
func WithDepartureAddress(address string) Option {
	return func(a *Assistant) { a.departureAddress = address }
}

func New(parser enrich.IntentParser, programs enrich.ProgramGenerator, pipeline *submit.Pipeline, opts ...Option) (*Assistant, error) {
	if parser == nil {
		return nil, errors.New("intent parser is required")
	}
	if programs == nil {
		return nil, errors.New("programme generator is required")
	}
	if pipeline == nil {
		return nil, errors.New("submission pipeline is required")
	}
	a := &Assistant{
		parser:   parser,
		programs: programs,
		pipeline: pipeline,
		registry: render.DefaultRegistry(),
		dialogue: &dialogue.LocalDialogueGenerator{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.places != nil {
		a.places = enrich.NewSharedPlaces(a.places)
	}
	return a, nil
}

func (a *Assistant) Registry() *render.Registry {
	return a.registry
}

func (a *Assistant) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// Start parses prompt and opens a run on the resulting step list. A blank
// prompt starts from an empty intent. A parse failure opens nothing.
func (a *Assistant) Start(ctx context.Context, prompt string) (*Run, *Response, error) {
	ctx = callbacks.EnsureRunInfo(ctx, "TripWizard", "Assistant")
	ctx = callbacks.OnStart(ctx, map[string]any{"prompt": prompt})

	intent := types.Intent{}
	degraded := false
	if strings.TrimSpace(prompt) != "" {
		slog.Debug("Parsing intent", "prompt", prompt)
		start := time.Now()
		callCtx, cancel := a.withTimeout(ctx)
		parsed, err := a.parser.ParseIntent(callCtx, prompt)
		cancel()
		metrics.ObserveEnrichment(ActionParseIntent, start, err)
		if err != nil {
			callbacks.OnError(ctx, err)
			return nil, nil, err
		}
		intent = parsed
		degraded = intent.Empty()
		slog.Debug("Parsed intent", "intent", intent, "degraded", degraded)
	}

	run, resp, err := a.open(ctx, intent, degraded)
	if err != nil {
		callbacks.OnError(ctx, err)
		return nil, nil, err
	}
	callbacks.OnEnd(ctx, map[string]any{"run_id": run.ID, "steps": resp.Total, "degraded": degraded})
	return run, resp, nil
}

// StartWithIntent opens a run on an intent the caller already has.
func (a *Assistant) StartWithIntent(ctx context.Context, intent types.Intent) (*Run, *Response, error) {
	return a.open(ctx, intent, false)
}

func (a *Assistant) open(ctx context.Context, intent types.Intent, degraded bool) (*Run, *Response, error) {
	state, err := wizard.New(steps.Build(intent), a.registry)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create wizard: %w", err)
	}
	run := &Run{ID: a.newID(), Intent: intent, Degraded: degraded, State: state}
	metrics.WizardsStarted.WithLabelValues(strconv.FormatBool(intent.IsDayTrip)).Inc()

	resp := a.respond(ctx, run, state.Result(), nil)
	if degraded {
		resp.Message = degradedNotice + " " + resp.Message
	}
	return run, resp, nil
}

// Dispatch applies a user command to the run.
func (a *Assistant) Dispatch(ctx context.Context, run *Run, cmd wizard.Command) (*Response, error) {
	result, err := run.State.Dispatch(cmd)
	outcome := metrics.Outcome(err)
	if err == nil && !result.Valid() {
		outcome = "invalid"
		metrics.ValidationFailures.WithLabelValues(string(result.Step.Kind)).Inc()
	}
	metrics.WizardCommands.WithLabelValues(string(cmd.Type), outcome).Inc()
	if err == nil && result.Valid() {
		// any accepted command may have changed the answers
		run.Preview = nil
	}
	return a.respond(ctx, run, result, err), err
}

// Collect reads the current step's fields out of a submitted form.
func (a *Assistant) Collect(run *Run, form url.Values) (types.Answers, error) {
	return a.registry.Collect(run.State.Current().Kind, form)
}

// Current reports the run without changing it.
func (a *Assistant) Current(ctx context.Context, run *Run) *Response {
	return a.respond(ctx, run, run.State.Result(), nil)
}

func (a *Assistant) Autocomplete(ctx context.Context, query string) ([]enrich.Prediction, error) {
	if a.places == nil {
		return nil, ErrNoPlaces
	}
	start := time.Now()
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	predictions, err := a.places.Autocomplete(ctx, strings.TrimSpace(query))
	metrics.ObserveEnrichment(ActionAutocomplete, start, err)
	return predictions, err
}

func (a *Assistant) PlaceDetails(ctx context.Context, placeID string) (*enrich.PlaceDetails, error) {
	if a.places == nil {
		return nil, ErrNoPlaces
	}
	start := time.Now()
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	details, err := a.places.Details(ctx, placeID)
	metrics.ObserveEnrichment(ActionPlaceDetails, start, err)
	return details, err
}

// SelectPlace looks up a chosen hotel and merges its address and position
// into the lodging answers.
func (a *Assistant) SelectPlace(ctx context.Context, run *Run, placeID string) (*Response, error) {
	if a.places == nil {
		return a.respond(ctx, run, run.State.Result(), ErrNoPlaces), ErrNoPlaces
	}
	release, err := run.State.Begin(ActionPlaceDetails)
	if err != nil {
		return a.respond(ctx, run, run.State.Result(), err), err
	}
	defer release()

	details, err := a.PlaceDetails(ctx, placeID)
	if err != nil {
		return a.respond(ctx, run, run.State.Result(), err), err
	}
	update := types.Answers{
		types.FieldHotelPlaceID: details.PlaceID,
		types.FieldHotelAddress: details.FormattedAddress,
		types.FieldHotelLat:     details.Lat,
		types.FieldHotelLng:     details.Lng,
	}
	if update[types.FieldHotelPlaceID] == "" {
		update[types.FieldHotelPlaceID] = placeID
	}
	if details.Name != "" {
		update[types.FieldHotelName] = details.Name
	}
	if err := a.merge(run, update, types.StepLodging); err != nil {
		return a.respond(ctx, run, run.State.Result(), err), err
	}
	return a.respond(ctx, run, run.State.Result(), nil), nil
}

// GenerateProgram asks for a day-trip timeline and replaces the programme
// answer with it. On failure the answers are left as they were.
func (a *Assistant) GenerateProgram(ctx context.Context, run *Run) (*Response, error) {
	release, err := run.State.Begin(ActionGenerateProgram)
	if err != nil {
		return a.respond(ctx, run, run.State.Result(), err), err
	}
	defer release()

	answers := run.State.Answers()
	req := enrich.ProgramRequest{
		Destination:      answers.String(types.FieldDestination),
		Activities:       answers.Strings(types.FieldActivities),
		DepartureTime:    answers.String(types.FieldDepartureTime),
		ReturnTime:       answers.String(types.FieldReturnTime),
		DepartureAddress: answers.String(types.FieldDepartureAddress),
	}
	if req.DepartureAddress == "" {
		req.DepartureAddress = a.departureAddress
	}
	// runs asking for the same day share one generation
	program, err := enrich.Do(ctx, &a.flight, ActionGenerateProgram+":"+req.Key(), func(ctx context.Context) (types.Program, error) {
		start := time.Now()
		ctx, cancel := a.withTimeout(ctx)
		defer cancel()
		program, err := a.programs.GenerateProgram(ctx, req)
		metrics.ObserveEnrichment(ActionGenerateProgram, start, err)
		return program, err
	})
	if err != nil {
		slog.Debug("Programme generation failed", "run", run.ID, "error", err)
		return a.respond(ctx, run, run.State.Result(), err), err
	}
	if err := a.merge(run, types.Answers{types.FieldProgram: program}, types.StepProgram); err != nil {
		return a.respond(ctx, run, run.State.Result(), err), err
	}
	return a.respond(ctx, run, run.State.Result(), nil), nil
}

// merge writes the fields of update that differ from the committed answers.
// Only fields owned by kind may be written.
func (a *Assistant) merge(run *Run, update types.Answers, kind types.StepKind) error {
	current := run.State.Answers()
	ops, err := patch.Diff(current, update)
	if err != nil {
		return fmt.Errorf("failed to diff enrichment result: %w", err)
	}
	merged, err := patch.Apply(current, ops, patch.AllowedPaths(kind))
	if err != nil {
		return fmt.Errorf("failed to merge enrichment result: %w", err)
	}
	slog.Debug("Merging enrichment", "run", run.ID, "ops", ops)
	for _, field := range patch.Fields(ops) {
		value := merged[field]
		if field == types.FieldProgram {
			value = merged.Program(field)
		}
		if err := run.State.CommitField(field, value); err != nil {
			return err
		}
	}
	if len(ops) > 0 {
		run.Preview = nil
	}
	return nil
}

// Preview runs the enrich and render phases for a run that is ready to
// submit. The run keeps the preview for Confirm.
func (a *Assistant) Preview(ctx context.Context, run *Run) (*Response, error) {
	if run.State.Phase() != types.PhaseConfirming {
		return a.respond(ctx, run, run.State.Result(), ErrNotReady), ErrNotReady
	}
	release, err := run.State.Begin(ActionPreview)
	if err != nil {
		return a.respond(ctx, run, run.State.Result(), err), err
	}
	defer release()

	start := time.Now()
	callCtx, cancel := a.withTimeout(ctx)
	preview, err := a.pipeline.Prepare(callCtx, run.State.Submission())
	cancel()
	metrics.ObserveEnrichment(ActionPreview, start, err)
	observeSubmission(err, submit.PhaseEnrich, submit.PhaseRender)
	if err != nil {
		return a.respond(ctx, run, run.State.Result(), err), err
	}
	run.Preview = preview
	resp := a.respond(ctx, run, run.State.Result(), nil)
	resp.PreviewHTML = preview.HTML
	resp.Enrichment = &preview.Enrichment
	return resp, nil
}

// Confirm persists the previewed trip and ends the run.
func (a *Assistant) Confirm(ctx context.Context, run *Run, status submit.Status) (*Response, error) {
	if run.Preview == nil {
		return a.respond(ctx, run, run.State.Result(), ErrNoPreview), ErrNoPreview
	}
	release, err := run.State.Begin(ActionPersist)
	if err != nil {
		return a.respond(ctx, run, run.State.Result(), err), err
	}

	callCtx, cancel := a.withTimeout(ctx)
	trip, err := a.pipeline.Confirm(callCtx, run.Preview, status)
	cancel()
	release()
	observeSubmission(err, submit.PhasePersist)
	if err != nil {
		return a.respond(ctx, run, run.State.Result(), err), err
	}
	if err := run.State.MarkSubmitted(); err != nil {
		return a.respond(ctx, run, run.State.Result(), err), err
	}
	slog.Debug("Trip saved", "run", run.ID, "trip", trip.ID)
	resp := a.respond(ctx, run, run.State.Result(), nil)
	resp.Trip = trip
	return resp, nil
}

func observeSubmission(err error, phases ...submit.Phase) {
	var failure *submit.SubmissionFailure
	failed := errors.As(err, &failure)
	for _, phase := range phases {
		if failed && failure.Phase == phase {
			metrics.Submissions.WithLabelValues(string(phase), "error").Inc()
			return
		}
		metrics.Submissions.WithLabelValues(string(phase), "ok").Inc()
	}
}

func (a *Assistant) respond(ctx context.Context, run *Run, result wizard.Result, failure error) *Response {
	total := len(run.State.Steps())
	answers := run.State.Answers()
	resp := &Response{
		RunID:     run.ID,
		Result:    result,
		Total:     total,
		Answers:   answers,
		Degraded:  run.Degraded,
		Completed: result.Phase.Finished(),
	}
	if busy, ok := run.State.Busy(); ok {
		resp.Busy = busy
	}
	if !resp.Completed {
		html, err := a.registry.Render(result.Step, answers)
		if err != nil {
			slog.Warn("Failed to render step", "step", result.Step.Kind, "error", err)
		} else {
			resp.HTML = string(html)
		}
	}

	req := &dialogue.Request{
		Step:    result.Step,
		Index:   result.Index,
		Total:   total,
		Phase:   result.Phase,
		Answers: answers,
		Errors:  result.Errors,
		Failure: failure,
	}
	message, err := a.dialogue.GenerateDialogue(ctx, req)
	if err != nil {
		slog.Warn("Failed to generate dialogue", "error", err)
		message, _ = (&dialogue.LocalDialogueGenerator{}).GenerateDialogue(ctx, req)
	}
	resp.Message = message
	return resp
}

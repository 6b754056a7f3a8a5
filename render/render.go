// Package render draws wizard steps as HTML fragments and reads submitted
// forms back into answers.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/url"

	"github.com/tbxark/tripwizard/types"
)

var ErrNoHandler = errors.New("no handler registered for step kind")

// StepHandler renders and collects one kind of step.
type StepHandler interface {
	Kind() types.StepKind
	Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error)
	Collect(form url.Values) types.Answers
	Validate(values types.Answers) []types.FieldError
	Optional() bool
}

// Registry dispatches on step kind.
type Registry struct {
	handlers map[types.StepKind]StepHandler
}

func NewRegistry(handlers ...StepHandler) *Registry {
	r := &Registry{handlers: make(map[types.StepKind]StepHandler, len(handlers))}
	for _, h := range handlers {
		r.Register(h)
	}
	return r
}

// DefaultRegistry returns a registry with a handler for every step kind.
func DefaultRegistry() *Registry {
	return NewRegistry(
		lodgingHandler{},
		destinationHandler{},
		activitiesHandler{},
		transportHandler{},
		tripTypeHandler{},
		scheduleHandler{},
		programHandler{},
		datesHandler{},
		ratingHandler{},
		mealPlanHandler{},
		pricingHandler{},
		summaryHandler{},
	)
}

func (r *Registry) Register(h StepHandler) {
	r.handlers[h.Kind()] = h
}

func (r *Registry) Handler(kind types.StepKind) (StepHandler, error) {
	h, ok := r.handlers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, kind)
	}
	return h, nil
}

func (r *Registry) Render(step types.StepDescriptor, answers types.Answers) (template.HTML, error) {
	h, err := r.Handler(step.Kind)
	if err != nil {
		return "", err
	}
	return h.Render(step, answers)
}

func (r *Registry) Collect(kind types.StepKind, form url.Values) (types.Answers, error) {
	h, err := r.Handler(kind)
	if err != nil {
		return nil, err
	}
	return h.Collect(form), nil
}

func (r *Registry) Validate(kind types.StepKind, values types.Answers) []types.FieldError {
	h, ok := r.handlers[kind]
	if !ok {
		return nil
	}
	return h.Validate(values)
}

func (r *Registry) Optional(kind types.StepKind) bool {
	h, ok := r.handlers[kind]
	if !ok {
		return false
	}
	return h.Optional()
}

// lookup returns the committed answer for field, falling back to the seed.
func lookup(step types.StepDescriptor, answers types.Answers) types.Answers {
	view := types.Answers{}
	for _, field := range step.Kind.Fields() {
		if v, ok := step.Initial[field]; ok {
			view[field] = v
		}
		if v, ok := answers[field]; ok {
			view[field] = v
		}
	}
	return view
}

type page struct {
	Kind  types.StepKind
	Title string
	Body  any
}

func execute(name string, step types.StepDescriptor, body any) (template.HTML, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, name, page{Kind: step.Kind, Title: step.Title, Body: body})
	if err != nil {
		return "", fmt.Errorf("render %s step: %w", step.Kind, err)
	}
	return template.HTML(buf.String()), nil
}

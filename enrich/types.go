// Package enrich holds the remote calls that pre-fill the wizard: intent
// parsing, day-trip programme generation and place lookups.
package enrich

import (
	"context"
	"strings"

	"github.com/tbxark/tripwizard/types"
)

type IntentParser interface {
	ParseIntent(ctx context.Context, prompt string) (types.Intent, error)
}

type ProgramRequest struct {
	Destination      string
	Activities       []string
	DepartureTime    string
	ReturnTime       string
	DepartureAddress string
}

// Key identifies the request for sharing in-flight generations.
func (r ProgramRequest) Key() string {
	return strings.Join([]string{
		r.Destination,
		strings.Join(r.Activities, "\x1f"),
		r.DepartureTime,
		r.ReturnTime,
		r.DepartureAddress,
	}, "\x1e")
}

type ProgramGenerator interface {
	GenerateProgram(ctx context.Context, req ProgramRequest) (types.Program, error)
}

// ParseFailure is returned when the parsing service could not be reached or
// refused the request. The wizard must not be built from a failed parse.
type ParseFailure struct {
	Err error
}

func (e *ParseFailure) Error() string {
	return "intent parsing failed: " + e.Err.Error()
}

func (e *ParseFailure) Unwrap() error {
	return e.Err
}

type GenerationFailure struct {
	Err error
}

func (e *GenerationFailure) Error() string {
	return "programme generation failed: " + e.Err.Error()
}

func (e *GenerationFailure) Unwrap() error {
	return e.Err
}

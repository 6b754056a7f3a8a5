package wizard

import (
	"errors"

	"github.com/tbxark/tripwizard/types"
)

var (
	ErrBusy           = errors.New("wizard is waiting for a remote call")
	ErrNotOptional    = errors.New("step cannot be skipped")
	ErrFinished       = errors.New("wizard run is finished")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownField   = errors.New("field does not belong to any step")
)

type CommandType string

const (
	CommandAdvance      CommandType = "advance"
	CommandRetreat      CommandType = "retreat"
	CommandSkip         CommandType = "skip"
	CommandFieldChanged CommandType = "field_changed"
	CommandSetDayTrip   CommandType = "set_day_trip"
	CommandAddRow       CommandType = "add_row"
	CommandRemoveRow    CommandType = "remove_row"
	CommandCancel       CommandType = "cancel"
)

// Command is a user action against the wizard. Values carries the fields
// collected from the current page for advance and retreat.
type Command struct {
	Type   CommandType   `json:"type"`
	Field  string        `json:"field,omitempty"`
	Value  any           `json:"value,omitempty"`
	Index  int           `json:"index,omitempty"`
	Values types.Answers `json:"values,omitempty"`
}

func Advance(values types.Answers) Command {
	return Command{Type: CommandAdvance, Values: values}
}

func Retreat(values types.Answers) Command {
	return Command{Type: CommandRetreat, Values: values}
}

func Skip() Command {
	return Command{Type: CommandSkip}
}

func FieldChanged(field string, value any) Command {
	return Command{Type: CommandFieldChanged, Field: field, Value: value}
}

func SetDayTrip(dayTrip bool) Command {
	return Command{Type: CommandSetDayTrip, Value: dayTrip}
}

// Result describes the wizard after a command was applied.
type Result struct {
	Index         int                  `json:"index"`
	Step          types.StepDescriptor `json:"step"`
	Phase         types.Phase          `json:"phase"`
	Errors        []types.FieldError   `json:"errors,omitempty"`
	ReadyToSubmit bool                 `json:"ready_to_submit"`
}

// Valid reports whether the command passed validation.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Validator supplies per-kind validation rules.
type Validator interface {
	Validate(kind types.StepKind, values types.Answers) []types.FieldError
	Optional(kind types.StepKind) bool
}

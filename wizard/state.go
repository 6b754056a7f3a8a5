package wizard

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tbxark/tripwizard/steps"
	"github.com/tbxark/tripwizard/types"
)

// State is one wizard run: the step list, the current position and the
// committed answers. All methods are safe for concurrent use.
type State struct {
	mu        sync.Mutex
	steps     []types.StepDescriptor
	index     int
	answers   types.Answers
	phase     types.Phase
	busy      string
	validator Validator
}

func New(list []types.StepDescriptor, validator Validator) (*State, error) {
	if len(list) == 0 {
		return nil, errors.New("step list is empty")
	}
	if validator == nil {
		return nil, errors.New("validator is required")
	}
	return &State{
		steps:     append([]types.StepDescriptor(nil), list...),
		answers:   types.Answers{},
		phase:     types.PhaseCollecting,
		validator: validator,
	}, nil
}

func (s *State) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *State) Current() types.StepDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps[s.index]
}

func (s *State) Steps() []types.StepDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.StepDescriptor(nil), s.steps...)
}

// Answers returns a copy of the committed answers.
func (s *State) Answers() types.Answers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

func (s *State) Phase() types.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Busy returns the remote action currently holding the wizard, if any.
func (s *State) Busy() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy, s.busy != ""
}

// Result reports the current position without changing anything.
func (s *State) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result(nil)
}

// Begin marks the wizard busy for a remote call. Navigation is rejected with
// ErrBusy until the returned release func runs.
func (s *State) Begin(action string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase.Finished() {
		return nil, ErrFinished
	}
	if s.busy != "" {
		return nil, fmt.Errorf("%w: %s in flight", ErrBusy, s.busy)
	}
	s.busy = action
	slog.Debug("Wizard busy", "action", action)
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.busy = ""
			s.mu.Unlock()
			slog.Debug("Wizard released", "action", action)
		})
	}, nil
}

func (s *State) Advance(values types.Answers) (Result, error) {
	return s.Dispatch(Advance(values))
}

func (s *State) Retreat(values types.Answers) (Result, error) {
	return s.Dispatch(Retreat(values))
}

func (s *State) Skip() (Result, error) {
	return s.Dispatch(Skip())
}

// Dispatch applies a user command.
func (s *State) Dispatch(cmd Command) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Finished() {
		return s.result(nil), ErrFinished
	}
	if s.busy != "" {
		return s.result(nil), fmt.Errorf("%w: %s in flight", ErrBusy, s.busy)
	}
	slog.Debug("Dispatching command", "command", cmd.Type, "index", s.index, "step", s.steps[s.index].Kind)

	switch cmd.Type {
	case CommandAdvance:
		return s.advance(cmd.Values), nil
	case CommandRetreat:
		return s.retreat(cmd.Values), nil
	case CommandSkip:
		return s.skip()
	case CommandFieldChanged:
		if err := s.commitField(cmd.Field, cmd.Value); err != nil {
			return s.result(nil), err
		}
		if s.phase == types.PhaseConfirming {
			s.phase = types.PhaseCollecting
		}
		return s.result(nil), nil
	case CommandSetDayTrip:
		s.setDayTrip(types.Answers{types.FieldIsDayTrip: cmd.Value}.Bool(types.FieldIsDayTrip))
		return s.result(nil), nil
	case CommandAddRow:
		err := s.editRows(cmd.Field, func(rows types.Answers) bool {
			rows.AppendRow(cmd.Field)
			return true
		})
		return s.result(nil), err
	case CommandRemoveRow:
		err := s.editRows(cmd.Field, func(rows types.Answers) bool {
			return rows.RemoveRow(cmd.Field, cmd.Index)
		})
		return s.result(nil), err
	case CommandCancel:
		s.phase = types.PhaseCancelled
		return s.result(nil), nil
	default:
		return s.result(nil), fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

// CommitField writes a single answer. It is not gated by the busy lock so the
// holder of a remote call can merge its result.
func (s *State) CommitField(field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase.Finished() {
		return ErrFinished
	}
	return s.commitField(field, value)
}

// Submission returns the answers to hand to the submission pipeline. When
// the trip-type step was skipped the branch the steps were built for decides
// is_day_trip.
func (s *State) Submission() types.Answers {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.answers.Clone()
	if !out.Has(types.FieldIsDayTrip) {
		out[types.FieldIsDayTrip] = steps.IsDayTrip(s.steps)
	}
	return out
}

// MarkSubmitted ends the run after the submission pipeline persisted it.
func (s *State) MarkSubmitted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != types.PhaseConfirming {
		return fmt.Errorf("cannot submit from phase %s", s.phase)
	}
	s.phase = types.PhaseSubmitted
	return nil
}

func (s *State) advance(values types.Answers) Result {
	desc := s.steps[s.index]
	pageValues := s.pageValues(desc, values)
	if errs := s.validator.Validate(desc.Kind, pageValues); len(errs) > 0 {
		slog.Debug("Validation failed", "step", desc.Kind, "errors", errs)
		return s.result(errs)
	}
	s.commitPage(desc, pageValues)

	if s.index == len(s.steps)-1 {
		s.phase = types.PhaseConfirming
		r := s.result(nil)
		r.ReadyToSubmit = true
		return r
	}
	s.index++
	return s.result(nil)
}

func (s *State) retreat(values types.Answers) Result {
	desc := s.steps[s.index]
	if values != nil {
		s.commitPage(desc, s.pageValues(desc, values))
	}
	if s.index > 0 {
		s.index--
	}
	if s.phase == types.PhaseConfirming {
		s.phase = types.PhaseCollecting
	}
	return s.result(nil)
}

func (s *State) skip() (Result, error) {
	desc := s.steps[s.index]
	if !s.validator.Optional(desc.Kind) || s.index == len(s.steps)-1 {
		return s.result(nil), fmt.Errorf("%w: %s", ErrNotOptional, desc.Kind)
	}
	s.index++
	return s.result(nil), nil
}

// pageValues resolves what the current page holds. Collected values are
// authoritative; without them the page shows its seeds under any answers
// already committed.
func (s *State) pageValues(desc types.StepDescriptor, values types.Answers) types.Answers {
	out := types.Answers{}
	if values != nil {
		for _, field := range desc.Kind.Fields() {
			if v, ok := values[field]; ok {
				out[field] = v
			}
		}
		return out
	}
	for _, field := range desc.Kind.Fields() {
		if v, ok := desc.Initial[field]; ok {
			out[field] = v
		}
		if v, ok := s.answers[field]; ok {
			out[field] = v
		}
	}
	return out
}

func (s *State) commitPage(desc types.StepDescriptor, values types.Answers) {
	if desc.Kind == types.StepTripType && values.Has(types.FieldIsDayTrip) {
		s.setDayTrip(values.Bool(types.FieldIsDayTrip))
		return
	}
	for _, field := range desc.Kind.Fields() {
		delete(s.answers, field)
	}
	s.answers.Merge(values)
	if desc.Kind == types.StepTransport {
		pruneTransport(s.answers)
	}
}

func (s *State) commitField(field string, value any) error {
	if field == types.FieldIsDayTrip {
		s.setDayTrip(types.Answers{field: value}.Bool(field))
		return nil
	}
	if !s.owns(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.answers[field] = value
	if field == types.FieldTransportMode {
		pruneTransport(s.answers)
	}
	return nil
}

var rowSteps = map[string]types.StepKind{
	types.FieldActivities: types.StepActivities,
	types.FieldProgram:    types.StepProgram,
}

// editRows applies edit to the rows the owning page shows, seeds included,
// and commits the result when edit reports a change.
func (s *State) editRows(field string, edit func(rows types.Answers) bool) error {
	kind, ok := rowSteps[field]
	if !ok {
		return fmt.Errorf("%w: %q has no rows", ErrUnknownField, field)
	}
	i := steps.IndexOf(s.steps, kind)
	if i < 0 {
		return fmt.Errorf("%w: %q is not part of this trip", ErrUnknownField, field)
	}
	rows := s.pageValues(s.steps[i], nil)
	if edit(rows) {
		s.answers[field] = rows[field]
	}
	return nil
}

func (s *State) owns(field string) bool {
	for _, desc := range s.steps {
		for _, f := range desc.Kind.Fields() {
			if f == field {
				return true
			}
		}
	}
	return false
}

// setDayTrip records the flag and, when it changes the branch, rebuilds the
// step list and drops the answers of the abandoned branch. A run at or past
// trip-type goes back to it so the new branch is walked from its start; a run
// before it stays on its page, or on the first page when that page is gone.
func (s *State) setDayTrip(dayTrip bool) {
	s.answers[types.FieldIsDayTrip] = dayTrip
	if steps.IsDayTrip(s.steps) == dayTrip {
		return
	}
	for _, field := range steps.BranchFields(!dayTrip) {
		delete(s.answers, field)
	}
	currentKind := s.steps[s.index].Kind
	pastBranch := s.index >= steps.IndexOf(s.steps, types.StepTripType)

	s.steps = steps.Rebuild(s.steps, dayTrip)
	s.index = steps.IndexOf(s.steps, types.StepTripType)
	if !pastBranch {
		s.index = max(steps.IndexOf(s.steps, currentKind), 0)
	}
	if s.phase == types.PhaseConfirming {
		s.phase = types.PhaseCollecting
	}
	slog.Debug("Trip type changed", "day_trip", dayTrip, "steps", len(s.steps), "index", s.index)
}

// pruneTransport removes coach-only answers once another mode is chosen.
func pruneTransport(answers types.Answers) {
	if answers.TransportMode() == types.TransportCoach {
		return
	}
	delete(answers, types.FieldDepartureAddress)
	delete(answers, types.FieldTravelHours)
	delete(answers, types.FieldTravelMinutes)
}

func (s *State) result(errs []types.FieldError) Result {
	return Result{
		Index:  s.index,
		Step:   s.steps[s.index],
		Phase:  s.phase,
		Errors: errs,
	}
}

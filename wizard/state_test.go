package wizard

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tbxark/tripwizard/render"
	"github.com/tbxark/tripwizard/steps"
	"github.com/tbxark/tripwizard/types"
)

type testValidator struct{}

func (testValidator) Validate(kind types.StepKind, values types.Answers) []types.FieldError {
	switch kind {
	case types.StepDestination:
		if strings.TrimSpace(values.String(types.FieldDestination)) == "" {
			return []types.FieldError{{Field: types.FieldDestination, DisplayName: "Destination", Message: "required"}}
		}
	case types.StepPricing:
		if price, ok := values.Float(types.FieldPrice); !ok || price <= 0 {
			return []types.FieldError{{Field: types.FieldPrice, DisplayName: "Price", Message: "must be positive"}}
		}
	}
	return nil
}

func (testValidator) Optional(kind types.StepKind) bool {
	switch kind {
	case types.StepDestination, types.StepPricing, types.StepSummary:
		return false
	}
	return true
}

func newState(t *testing.T, intent types.Intent) *State {
	t.Helper()
	state, err := New(steps.Build(intent), testValidator{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return state
}

func mustDispatch(t *testing.T, state *State, cmd Command) Result {
	t.Helper()
	result, err := state.Dispatch(cmd)
	if err != nil {
		t.Fatalf("Dispatch(%s): %v", cmd.Type, err)
	}
	return result
}

func TestAdvanceRequiresDestination(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true})

	result := mustDispatch(t, state, Advance(types.Answers{types.FieldDestination: "   "}))
	if result.Valid() {
		t.Fatal("expected a validation failure for a blank destination")
	}
	if result.Errors[0].Field != types.FieldDestination {
		t.Errorf("error field = %s", result.Errors[0].Field)
	}
	if state.Index() != 0 {
		t.Errorf("index moved to %d", state.Index())
	}
	if state.Answers().Has(types.FieldDestination) {
		t.Error("invalid value was committed")
	}

	result = mustDispatch(t, state, Advance(types.Answers{types.FieldDestination: "Brugge"}))
	if !result.Valid() || result.Index != 1 {
		t.Fatalf("advance = %+v", result)
	}
	if got := state.Answers().String(types.FieldDestination); got != "Brugge" {
		t.Errorf("destination = %q", got)
	}
}

func TestAdvanceAcceptsSeeds(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true, Destination: "Lille"})
	result := mustDispatch(t, state, Advance(nil))
	if !result.Valid() {
		t.Fatalf("seeded destination rejected: %v", result.Errors)
	}
	if got := state.Answers().String(types.FieldDestination); got != "Lille" {
		t.Errorf("destination = %q", got)
	}
}

func TestRetreatCommitsWithoutValidation(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true, Destination: "Namur"})
	mustDispatch(t, state, Advance(nil))

	result := mustDispatch(t, state, Retreat(types.Answers{types.FieldActivities: []string{"Citadel"}}))
	if result.Index != 0 {
		t.Errorf("index = %d", result.Index)
	}
	if diff := cmp.Diff([]string{"Citadel"}, state.Answers().Strings(types.FieldActivities)); diff != "" {
		t.Errorf("activities (-want +got):\n%s", diff)
	}

	result = mustDispatch(t, state, Retreat(nil))
	if result.Index != 0 {
		t.Errorf("retreat at first step moved to %d", result.Index)
	}
}

func TestSkip(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true})

	if _, err := state.Skip(); !errors.Is(err, ErrNotOptional) {
		t.Fatalf("skip destination err = %v", err)
	}
	mustDispatch(t, state, Advance(types.Answers{types.FieldDestination: "Dinant"}))

	result, err := state.Skip()
	if err != nil {
		t.Fatalf("skip activities: %v", err)
	}
	if result.Step.Kind != types.StepTransport {
		t.Errorf("after skip step = %s", result.Step.Kind)
	}
	if state.Answers().Has(types.FieldActivities) {
		t.Error("skipped step stored a value")
	}
}

func TestFullDayTripRunIsReadyToSubmit(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true, Destination: "Brugge", Price: types.Ptr(49.0)})
	var last Result
	for i := 0; i < len(state.Steps()); i++ {
		last = mustDispatch(t, state, Advance(nil))
		if !last.Valid() {
			t.Fatalf("step %d rejected: %v", i, last.Errors)
		}
	}
	if !last.ReadyToSubmit {
		t.Fatal("advance on the last step should be ready to submit")
	}
	if state.Phase() != types.PhaseConfirming {
		t.Errorf("phase = %s", state.Phase())
	}
	if state.Index() != len(state.Steps())-1 {
		t.Errorf("index moved past the summary: %d", state.Index())
	}
	if err := state.MarkSubmitted(); err != nil {
		t.Fatalf("MarkSubmitted: %v", err)
	}
	if _, err := state.Advance(nil); !errors.Is(err, ErrFinished) {
		t.Errorf("advance after submit err = %v", err)
	}
}

func TestPricingMustBePositive(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true, Destination: "Mons"})
	for state.Current().Kind != types.StepPricing {
		mustDispatch(t, state, Advance(nil))
	}
	result := mustDispatch(t, state, Advance(types.Answers{types.FieldPrice: 0.0}))
	if result.Valid() {
		t.Fatal("zero price accepted")
	}
	result = mustDispatch(t, state, Advance(types.Answers{types.FieldPrice: 25.0}))
	if !result.Valid() || result.Step.Kind != types.StepSummary {
		t.Fatalf("advance = %+v", result)
	}
}

func TestDayTripFlipRebuildsAndDiscards(t *testing.T) {
	state := newState(t, types.Intent{Destination: "Rome"})
	mustDispatch(t, state, Advance(types.Answers{types.FieldHotelName: "Hotel Roma"}))
	mustDispatch(t, state, Advance(nil))
	mustDispatch(t, state, Advance(types.Answers{types.FieldActivities: []string{"Forum"}}))
	mustDispatch(t, state, Advance(nil))
	if state.Current().Kind != types.StepTripType {
		t.Fatalf("expected trip-type step, got %s", state.Current().Kind)
	}

	result := mustDispatch(t, state, SetDayTrip(true))
	if result.Step.Kind != types.StepTripType {
		t.Errorf("index not anchored on trip-type: %s", result.Step.Kind)
	}
	if !steps.IsDayTrip(state.Steps()) {
		t.Fatal("steps were not rebuilt for a day trip")
	}
	answers := state.Answers()
	if answers.Has(types.FieldHotelName) {
		t.Error("lodging answer survived the switch to a day trip")
	}
	if got := answers.String(types.FieldDestination); got != "Rome" {
		t.Errorf("destination = %q", got)
	}
	if diff := cmp.Diff([]string{"Forum"}, answers.Strings(types.FieldActivities)); diff != "" {
		t.Errorf("activities (-want +got):\n%s", diff)
	}

	result = mustDispatch(t, state, Advance(types.Answers{types.FieldIsDayTrip: true}))
	if result.Step.Kind != types.StepSchedule {
		t.Errorf("after trip-type step = %s", result.Step.Kind)
	}
}

func TestTransportPrunesCoachFields(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true, Destination: "Ypres"})
	mustDispatch(t, state, Advance(nil))
	mustDispatch(t, state, Advance(nil))
	mustDispatch(t, state, Advance(types.Answers{
		types.FieldTransportMode:    types.TransportCoach,
		types.FieldDepartureAddress: "Brussels",
		types.FieldTravelHours:      2,
	}))
	if !state.Answers().Has(types.FieldDepartureAddress) {
		t.Fatal("coach departure address not committed")
	}
	if err := state.CommitField(types.FieldTransportMode, types.TransportRail); err != nil {
		t.Fatalf("CommitField: %v", err)
	}
	answers := state.Answers()
	if answers.Has(types.FieldDepartureAddress) || answers.Has(types.FieldTravelHours) {
		t.Errorf("coach fields kept for rail: %v", answers)
	}
}

func TestBusyRejectsCommands(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true, Destination: "Liège"})
	release, err := state.Begin("generate_program")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := state.Begin("parse"); !errors.Is(err, ErrBusy) {
		t.Errorf("second Begin err = %v", err)
	}
	if _, err := state.Advance(nil); !errors.Is(err, ErrBusy) {
		t.Errorf("advance while busy err = %v", err)
	}
	if err := state.CommitField(types.FieldActivities, []string{"Cathedral"}); err != nil {
		t.Errorf("lock holder commit: %v", err)
	}
	release()
	release()
	if _, busy := state.Busy(); busy {
		t.Fatal("still busy after release")
	}
	if _, err := state.Advance(nil); err != nil {
		t.Errorf("advance after release: %v", err)
	}
}

func TestCommitFieldRejectsForeignFields(t *testing.T) {
	state := newState(t, types.Intent{})
	if err := state.CommitField(types.FieldProgram, types.Program{}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("program on multi-day run err = %v", err)
	}
}

func TestRows(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true})
	mustDispatch(t, state, Command{Type: CommandAddRow, Field: types.FieldActivities})
	mustDispatch(t, state, Command{Type: CommandAddRow, Field: types.FieldActivities})
	mustDispatch(t, state, Command{Type: CommandRemoveRow, Field: types.FieldActivities, Index: 0})
	if got := len(state.Answers().Strings(types.FieldActivities)); got != 1 {
		t.Errorf("rows = %d", got)
	}
	if _, err := state.Dispatch(Command{Type: CommandAddRow, Field: types.FieldPrice}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("add row on price err = %v", err)
	}
	multiDay := newState(t, types.Intent{})
	if _, err := multiDay.Dispatch(Command{Type: CommandAddRow, Field: types.FieldProgram}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("add programme row on a multi-day trip err = %v", err)
	}
}

func TestRowsStartFromSeededActivities(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true, Destination: "Rome", Activities: []string{"Colosseum", "Vatican"}})
	mustDispatch(t, state, Advance(nil))
	if state.Current().Kind != types.StepActivities {
		t.Fatalf("step = %s", state.Current().Kind)
	}

	mustDispatch(t, state, Command{Type: CommandRemoveRow, Field: types.FieldActivities, Index: 0})
	if diff := cmp.Diff([]string{"Vatican"}, state.Answers().Strings(types.FieldActivities)); diff != "" {
		t.Errorf("after remove (-want +got):\n%s", diff)
	}

	mustDispatch(t, state, Command{Type: CommandAddRow, Field: types.FieldActivities})
	if diff := cmp.Diff([]string{"Vatican", ""}, state.Answers().Strings(types.FieldActivities)); diff != "" {
		t.Errorf("after add (-want +got):\n%s", diff)
	}

	// an out of range index leaves the seeds uncommitted
	fresh := newState(t, types.Intent{IsDayTrip: true, Activities: []string{"Forum"}})
	mustDispatch(t, fresh, Command{Type: CommandRemoveRow, Field: types.FieldActivities, Index: 5})
	if fresh.Answers().Has(types.FieldActivities) {
		t.Errorf("answers = %v", fresh.Answers())
	}
}

func TestFlipFromPricingWalksNewBranch(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true, Destination: "Rome"})
	for state.Current().Kind != types.StepPricing {
		mustDispatch(t, state, Advance(nil))
	}

	result := mustDispatch(t, state, SetDayTrip(false))
	if result.Step.Kind != types.StepTripType {
		t.Fatalf("after flip step = %s, want trip-type", result.Step.Kind)
	}

	var visited []types.StepKind
	for state.Phase() == types.PhaseCollecting {
		kind := state.Current().Kind
		visited = append(visited, kind)
		var values types.Answers
		if kind == types.StepPricing {
			values = types.Answers{types.FieldPrice: 450.0}
		}
		mustDispatch(t, state, Advance(values))
	}
	want := []types.StepKind{
		types.StepTripType, types.StepDates, types.StepRating, types.StepMealPlan, types.StepPricing, types.StepSummary,
	}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Errorf("visited (-want +got):\n%s", diff)
	}
	answers := state.Answers()
	for _, field := range []string{types.FieldDurationDays, types.FieldStarRating, types.FieldMealPlan} {
		if !answers.Has(field) {
			t.Errorf("%s was never committed", field)
		}
	}
}

func TestFlipBeforeTripTypeKeepsPage(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true, Destination: "Rome"})
	result := mustDispatch(t, state, SetDayTrip(false))
	if result.Step.Kind != types.StepDestination || result.Index != 1 {
		t.Errorf("after flip to multi-day: index=%d step=%s", result.Index, result.Step.Kind)
	}

	multiDay := newState(t, types.Intent{Destination: "Rome"})
	result = mustDispatch(t, multiDay, SetDayTrip(true))
	if result.Index != 0 || result.Step.Kind != types.StepDestination {
		t.Errorf("flip from the removed lodging page: index=%d step=%s", result.Index, result.Step.Kind)
	}
}

func TestFlipWhileConfirmingReopensBranch(t *testing.T) {
	state := newState(t, types.Intent{IsDayTrip: true, Destination: "Rome", Price: types.Ptr(99.0)})
	for state.Phase() == types.PhaseCollecting {
		mustDispatch(t, state, Advance(nil))
	}
	result := mustDispatch(t, state, FieldChanged(types.FieldIsDayTrip, false))
	if result.Phase != types.PhaseCollecting || result.Step.Kind != types.StepTripType {
		t.Errorf("phase=%s step=%s", result.Phase, result.Step.Kind)
	}

	// the enrichment path flips through CommitField
	other := newState(t, types.Intent{IsDayTrip: true, Destination: "Rome"})
	for other.Current().Kind != types.StepProgram {
		mustDispatch(t, other, Advance(nil))
	}
	if err := other.CommitField(types.FieldIsDayTrip, false); err != nil {
		t.Fatal(err)
	}
	if other.Current().Kind != types.StepTripType {
		t.Errorf("step = %s", other.Current().Kind)
	}
}

func TestSkipTripTypeKeepsSeededBranch(t *testing.T) {
	state, err := New(steps.Build(types.Intent{IsDayTrip: true, Destination: "Bruges"}), render.DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	for state.Current().Kind != types.StepTripType {
		mustDispatch(t, state, Advance(nil))
	}
	result, err := state.Skip()
	if err != nil {
		t.Fatalf("skip trip-type: %v", err)
	}
	if result.Step.Kind != types.StepSchedule {
		t.Errorf("after skip step = %s", result.Step.Kind)
	}
	if state.Answers().Has(types.FieldIsDayTrip) {
		t.Error("skip stored a trip type")
	}
	if !state.Submission().Bool(types.FieldIsDayTrip) {
		t.Error("submission lost the day-trip branch")
	}
	if _, err := state.Dispatch(Command{Type: CommandSkip}); err != nil {
		t.Errorf("skip schedule: %v", err)
	}
	for state.Current().Kind != types.StepPricing {
		mustDispatch(t, state, Advance(nil))
	}
	if _, err := state.Skip(); !errors.Is(err, ErrNotOptional) {
		t.Errorf("skip pricing err = %v", err)
	}
}

func TestCancel(t *testing.T) {
	state := newState(t, types.Intent{})
	mustDispatch(t, state, Command{Type: CommandCancel})
	if state.Phase() != types.PhaseCancelled {
		t.Errorf("phase = %s", state.Phase())
	}
	if _, err := state.Skip(); !errors.Is(err, ErrFinished) {
		t.Errorf("skip after cancel err = %v", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	state := newState(t, types.Intent{Destination: "Porto"})
	mustDispatch(t, state, Advance(types.Answers{types.FieldHotelName: "Infante"}))
	snap := state.Snapshot()

	restored, err := Restore(snap, testValidator{})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Index() != 1 || restored.Phase() != types.PhaseCollecting {
		t.Errorf("restored index=%d phase=%s", restored.Index(), restored.Phase())
	}
	if got := restored.Answers().String(types.FieldHotelName); got != "Infante" {
		t.Errorf("hotel = %q", got)
	}

	snap.Index = 99
	if _, err := Restore(snap, testValidator{}); err == nil {
		t.Error("out of range index accepted")
	}
}

package wizard

import (
	"errors"
	"fmt"

	"github.com/tbxark/tripwizard/types"
)

// Snapshot is the serialisable form of a State. The busy lock is not part of
// it: a restored run is never waiting on a remote call.
type Snapshot struct {
	Phase   types.Phase            `json:"phase"`
	Steps   []types.StepDescriptor `json:"steps"`
	Index   int                    `json:"index"`
	Answers types.Answers          `json:"answers"`
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Phase:   s.phase,
		Steps:   append([]types.StepDescriptor(nil), s.steps...),
		Index:   s.index,
		Answers: s.answers.Clone(),
	}
}

func Restore(snap Snapshot, validator Validator) (*State, error) {
	if len(snap.Steps) == 0 {
		return nil, errors.New("snapshot has no steps")
	}
	if snap.Index < 0 || snap.Index >= len(snap.Steps) {
		return nil, fmt.Errorf("snapshot index %d out of range [0,%d)", snap.Index, len(snap.Steps))
	}
	state, err := New(snap.Steps, validator)
	if err != nil {
		return nil, err
	}
	state.index = snap.Index
	if snap.Phase != "" {
		state.phase = snap.Phase
	}
	if snap.Answers != nil {
		state.answers = snap.Answers.Clone()
	}
	return state, nil
}

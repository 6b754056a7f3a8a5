package tripwizard

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tbxark/tripwizard/wizard"
)

// Checkpoint captures the run. Busy markers are not part of it.
func (r *Run) Checkpoint() Checkpoint {
	return Checkpoint{
		Version:   CheckpointVersion,
		RunID:     r.ID,
		Intent:    r.Intent,
		Degraded:  r.Degraded,
		Wizard:    r.State.Snapshot(),
		Preview:   r.Preview,
		Timestamp: time.Now(),
	}
}

// Resume rebuilds a run from a checkpoint.
func (a *Assistant) Resume(cp Checkpoint) (*Run, error) {
	if cp.Version != CheckpointVersion {
		return nil, fmt.Errorf("%w: %s (expected %s)", ErrBadVersion, cp.Version, CheckpointVersion)
	}
	state, err := wizard.Restore(cp.Wizard, a.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to restore wizard: %w", err)
	}
	return &Run{
		ID:       cp.RunID,
		Intent:   cp.Intent,
		Degraded: cp.Degraded,
		State:    state,
		Preview:  cp.Preview,
	}, nil
}

func (a *Assistant) CreateCheckpoint(run *Run) ([]byte, error) {
	data, err := sonic.Marshal(run.Checkpoint())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	return data, nil
}

func (a *Assistant) RestoreCheckpoint(data []byte) (*Run, error) {
	var cp Checkpoint
	if err := sonic.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return a.Resume(cp)
}

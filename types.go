// Package tripwizard drives a guided trip-creation run: the free-text
// request is parsed into an intent, the intent becomes a step list, the
// steps are walked through wizard commands and the finished answers go
// through the submission pipeline.
package tripwizard

import (
	"errors"
	"time"

	"github.com/tbxark/tripwizard/submit"
	"github.com/tbxark/tripwizard/types"
	"github.com/tbxark/tripwizard/wizard"
)

const CheckpointVersion = "1.0"

const (
	ActionParseIntent     = "parse_intent"
	ActionGenerateProgram = "generate_program"
	ActionPlaceDetails    = "place_details"
	ActionAutocomplete    = "autocomplete"
	ActionPreview         = "preview"
	ActionPersist         = "persist"
)

var (
	ErrNotReady   = errors.New("wizard is not ready to submit")
	ErrNoPreview  = errors.New("no preview to confirm, request a preview first")
	ErrNoPlaces   = errors.New("place lookup is not configured")
	ErrBadVersion = errors.New("incompatible checkpoint version")
)

// Run is one wizard run and the data that travels with it between calls.
type Run struct {
	ID       string
	Intent   types.Intent
	Degraded bool
	State    *wizard.State
	Preview  *submit.Preview
}

// Response is what the caller shows after an action.
type Response struct {
	RunID       string             `json:"run_id"`
	Result      wizard.Result      `json:"result"`
	Total       int                `json:"total"`
	Message     string             `json:"message"`
	HTML        string             `json:"html,omitempty"`
	Answers     types.Answers      `json:"answers"`
	Degraded    bool               `json:"degraded,omitempty"`
	Busy        string             `json:"busy,omitempty"`
	PreviewHTML string             `json:"preview_html,omitempty"`
	Enrichment  *submit.Enrichment `json:"enrichment,omitempty"`
	Trip        *submit.Trip       `json:"trip,omitempty"`
	Completed   bool               `json:"completed"`
}

// Checkpoint is the persisted form of an unfinished run.
type Checkpoint struct {
	Version   string          `json:"version"`
	RunID     string          `json:"run_id"`
	Intent    types.Intent    `json:"intent"`
	Degraded  bool            `json:"degraded,omitempty"`
	Wizard    wizard.Snapshot `json:"wizard"`
	Preview   *submit.Preview `json:"preview,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

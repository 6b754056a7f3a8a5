package types

type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseConfirming Phase = "confirming"
	PhaseSubmitted  Phase = "submitted"
	PhaseCancelled  Phase = "cancelled"
)

// Finished reports whether the wizard run no longer accepts commands.
func (p Phase) Finished() bool {
	return p == PhaseSubmitted || p == PhaseCancelled
}

type FieldInfo struct {
	Field       string `json:"field"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// FieldError is a recoverable validation failure attached to a single answer field.
type FieldError struct {
	Field       string `json:"field"`
	DisplayName string `json:"display_name"`
	Message     string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Package command turns free-text replies typed during a wizard run into
// navigation commands.
package command

import (
	"context"

	"github.com/tbxark/tripwizard/types"
	"github.com/tbxark/tripwizard/wizard"
)

type Command string

const (
	Next    Command = "next"
	Back    Command = "back"
	Skip    Command = "skip"
	Cancel  Command = "cancel"
	Confirm Command = "confirm"
	None    Command = "none"
)

// Request is one reply typed while a step was on screen.
type Request struct {
	Step  types.StepDescriptor
	Input string
}

type Parser interface {
	ParseCommand(ctx context.Context, req *Request) (Command, error)
}

// ToWizard maps a navigation command onto the wizard command that carries
// values. Confirm and None have no wizard counterpart.
func ToWizard(cmd Command, values types.Answers) (wizard.Command, bool) {
	switch cmd {
	case Next:
		return wizard.Advance(values), true
	case Back:
		return wizard.Retreat(values), true
	case Skip:
		return wizard.Skip(), true
	case Cancel:
		return wizard.Command{Type: wizard.CommandCancel}, true
	default:
		return wizard.Command{}, false
	}
}

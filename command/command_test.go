package command

import (
	"context"
	"errors"
	"testing"

	"github.com/tbxark/tripwizard/internal/llmtest"
	"github.com/tbxark/tripwizard/types"
	"github.com/tbxark/tripwizard/wizard"
)

func TestLocalCommandParser(t *testing.T) {
	p := NewLocalCommandParser()
	cases := map[string]Command{
		"next":      Next,
		"  Back ":   Back,
		"s":         Skip,
		"ANNULER":   Cancel,
		"submit":    Confirm,
		"":          None,
		"Rome":      None,
		"next step": None,
	}
	for input, want := range cases {
		got, err := p.ParseCommand(context.Background(), &Request{Input: input})
		if err != nil {
			t.Fatalf("%q: %v", input, err)
		}
		if got != want {
			t.Errorf("%q = %s, want %s", input, got, want)
		}
	}
}

func TestToolBasedCommandParser(t *testing.T) {
	chat := llmtest.New(llmtest.ToolCall(parseCommandToolName, `{"intent":"skip"}`))
	p, err := NewToolBasedCommandParser(chat)
	if err != nil {
		t.Fatal(err)
	}
	step := types.StepDescriptor{Kind: types.StepRating, Title: "Hotel rating"}
	got, err := p.ParseCommand(context.Background(), &Request{Step: step, Input: "no idea, leave it"})
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if got != Skip {
		t.Errorf("got %s, want skip", got)
	}
	if prompt := chat.LastPrompt(); len(prompt) != 2 {
		t.Errorf("prompt = %+v", prompt)
	}
}

func TestToolBasedCommandParserRejectsUnknownIntent(t *testing.T) {
	p, err := NewToolBasedCommandParser(llmtest.New(llmtest.ToolCall(parseCommandToolName, `{"intent":"dance"}`)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.ParseCommand(context.Background(), &Request{Input: "x"}); err == nil {
		t.Fatal("expected an error")
	}
}

type stubParser struct {
	cmd Command
	err error
}

func (s stubParser) ParseCommand(context.Context, *Request) (Command, error) {
	return s.cmd, s.err
}

func TestFailbackCommandParser(t *testing.T) {
	p := NewFailbackCommandParser(stubParser{err: errors.New("down")}, stubParser{cmd: None}, stubParser{cmd: Back})
	got, err := p.ParseCommand(context.Background(), &Request{Input: "go back"})
	if err != nil || got != Back {
		t.Errorf("got %s, %v", got, err)
	}

	boom := errors.New("down")
	_, err = NewFailbackCommandParser(stubParser{err: boom}).ParseCommand(context.Background(), &Request{})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestToWizard(t *testing.T) {
	values := types.Answers{types.FieldDestination: "Rome"}
	cmd, ok := ToWizard(Next, values)
	if !ok || cmd.Type != wizard.CommandAdvance || cmd.Values.String(types.FieldDestination) != "Rome" {
		t.Errorf("next = %+v, %v", cmd, ok)
	}
	if cmd, ok := ToWizard(Cancel, nil); !ok || cmd.Type != wizard.CommandCancel {
		t.Errorf("cancel = %+v", cmd)
	}
	if _, ok := ToWizard(Confirm, nil); ok {
		t.Error("confirm has no wizard command")
	}
}

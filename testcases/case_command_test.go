package testcases

import (
	"context"
	"testing"

	"github.com/tbxark/tripwizard/command"
	"github.com/tbxark/tripwizard/types"
)

func TestToolBasedCommandParser(t *testing.T) {
	t.Parallel()
	parser, err := command.NewToolBasedCommandParser(InitChatModel(t))
	if err != nil {
		t.Fatal(err)
	}
	step := types.StepDescriptor{Kind: types.StepActivities, Title: "Activities"}

	cases := map[string]command.Command{
		"looks good, let's move on":       command.Next,
		"wait, I want to change the city": command.Back,
		"forget it, drop the whole trip":  command.Cancel,
	}
	for input, want := range cases {
		got, err := parser.ParseCommand(context.Background(), &command.Request{Step: step, Input: input})
		if err != nil {
			t.Fatalf("ParseCommand(%q): %v", input, err)
		}
		if got != want {
			t.Errorf("ParseCommand(%q) = %s, want %s", input, got, want)
		}
	}
}

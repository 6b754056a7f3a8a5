package command

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/tripwizard/structured"
	"github.com/tbxark/tripwizard/types"
)

const (
	parseCommandToolName        = "parse_wizard_command"
	parseCommandToolDescription = "Classify a reply typed during the trip wizard as next, back, skip, cancel, confirm or none."
)

type parseCommandInput struct {
	Intent Command `json:"intent" jsonschema:"required,enum=next,enum=back,enum=skip,enum=cancel,enum=confirm,enum=none,description=The user's navigation intent"`
}

type ToolBasedCommandParser struct {
	chain *structured.Chain[*Request, parseCommandInput]
}

func NewToolBasedCommandParser(chatModel model.ToolCallingChatModel) (*ToolBasedCommandParser, error) {
	chain, err := structured.NewChain[*Request, parseCommandInput](
		chatModel,
		buildParseCommandPrompt,
		parseCommandToolName,
		parseCommandToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedCommandParser{chain: chain}, nil
}

func (p *ToolBasedCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	result, err := p.chain.Invoke(ctx, req)
	if err != nil {
		return None, err
	}
	switch result.Intent {
	case Next, Back, Skip, Cancel, Confirm, None:
		return result.Intent, nil
	case "":
		return None, fmt.Errorf("empty intent returned by %s", parseCommandToolName)
	default:
		return None, fmt.Errorf("unknown intent %q returned by %s", result.Intent, parseCommandToolName)
	}
}

func buildParseCommandPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`You help a travel agent move through a step-by-step trip creation form.

The agent typed a short reply while a step was on screen. Decide what they want:
- next: move on to the following step keeping what is filled in.
- back: return to the previous step.
- skip: leave this step empty and move on.
- cancel: abandon the trip creation entirely. Only when clearly stated.
- confirm: publish the finished trip. Only when clearly stated.
- none: anything else, such as a value for the current field.

Call the '%s' tool with the result.`, parseCommandToolName)

	fields := make([]string, 0)
	for _, field := range req.Step.Kind.Fields() {
		fields = append(fields, types.DisplayName(field))
	}
	userPrompt := fmt.Sprintf("Current step: %s\nFields: %v\nReply: %s", req.Step.Title, fields, req.Input)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	}, nil
}

package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultDialogueSystemPromptTemplate may contain a single "%s" placeholder
// for the reply language.
const DefaultDialogueSystemPromptTemplate = `You are the assistant of a travel agency back office. An agent is creating a trip listing through a step-by-step form.

Write one or two friendly sentences to show under the current step:
- If there are validation errors, explain how to fix the first one.
- If there is a problem, say what happened and what the agent can do next.
- Otherwise tell the agent what the current step is for.
- When every step is complete, invite the agent to review and confirm.
- No lists, no markdown.
- Reply in %s.
`

type ToolBasedDialogueGenerator struct {
	Lang                 string
	systemPromptTemplate string
	chatModel            model.ToolCallingChatModel
}

type GeneratorOption func(*ToolBasedDialogueGenerator)

func WithDialogueLang(lang string) GeneratorOption {
	return func(g *ToolBasedDialogueGenerator) {
		g.Lang = lang
	}
}

// WithDialogueSystemPromptTemplate overrides the system prompt. If the
// template contains "%s", it is formatted with the language.
func WithDialogueSystemPromptTemplate(tpl string) GeneratorOption {
	return func(g *ToolBasedDialogueGenerator) {
		g.systemPromptTemplate = tpl
	}
}

func NewToolBasedDialogueGenerator(chatModel model.ToolCallingChatModel, opts ...GeneratorOption) *ToolBasedDialogueGenerator {
	g := &ToolBasedDialogueGenerator{
		Lang:                 "English",
		systemPromptTemplate: DefaultDialogueSystemPromptTemplate,
		chatModel:            chatModel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.Lang == "" {
		g.Lang = "English"
	}
	return g
}

func (g *ToolBasedDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	systemPrompt := g.systemPromptTemplate
	if strings.Contains(systemPrompt, "%s") {
		systemPrompt = fmt.Sprintf(systemPrompt, g.Lang)
	}
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(formatRequest(req)),
	}
	response, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	message := strings.TrimSpace(response.Content)
	if message == "" {
		return "", fmt.Errorf("LLM returned an empty message")
	}
	return message, nil
}

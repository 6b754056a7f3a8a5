// Package structured turns a chat model into a typed extractor by forcing a
// single tool call whose parameters are derived from the output type.
package structured

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

// ErrMalformedOutput marks a model reply that arrived but could not be decoded
// into the target type.
var ErrMalformedOutput = errors.New("malformed model output")

type PromptBuilder[In any] func(ctx context.Context, input In) ([]*schema.Message, error)

// Chain renders a prompt for In and decodes the model's forced tool call
// into Out.
type Chain[In, Out any] struct {
	prompt PromptBuilder[In]
	chat   model.ToolCallingChatModel
	tool   *schema.ToolInfo
}

func NewChain[In, Out any](
	chat model.ToolCallingChatModel,
	prompt PromptBuilder[In],
	toolName string,
	toolDesc string,
) (*Chain[In, Out], error) {
	tool, err := utils.GoStruct2ToolInfo[Out](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("derive tool schema for %s: %w", toolName, err)
	}
	return &Chain[In, Out]{prompt: prompt, chat: chat, tool: tool}, nil
}

// Tool is the schema the model is forced to call.
func (c *Chain[In, Out]) Tool() *schema.ToolInfo {
	return c.tool
}

func (c *Chain[In, Out]) Invoke(ctx context.Context, input In) (*Out, error) {
	messages, opts, err := c.request(ctx, input)
	if err != nil {
		return nil, err
	}
	reply, err := c.chat.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: model call: %w", c.tool.Name, err)
	}
	return decode[Out](reply)
}

func (c *Chain[In, Out]) Stream(ctx context.Context, input In) (*schema.StreamReader[*Out], error) {
	messages, opts, err := c.request(ctx, input)
	if err != nil {
		return nil, err
	}
	replies, err := c.chat.Stream(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: model stream: %w", c.tool.Name, err)
	}
	return schema.StreamReaderWithConvert(replies, decode[Out]), nil
}

func (c *Chain[In, Out]) request(ctx context.Context, input In) ([]*schema.Message, []model.Option, error) {
	messages, err := c.prompt(ctx, input)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: build prompt: %w", c.tool.Name, err)
	}
	opts := []model.Option{
		model.WithTools([]*schema.ToolInfo{c.tool}),
		model.WithToolChoice(schema.ToolChoiceForced, c.tool.Name),
	}
	return messages, opts, nil
}

// decode reads the forced tool call. Models that ignore tool choice and
// answer in plain content are accepted when the content is JSON, optionally
// inside a markdown code fence.
func decode[Out any](msg *schema.Message) (*Out, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}
	raw := ""
	switch {
	case len(msg.ToolCalls) > 0:
		raw = msg.ToolCalls[0].Function.Arguments
	default:
		raw = StripCodeFence(msg.Content)
	}
	if raw == "" {
		return nil, fmt.Errorf("%w: reply carries neither a tool call nor content", ErrMalformedOutput)
	}
	var out Out
	if err := sonic.UnmarshalString(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return &out, nil
}

// StripCodeFence removes a surrounding ```json ... ``` fence.
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	body, fenced := strings.CutPrefix(content, "```")
	if !fenced {
		return content
	}
	if _, after, ok := strings.Cut(body, "\n"); ok {
		body = after
	} else {
		body = strings.TrimPrefix(body, "json")
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

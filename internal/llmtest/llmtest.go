// Package llmtest provides a scripted chat model for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type Reply struct {
	Message *schema.Message
	Err     error
}

func ToolCall(name, arguments string) Reply {
	return Reply{Message: &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			ID:       "call_1",
			Type:     "function",
			Function: schema.FunctionCall{Name: name, Arguments: arguments},
		}},
	}}
}

func Content(content string) Reply {
	return Reply{Message: schema.AssistantMessage(content, nil)}
}

func Fail(err error) Reply {
	return Reply{Err: err}
}

// ChatModel replays Replies in order and repeats the last one once they run
// out. When Gate is set every call waits for it to be closed.
type ChatModel struct {
	Replies []Reply
	Gate    chan struct{}

	mu       sync.Mutex
	calls    int
	messages [][]*schema.Message
}

var _ model.ToolCallingChatModel = (*ChatModel)(nil)

func New(replies ...Reply) *ChatModel {
	return &ChatModel{Replies: replies}
}

func (m *ChatModel) next(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
	m.mu.Lock()
	idx := m.calls
	m.calls++
	m.messages = append(m.messages, input)
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if len(m.Replies) == 0 {
		return nil, errors.New("llmtest: no reply scripted")
	}
	if idx >= len(m.Replies) {
		idx = len(m.Replies) - 1
	}
	reply := m.Replies[idx]
	return reply.Message, reply.Err
}

func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return m.next(ctx, input)
}

func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.next(ctx, input)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *ChatModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func (m *ChatModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastPrompt returns the messages of the most recent call.
func (m *ChatModel) LastPrompt() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

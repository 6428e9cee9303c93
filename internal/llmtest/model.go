// Package llmtest provides a scripted llms.Model for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// ErrScriptExhausted is returned once every scripted response was consumed.
var ErrScriptExhausted = errors.New("llmtest: no scripted response left")

// Call records one GenerateContent request.
type Call struct {
	Messages []llms.MessageContent
	Options  llms.CallOptions
}

// Model replays Responses in order and records each request.
type Model struct {
	mu        sync.Mutex
	Responses []*llms.ContentChoice
	Err       error
	Calls     []Call
}

var _ llms.Model = (*Model)(nil)

// NewModel returns a model answering with choices in order.
func NewModel(choices ...*llms.ContentChoice) *Model {
	return &Model{Responses: choices}
}

// Text is a choice holding plain content.
func Text(content string) *llms.ContentChoice {
	return &llms.ContentChoice{Content: content}
}

// ToolCalls is a choice requesting the given function calls. Each pair is
// name then JSON arguments; call ids are derived from the position.
func ToolCalls(pairs ...string) *llms.ContentChoice {
	c := &llms.ContentChoice{}
	for i := 0; i+1 < len(pairs); i += 2 {
		c.ToolCalls = append(c.ToolCalls, llms.ToolCall{
			ID:   "call_" + pairs[i],
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      pairs[i],
				Arguments: pairs[i+1],
			},
		})
	}
	return c
}

func (m *Model) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Messages: messages, Options: opts})
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return nil, ErrScriptExhausted
	}
	choice := m.Responses[0]
	m.Responses = m.Responses[1:]
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// CallCount returns how many requests were made.
func (m *Model) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Package message models the role-tagged conversation messages that flow
// through the lesson graphs.
//
// Messages are identified by ID so that the Add reducer can replace or remove
// them; a message without an ID receives a UUID when it is merged into state.
package message

import (
	"github.com/tmc/langchaingo/llms"
)

// ToolCall is a structured request from the model to run a named tool.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one conversation entry.
type Message struct {
	ID         string               `json:"id"`
	Name       string               `json:"name,omitempty"`
	Role       llms.ChatMessageType `json:"role"`
	Content    string               `json:"content"`
	ToolCalls  []ToolCall           `json:"tool_calls,omitempty"`
	ToolCallID string               `json:"tool_call_id,omitempty"`

	removal bool
}

// Option customizes a constructed message.
type Option func(*Message)

// WithName sets the speaker name.
func WithName(name string) Option {
	return func(m *Message) { m.Name = name }
}

// WithID sets an explicit message ID.
func WithID(id string) Option {
	return func(m *Message) { m.ID = id }
}

// WithToolCalls attaches tool calls to an AI message.
func WithToolCalls(calls ...ToolCall) Option {
	return func(m *Message) { m.ToolCalls = append(m.ToolCalls, calls...) }
}

func build(role llms.ChatMessageType, content string, opts []Option) Message {
	m := Message{Role: role, Content: content}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Human creates a user message.
func Human(content string, opts ...Option) Message {
	return build(llms.ChatMessageTypeHuman, content, opts)
}

// AI creates an assistant message.
func AI(content string, opts ...Option) Message {
	return build(llms.ChatMessageTypeAI, content, opts)
}

// System creates a system instruction.
func System(content string, opts ...Option) Message {
	return build(llms.ChatMessageTypeSystem, content, opts)
}

// ToolResult creates the tool message answering the call with id callID.
func ToolResult(callID, name, content string, opts ...Option) Message {
	m := build(llms.ChatMessageTypeTool, content, opts)
	m.ToolCallID = callID
	m.Name = name
	return m
}

// Remove creates a marker that deletes the message with the given ID when
// merged with Add.
func Remove(id string) Message {
	return Message{ID: id, removal: true}
}

// IsRemoval reports whether m is a removal marker.
func (m Message) IsRemoval() bool {
	return m.removal
}

// HasToolCalls reports whether m is an AI message requesting tools.
func (m Message) HasToolCalls() bool {
	return m.Role == llms.ChatMessageTypeAI && len(m.ToolCalls) > 0
}

// Last returns the final message, or false for an empty slice.
func Last(msgs []Message) (Message, bool) {
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}

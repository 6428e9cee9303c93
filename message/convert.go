package message

import (
	"github.com/tmc/langchaingo/llms"
)

// ToContent converts messages to the langchaingo request format.
func ToContent(msgs []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.MessageContent())
	}
	return out
}

// MessageContent converts a single message to langchaingo's MessageContent.
func (m Message) MessageContent() llms.MessageContent {
	switch m.Role {
	case llms.ChatMessageTypeTool:
		return llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{llms.ToolCallResponse{
				ToolCallID: m.ToolCallID,
				Name:       m.Name,
				Content:    m.Content,
			}},
		}
	case llms.ChatMessageTypeAI:
		mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if m.Content != "" || len(m.ToolCalls) == 0 {
			mc.Parts = append(mc.Parts, llms.TextPart(m.Content))
		}
		for _, tc := range m.ToolCalls {
			mc.Parts = append(mc.Parts, llms.ToolCall{
				ID:   tc.ID,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		return mc
	default:
		return llms.TextParts(m.Role, m.Content)
	}
}

// FromChoice builds an AI message from a model completion choice.
func FromChoice(choice *llms.ContentChoice) Message {
	m := AI(choice.Content)
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		m.ToolCalls = append(m.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}
	return m
}

package prebuilt

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/tvme/intro-LangGraph/message"
	"github.com/tvme/intro-LangGraph/tool"
)

// ErrNoChoices is returned when a model answers without any choice.
var ErrNoChoices = errors.New("model returned no choices")

// BoundModel is an llms.Model whose every call offers a fixed set of tools.
type BoundModel struct {
	model llms.Model
	tools []tools.Tool
	defs  []llms.Tool
}

var _ llms.Model = (*BoundModel)(nil)

// BindTools wraps model so that calls carry the definitions of ts.
func BindTools(model llms.Model, ts ...tools.Tool) *BoundModel {
	return &BoundModel{model: model, tools: ts, defs: tool.Definitions(ts...)}
}

// Tools returns the bound tools.
func (b *BoundModel) Tools() []tools.Tool {
	return b.tools
}

// GenerateContent calls the wrapped model with the tool definitions. Options
// passed by the caller are applied after them.
func (b *BoundModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := append([]llms.CallOption{llms.WithTools(b.defs)}, options...)
	return b.model.GenerateContent(ctx, messages, opts...)
}

// Call implements the single prompt form of llms.Model.
func (b *BoundModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, b, prompt, options...)
}

// Chat sends msgs to model and returns the first choice as an AI message.
func Chat(ctx context.Context, model llms.Model, msgs []message.Message, options ...llms.CallOption) (message.Message, error) {
	resp, err := model.GenerateContent(ctx, message.ToContent(msgs), options...)
	if err != nil {
		return message.Message{}, fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return message.Message{}, ErrNoChoices
	}
	return message.FromChoice(resp.Choices[0]), nil
}

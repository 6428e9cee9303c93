// Package gopenai implements langchaingo's llms.Model on top of
// github.com/sashabaranov/go-openai.
package gopenai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
)

var (
	ErrEmptyResponse = errors.New("no response")
	ErrMissingAPIKey = errors.New("missing OpenAI API key")
)

// LLM is a chat model served by the OpenAI chat completions API.
type LLM struct {
	client           *openai.Client
	model            string
	CallbacksHandler callbacks.Handler
}

var _ llms.Model = (*LLM)(nil)

// New returns an LLM. The API key comes from WithAPIKey or OPENAI_API_KEY.
//
//	llm, err := gopenai.New(gopenai.WithModel("gpt-4o-mini"))
func New(opts ...Option) (*LLM, error) {
	o := &options{
		apiKey:  getEnvOrDefault("OPENAI_API_KEY", ""),
		model:   getEnvOrDefault("OPENAI_MODEL", DefaultModel),
		baseURL: getEnvOrDefault("OPENAI_BASE_URL", ""),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.apiKey == "" {
		return nil, fmt.Errorf("%w: pass gopenai.WithAPIKey or export OPENAI_API_KEY", ErrMissingAPIKey)
	}

	cfg := openai.DefaultConfig(o.apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.organization != "" {
		cfg.OrgID = o.organization
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}

	return &LLM{
		client:           openai.NewClientWithConfig(cfg),
		model:            o.model,
		CallbacksHandler: o.callbacksHandler,
	}, nil
}

// Call generates a response for a single prompt.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements llms.Model.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentStart(ctx, messages)
	}

	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	req, err := o.request(messages, opts)
	if err != nil {
		return nil, o.fail(ctx, err)
	}

	result, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, o.fail(ctx, err)
	}
	if len(result.Choices) == 0 {
		return nil, o.fail(ctx, ErrEmptyResponse)
	}

	resp := &llms.ContentResponse{Choices: make([]*llms.ContentChoice, 0, len(result.Choices))}
	for _, c := range result.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"PromptTokens":     result.Usage.PromptTokens,
				"CompletionTokens": result.Usage.CompletionTokens,
				"TotalTokens":      result.Usage.TotalTokens,
				"model":            result.Model,
			},
		}
		for _, tc := range c.Message.ToolCalls {
			choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		resp.Choices = append(resp.Choices, choice)
	}

	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentEnd(ctx, resp)
	}
	return resp, nil
}

func (o *LLM) fail(ctx context.Context, err error) error {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMError(ctx, err)
	}
	return err
}

func (o *LLM) request(messages []llms.MessageContent, opts *llms.CallOptions) (openai.ChatCompletionRequest, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
		MaxTokens:   opts.MaxTokens,
		Stop:        opts.StopWords,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.N > 0 {
		req.N = opts.N
	}

	for _, m := range messages {
		msg, err := toChatMessage(m)
		if err != nil {
			return req, err
		}
		req.Messages = append(req.Messages, msg...)
	}

	for _, t := range opts.Tools {
		if t.Function == nil {
			continue
		}
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	return req, nil
}

// toChatMessage maps one langchaingo message to OpenAI messages. Tool
// responses become one message each.
func toChatMessage(m llms.MessageContent) ([]openai.ChatCompletionMessage, error) {
	role, err := roleOf(m.Role)
	if err != nil {
		return nil, err
	}

	if role == openai.ChatMessageRoleTool {
		var out []openai.ChatCompletionMessage
		for _, p := range m.Parts {
			if r, ok := p.(llms.ToolCallResponse); ok {
				out = append(out, openai.ChatCompletionMessage{
					Role:       role,
					Content:    r.Content,
					Name:       r.Name,
					ToolCallID: r.ToolCallID,
				})
			}
		}
		return out, nil
	}

	msg := openai.ChatCompletionMessage{Role: role}
	var content strings.Builder
	for _, p := range m.Parts {
		switch p := p.(type) {
		case llms.TextContent:
			content.WriteString(p.Text)
		case llms.ToolCall:
			if p.FunctionCall == nil {
				continue
			}
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   p.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      p.FunctionCall.Name,
					Arguments: p.FunctionCall.Arguments,
				},
			})
		}
	}
	msg.Content = content.String()
	return []openai.ChatCompletionMessage{msg}, nil
}

func roleOf(t llms.ChatMessageType) (string, error) {
	switch t {
	case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric, "":
		return openai.ChatMessageRoleUser, nil
	case llms.ChatMessageTypeAI:
		return openai.ChatMessageRoleAssistant, nil
	case llms.ChatMessageTypeSystem:
		return openai.ChatMessageRoleSystem, nil
	case llms.ChatMessageTypeTool:
		return openai.ChatMessageRoleTool, nil
	case llms.ChatMessageTypeFunction:
		return openai.ChatMessageRoleFunction, nil
	default:
		return "", fmt.Errorf("unsupported message role %q", t)
	}
}

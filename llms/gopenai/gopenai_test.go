package gopenai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func newTestLLM(t *testing.T, handler http.HandlerFunc) *LLM {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	llm, err := New(WithAPIKey("test-key"), WithModel("gpt-4o-mini"), WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)
	return llm
}

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := New()
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	llm, err := New(WithAPIKey("k"))
	require.NoError(t, err)
	assert.NotNil(t, llm)
}

func TestGenerateContent_TextReply(t *testing.T) {
	var got openai.ChatCompletionRequest
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: "Hello Alex!"},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
		})
	})

	resp, err := llm.GenerateContent(context.Background(), []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "Be brief."),
		llms.TextParts(llms.ChatMessageTypeHuman, "Hello world"),
	}, llms.WithTemperature(0))
	require.NoError(t, err)

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Hello Alex!", resp.Choices[0].Content)
	assert.Equal(t, "stop", resp.Choices[0].StopReason)
	assert.Equal(t, 15, resp.Choices[0].GenerationInfo["TotalTokens"])

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, "Hello world", got.Messages[1].Content)
}

func TestGenerateContent_ToolRoundTrip(t *testing.T) {
	var got openai.ChatCompletionRequest
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role: "assistant",
					ToolCalls: []openai.ToolCall{{
						ID:       "call_1",
						Type:     openai.ToolTypeFunction,
						Function: openai.FunctionCall{Name: "multiply", Arguments: `{"a":11,"b":7}`},
					}},
				},
				FinishReason: openai.FinishReasonToolCalls,
			}},
		})
	})

	history := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "Multiply 2 and 3"),
		{Role: llms.ChatMessageTypeAI, Parts: []llms.ContentPart{llms.ToolCall{
			ID: "call_0", Type: "function",
			FunctionCall: &llms.FunctionCall{Name: "multiply", Arguments: `{"a":2,"b":3}`},
		}}},
		{Role: llms.ChatMessageTypeTool, Parts: []llms.ContentPart{llms.ToolCallResponse{
			ToolCallID: "call_0", Name: "multiply", Content: "6",
		}}},
		llms.TextParts(llms.ChatMessageTypeHuman, "Multiply 11 and 7"),
	}
	tools := []llms.Tool{{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "multiply",
			Description: "Multiplies a and b.",
			Parameters:  map[string]any{"type": "object"},
		},
	}}

	resp, err := llm.GenerateContent(context.Background(), history, llms.WithTools(tools))
	require.NoError(t, err)

	require.Len(t, resp.Choices[0].ToolCalls, 1)
	tc := resp.Choices[0].ToolCalls[0]
	assert.Equal(t, "call_1", tc.ID)
	assert.Equal(t, "multiply", tc.FunctionCall.Name)
	assert.JSONEq(t, `{"a":11,"b":7}`, tc.FunctionCall.Arguments)

	require.Len(t, got.Tools, 1)
	assert.Equal(t, "multiply", got.Tools[0].Function.Name)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleAssistant, got.Messages[1].Role)
	require.Len(t, got.Messages[1].ToolCalls, 1)
	assert.Equal(t, openai.ChatMessageRoleTool, got.Messages[2].Role)
	assert.Equal(t, "call_0", got.Messages[2].ToolCallID)
	assert.Equal(t, "6", got.Messages[2].Content)
}

func TestGenerateContent_EmptyChoices(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	})

	_, err := llm.GenerateContent(context.Background(), []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "hi"),
	})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateContent_APIError(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	})

	_, err := llm.GenerateContent(context.Background(), []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "hi"),
	})
	assert.ErrorContains(t, err, "bad key")
}

func TestRoleOf(t *testing.T) {
	r, err := roleOf(llms.ChatMessageTypeAI)
	require.NoError(t, err)
	assert.Equal(t, openai.ChatMessageRoleAssistant, r)

	_, err = roleOf("robot")
	assert.Error(t, err)
}

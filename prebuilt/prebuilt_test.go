package prebuilt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/tvme/intro-LangGraph/graph"
	"github.com/tvme/intro-LangGraph/internal/llmtest"
	"github.com/tvme/intro-LangGraph/message"
	"github.com/tvme/intro-LangGraph/tool"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its input" }
func (echoTool) Call(_ context.Context, input string) (string, error) {
	return "echo: " + input, nil
}

type failingTool struct{ panics bool }

func (failingTool) Name() string        { return "fail" }
func (failingTool) Description() string { return "always fails" }
func (f failingTool) Call(context.Context, string) (string, error) {
	if f.panics {
		panic("boom")
	}
	return "", errors.New("broken")
}

func aiWithCalls(calls ...message.ToolCall) message.Message {
	return message.AI("", message.WithToolCalls(calls...))
}

func TestToolNode_RunsCallsInOrder(t *testing.T) {
	node := NewToolNode(tool.ArithmeticTools())
	msgs := []message.Message{
		message.Human("Multiply 11 and 7, then add 1 and 2"),
		aiWithCalls(
			message.ToolCall{ID: "c1", Name: "multiply", Arguments: `{"a": 11, "b": 7}`},
			message.ToolCall{ID: "c2", Name: "add", Arguments: `{"a": 1, "b": 2}`},
		),
	}

	out, err := node.Run(context.Background(), msgs)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, llms.ChatMessageTypeTool, out[0].Role)
	assert.Equal(t, "c1", out[0].ToolCallID)
	assert.Equal(t, "multiply", out[0].Name)
	assert.Equal(t, "77", out[0].Content)
	assert.Equal(t, "c2", out[1].ToolCallID)
	assert.Equal(t, "3", out[1].Content)
}

func TestToolNode_ErrorsBecomeMessages(t *testing.T) {
	node := NewToolNode([]tools.Tool{echoTool{}, failingTool{}})

	out, err := node.Run(context.Background(), []message.Message{aiWithCalls(
		message.ToolCall{ID: "1", Name: "missing", Arguments: "{}"},
		message.ToolCall{ID: "2", Name: "fail", Arguments: "{}"},
	)})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Error: missing is not a valid tool, try one of [echo, fail].", out[0].Content)
	assert.Equal(t, "Error: broken", out[1].Content)
}

func TestToolNode_RecoversPanics(t *testing.T) {
	node := NewToolNode([]tools.Tool{failingTool{panics: true}})

	out, err := node.Run(context.Background(), []message.Message{aiWithCalls(
		message.ToolCall{ID: "1", Name: "fail", Arguments: "{}"},
	)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out[0].Content, "Error: tool fail panicked"))
}

func TestToolNode_UnwrapsPlainInput(t *testing.T) {
	node := NewToolNode([]tools.Tool{echoTool{}})

	out, err := node.Run(context.Background(), []message.Message{aiWithCalls(
		message.ToolCall{ID: "1", Name: "echo", Arguments: `{"input": "hi"}`},
	)})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", out[0].Content)
}

func TestToolNode_NoToolCalls(t *testing.T) {
	node := NewToolNode(nil)
	_, err := node.Run(context.Background(), []message.Message{message.AI("done")})
	assert.ErrorIs(t, err, ErrNoToolCalls)

	_, err = node.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoToolCalls)
}

func TestToolsCondition(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, graph.END, ToolsCondition(ctx, graph.MessagesState{}))
	assert.Equal(t, graph.END, ToolsCondition(ctx, graph.MessagesState{
		Messages: []message.Message{message.Human("hi"), message.AI("hello")},
	}))
	assert.Equal(t, ToolsNodeName, ToolsCondition(ctx, graph.MessagesState{
		Messages: []message.Message{aiWithCalls(message.ToolCall{ID: "1", Name: "add"})},
	}))
}

func TestBindTools_AttachesDefinitions(t *testing.T) {
	model := llmtest.NewModel(llmtest.Text("ok"))
	bound := BindTools(model, tool.MultiplyTool())

	reply, err := Chat(context.Background(), bound, []message.Message{message.Human("Hello!")})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Content)

	require.Len(t, model.Calls, 1)
	defs := model.Calls[0].Options.Tools
	require.Len(t, defs, 1)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, "multiply", defs[0].Function.Name)
	assert.Len(t, bound.Tools(), 1)
}

type emptyModel struct{}

func (emptyModel) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{}, nil
}

func (emptyModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return "", nil
}

func TestChat_NoChoices(t *testing.T) {
	_, err := Chat(context.Background(), emptyModel{}, []message.Message{message.Human("hi")})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestReactAgent_Loop(t *testing.T) {
	model := llmtest.NewModel(
		llmtest.ToolCalls("add", `{"a": 3, "b": 4}`),
		llmtest.ToolCalls("multiply", `{"a": 7, "b": 2}`),
		llmtest.Text("The result is 14."),
	)
	g := NewReactAgent(model, tool.ArithmeticTools(), AgentOptions{
		SystemPrompt: "You are a helpful assistant tasked with performing arithmetic on a set of inputs.",
		NodeName:     "arithmetic_llm",
	})
	r, err := g.Compile()
	require.NoError(t, err)

	out, err := r.Invoke(context.Background(), graph.MessagesState{
		Messages: []message.Message{message.Human("Add 3 and 4. Multiply the output by 2.")},
	})
	require.NoError(t, err)

	require.Len(t, out.Messages, 6)
	assert.Equal(t, "7", out.Messages[2].Content)
	assert.Equal(t, "14", out.Messages[4].Content)
	assert.Equal(t, "The result is 14.", out.Messages[5].Content)
	for _, m := range out.Messages {
		assert.NotEqual(t, llms.ChatMessageTypeSystem, m.Role)
		assert.NotEmpty(t, m.ID)
	}

	require.Equal(t, 3, model.CallCount())
	assert.Equal(t, llms.ChatMessageTypeSystem, model.Calls[0].Messages[0].Role)
}

func TestReactAgent_ModelError(t *testing.T) {
	model := llmtest.NewModel()
	model.Err = errors.New("rate limited")
	r, err := NewReactAgent(model, nil, AgentOptions{}).Compile()
	require.NoError(t, err)

	_, err = r.Invoke(context.Background(), graph.MessagesState{
		Messages: []message.Message{message.Human("hi")},
	})
	assert.ErrorContains(t, err, "rate limited")
}

package message

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// wordCounter counts one token per word so trimming is deterministic.
func wordCounter(msgs []Message) int {
	n := 0
	for _, m := range msgs {
		n += len(strings.Fields(m.Content))
	}
	return n
}

func TestConstructors(t *testing.T) {
	h := Human("Hello world", WithName("Alex"))
	assert.Equal(t, llms.ChatMessageTypeHuman, h.Role)
	assert.Equal(t, "Alex", h.Name)
	assert.Empty(t, h.ID)

	a := AI("", WithToolCalls(ToolCall{ID: "call_1", Name: "multiply", Arguments: `{"a":11,"b":7}`}))
	assert.True(t, a.HasToolCalls())

	tr := ToolResult("call_1", "multiply", "77")
	assert.Equal(t, llms.ChatMessageTypeTool, tr.Role)
	assert.Equal(t, "call_1", tr.ToolCallID)
	assert.False(t, tr.HasToolCalls())

	r := Remove("m1")
	assert.True(t, r.IsRemoval())
	assert.False(t, h.IsRemoval())
}

func TestAdd_AppendsAndAssignsIDs(t *testing.T) {
	current := []Message{AI("So you said you were researching ocean mammals?", WithID("1"))}
	merged, err := Add(current, []Message{Human("Yes, I know about whales.")})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "1", merged[0].ID)
	assert.NotEmpty(t, merged[1].ID)
	assert.Len(t, current, 1)
}

func TestAdd_ReplacesSameID(t *testing.T) {
	current := []Message{Human("first", WithID("a")), AI("reply", WithID("b"))}
	merged, err := Add(current, []Message{Human("edited", WithID("a"))})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "edited", merged[0].Content)
	assert.Equal(t, "reply", merged[1].Content)
}

func TestAdd_Removal(t *testing.T) {
	current := []Message{
		Human("1", WithID("1")),
		AI("2", WithID("2")),
		Human("3", WithID("3")),
		AI("4", WithID("4")),
	}

	merged, err := Add(current, RemoveAllBut(current, 2))
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "3", merged[0].ID)
	assert.Equal(t, "4", merged[1].ID)

	_, err = Add(current, []Message{Remove("missing")})
	assert.ErrorIs(t, err, ErrUnknownMessageID)
}

func TestRemoveAllBut(t *testing.T) {
	msgs := []Message{Human("a", WithID("a")), AI("b", WithID("b"))}
	assert.Nil(t, RemoveAllBut(msgs, 2))
	assert.Nil(t, RemoveAllBut(msgs, 5))

	markers := RemoveAllBut(msgs, 0)
	require.Len(t, markers, 2)
	assert.True(t, markers[0].IsRemoval())
}

func TestFilter(t *testing.T) {
	msgs := []Message{System("sys"), Human("hi"), AI("hello"), Human("bye")}
	humans := Filter(msgs, llms.ChatMessageTypeHuman)
	require.Len(t, humans, 2)
	assert.Equal(t, "bye", humans[1].Content)
}

func TestTrim_Last(t *testing.T) {
	msgs := []Message{
		Human("one two three"),
		AI("four five"),
		Human("six seven eight nine"),
	}

	out, err := Trim(msgs, TrimOptions{MaxTokens: 6, Strategy: StrategyLast, TokenCounter: wordCounter})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "four five", out[0].Content)

	out, err = Trim(msgs, TrimOptions{MaxTokens: 7, Strategy: StrategyLast, TokenCounter: wordCounter, AllowPartial: true})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "three", out[0].Content)
}

func TestTrim_LastStartOnAndSystem(t *testing.T) {
	msgs := []Message{
		System("be brief"),
		Human("q1"),
		AI("a1 long answer"),
		Human("q2"),
		AI("a2"),
	}

	out, err := Trim(msgs, TrimOptions{
		MaxTokens:     7,
		Strategy:      StrategyLast,
		TokenCounter:  wordCounter,
		IncludeSystem: true,
		StartOn:       llms.ChatMessageTypeHuman,
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, out[0].Role)
	assert.Equal(t, "q2", out[1].Content)
}

func TestTrim_First(t *testing.T) {
	msgs := []Message{Human("a b"), AI("c d e"), Human("f")}

	out, err := Trim(msgs, TrimOptions{MaxTokens: 4, Strategy: StrategyFirst, TokenCounter: wordCounter})
	require.NoError(t, err)
	require.Len(t, out, 1)

	out, err = Trim(msgs, TrimOptions{MaxTokens: 4, Strategy: StrategyFirst, TokenCounter: wordCounter, AllowPartial: true})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "c d", out[1].Content)
}

func TestTrim_Errors(t *testing.T) {
	_, err := Trim(nil, TrimOptions{})
	assert.Error(t, err)

	_, err = Trim(nil, TrimOptions{MaxTokens: 10, Strategy: "middle"})
	assert.Error(t, err)
}

func TestContentConversion(t *testing.T) {
	msgs := []Message{
		System("You are a helpful assistant"),
		Human("Multiply 11 and 7"),
		AI("", WithToolCalls(ToolCall{ID: "call_1", Name: "multiply", Arguments: `{"a":11,"b":7}`})),
		ToolResult("call_1", "multiply", "77"),
	}

	content := ToContent(msgs)
	require.Len(t, content, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, content[0].Role)

	require.Len(t, content[2].Parts, 1)
	call, ok := content[2].Parts[0].(llms.ToolCall)
	require.True(t, ok)
	assert.Equal(t, "multiply", call.FunctionCall.Name)

	resp, ok := content[3].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "77", resp.Content)

	m := FromChoice(&llms.ContentChoice{
		Content: "",
		ToolCalls: []llms.ToolCall{
			{ID: "call_2", Type: "function", FunctionCall: &llms.FunctionCall{Name: "add", Arguments: `{"a":11,"b":4}`}},
		},
	})
	assert.Equal(t, llms.ChatMessageTypeAI, m.Role)
	require.Len(t, m.ToolCalls, 1)
	assert.Equal(t, "add", m.ToolCalls[0].Name)
}

func TestPrettyPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrettyPrint(&buf, Human("Hello world", WithName("Alex"))))

	out := buf.String()
	assert.Contains(t, out, "Human Message")
	assert.Contains(t, out, "Name: Alex")
	assert.Contains(t, out, "Hello world")

	s := Pretty(AI("", WithToolCalls(ToolCall{ID: "call_9", Name: "divide", Arguments: `{"a":1,"b":2}`})))
	assert.Contains(t, s, "Tool Calls:")
	assert.Contains(t, s, "divide (call_9)")
}

func TestRenderTranscriptHTML(t *testing.T) {
	html := string(RenderTranscriptHTML([]Message{
		Human("What is **LangGraph**?", WithName("Lance")),
		AI("A library. <script>alert(1)</script>"),
	}))

	assert.Contains(t, html, "Human Message (Lance)")
	assert.Contains(t, html, "<strong>LangGraph</strong>")
	assert.NotContains(t, html, "<script>")
}

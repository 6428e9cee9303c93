package prebuilt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/tools"

	"github.com/tvme/intro-LangGraph/graph"
	"github.com/tvme/intro-LangGraph/message"
	"github.com/tvme/intro-LangGraph/tool"
)

// ErrNoToolCalls is returned when the tool node runs without a pending request.
var ErrNoToolCalls = errors.New("last message has no tool calls")

// ToolNode executes the tool calls of the last AI message.
type ToolNode struct {
	tools map[string]tools.Tool
}

// NewToolNode creates a tool node for ts.
func NewToolNode(ts []tools.Tool) *ToolNode {
	byName := make(map[string]tools.Tool, len(ts))
	for _, t := range ts {
		byName[t.Name()] = t
	}
	return &ToolNode{tools: byName}
}

// Invoke is a graph node over MessagesState.
func (n *ToolNode) Invoke(ctx context.Context, state graph.MessagesState) (graph.MessagesState, error) {
	results, err := n.Run(ctx, state.Messages)
	if err != nil {
		return graph.MessagesState{}, err
	}
	return graph.MessagesState{Messages: results}, nil
}

// Run executes every tool call of the last message concurrently and returns
// one tool message per call, in call order. Unknown tools and tool failures
// are reported to the model as "Error: ..." content.
func (n *ToolNode) Run(ctx context.Context, msgs []message.Message) ([]message.Message, error) {
	last, ok := message.Last(msgs)
	if !ok || !last.HasToolCalls() {
		return nil, ErrNoToolCalls
	}

	results := make([]message.Message, len(last.ToolCalls))
	var wg sync.WaitGroup
	for i, call := range last.ToolCalls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = message.ToolResult(call.ID, call.Name, n.call(ctx, call))
		}()
	}
	wg.Wait()
	return results, nil
}

func (n *ToolNode) call(ctx context.Context, call message.ToolCall) (out string) {
	t, ok := n.tools[call.Name]
	if !ok {
		return fmt.Sprintf("Error: %s is not a valid tool, try one of [%s].", call.Name, n.names())
	}
	defer func() {
		if p := recover(); p != nil {
			out = fmt.Sprintf("Error: tool %s panicked: %v", call.Name, p)
		}
	}()

	res, err := t.Call(ctx, toolInput(t, call.Arguments))
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return res
}

func (n *ToolNode) names() string {
	return strings.Join(sortedKeys(n.tools), ", ")
}

// toolInput passes JSON arguments through to tools that declare a schema
// and unwraps {"input": "..."} for plain langchaingo tools.
func toolInput(t tools.Tool, arguments string) string {
	if _, ok := t.(tool.Definer); ok {
		return arguments
	}
	var args struct {
		Input *string `json:"input"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err == nil && args.Input != nil {
		return *args.Input
	}
	return arguments
}

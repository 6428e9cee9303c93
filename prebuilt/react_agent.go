package prebuilt

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/tvme/intro-LangGraph/graph"
	"github.com/tvme/intro-LangGraph/message"
)

// AgentOptions configures NewReactAgent.
type AgentOptions struct {
	// SystemPrompt, when set, is sent before the conversation on every call.
	// It is not stored in the state.
	SystemPrompt string
	// NodeName names the model node. Defaults to "agent".
	NodeName string
	// CallOptions are passed to every model call.
	CallOptions []llms.CallOption
}

// NewReactAgent builds the tool-calling loop: the model node answers or
// requests tools, ToolsCondition routes to the tool node, and tool results
// flow back to the model until it answers without tool calls.
//
// The graph is returned uncompiled so callers can attach a checkpointer.
func NewReactAgent(model llms.Model, ts []tools.Tool, opts AgentOptions) *graph.StateGraph[graph.MessagesState] {
	nodeName := opts.NodeName
	if nodeName == "" {
		nodeName = "agent"
	}
	bound := BindTools(model, ts...)

	var prefix []message.Message
	if opts.SystemPrompt != "" {
		prefix = []message.Message{message.System(opts.SystemPrompt)}
	}

	g := graph.NewStateGraph[graph.MessagesState]()
	g.SetSchema(graph.MessagesSchema())

	g.AddNode(nodeName, "decides whether to answer or call tools", func(ctx context.Context, state graph.MessagesState) (graph.MessagesState, error) {
		reply, err := Chat(ctx, bound, append(append([]message.Message(nil), prefix...), state.Messages...), opts.CallOptions...)
		if err != nil {
			return graph.MessagesState{}, err
		}
		return graph.MessagesState{Messages: []message.Message{reply}}, nil
	})
	g.AddNode(ToolsNodeName, "executes requested tools", NewToolNode(ts).Invoke)

	g.AddEdge(graph.START, nodeName)
	g.AddConditionalEdge(nodeName, ToolsCondition, ToolsNodeName, graph.END)
	g.AddEdge(ToolsNodeName, nodeName)
	return g
}

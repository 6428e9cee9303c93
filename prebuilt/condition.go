package prebuilt

import (
	"context"
	"maps"
	"slices"

	"github.com/tvme/intro-LangGraph/graph"
	"github.com/tvme/intro-LangGraph/message"
)

// ToolsNodeName is the node ToolsCondition routes to.
const ToolsNodeName = "tools"

// ToolsCondition routes to the tools node when the last message requests
// tools and to END otherwise.
func ToolsCondition(_ context.Context, state graph.MessagesState) string {
	return RouteTools(state.Messages)
}

// RouteTools is ToolsCondition for any state holding a message list.
func RouteTools(msgs []message.Message) string {
	if last, ok := message.Last(msgs); ok && last.HasToolCalls() {
		return ToolsNodeName
	}
	return graph.END
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

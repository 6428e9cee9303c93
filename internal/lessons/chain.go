package lessons

import (
	"context"

	"github.com/tmc/langchaingo/llms"

	"github.com/tvme/intro-LangGraph/graph"
	"github.com/tvme/intro-LangGraph/internal/chatmodel"
	"github.com/tvme/intro-LangGraph/message"
	"github.com/tvme/intro-LangGraph/prebuilt"
	"github.com/tvme/intro-LangGraph/tool"
)

// ChainMessages is the research conversation used to introduce messages.
func ChainMessages() []message.Message {
	return []message.Message{
		message.AI("So you said you were researching ocean mammals?", message.WithName("Model")),
		message.Human("Yes, that's right.", message.WithName("Lance")),
		message.AI("Great, what would you like to learn about.", message.WithName("Model")),
		message.Human("I want to learn about the best place to see Orcas in the US.", message.WithName("Lance")),
	}
}

// BuildChain is a single tool_calling_llm node over MessagesState.
func BuildChain(model llms.Model) *graph.StateGraph[graph.MessagesState] {
	g := graph.NewStateGraph[graph.MessagesState]()
	g.SetSchema(graph.MessagesSchema())
	g.AddNode("tool_calling_llm", "calls the model with the multiply tool", func(ctx context.Context, s graph.MessagesState) (graph.MessagesState, error) {
		reply, err := prebuilt.Chat(ctx, model, s.Messages)
		if err != nil {
			return graph.MessagesState{}, err
		}
		return graph.MessagesState{Messages: []message.Message{reply}}, nil
	})
	g.AddEdge(graph.START, "tool_calling_llm")
	g.AddEdge("tool_calling_llm", graph.END)
	return g
}

// RunChain shows a bound tool call, then runs the chain graph twice.
func RunChain(ctx context.Context, env *Env) error {
	model, err := env.NewModel(chatmodel.Options{Model: "gpt-4o", Temperature: chatmodel.Temperature(0)})
	if err != nil {
		return err
	}
	bound := prebuilt.BindTools(model, tool.MultiplyTool())

	call, err := prebuilt.Chat(ctx, bound, []message.Message{
		message.Human("What is 11 multiplied by 7", message.WithName("Lance")),
	})
	if err != nil {
		return err
	}
	env.println("==============tool call================")
	for _, tc := range call.ToolCalls {
		env.printf("{name: %s, args: %s, id: %s}\n", tc.Name, tc.Arguments, tc.ID)
	}

	r, err := BuildChain(bound).Compile()
	if err != nil {
		return err
	}
	for _, prompt := range []string{"Hello!", "Multiply 11 and 7"} {
		out, err := r.Invoke(ctx, graph.MessagesState{Messages: []message.Message{message.Human(prompt)}})
		if err != nil {
			return err
		}
		if err := message.PrettyPrintAll(env.Out, out.Messages); err != nil {
			return err
		}
	}
	return nil
}

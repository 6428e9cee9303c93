package lessons

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/tvme/intro-LangGraph/graph"
	"github.com/tvme/intro-LangGraph/internal/chatmodel"
	"github.com/tvme/intro-LangGraph/message"
	"github.com/tvme/intro-LangGraph/prebuilt"
)

// TrimOptions configures BuildTrim.
type TrimOptions struct {
	MaxTokens int
	Counter   message.TokenCounter
	// Filter adds a filter_messages node that removes all but the two most
	// recent messages before the model runs.
	Filter bool
}

// BuildTrim is a chat_model_node that only sends the most recent messages
// fitting into opts.MaxTokens.
func BuildTrim(model llms.Model, opts TrimOptions) *graph.StateGraph[graph.MessagesState] {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 100
	}

	g := graph.NewStateGraph[graph.MessagesState]()
	g.SetSchema(graph.MessagesSchema())
	g.AddNode("chat_model_node", "answers from the trimmed conversation", func(ctx context.Context, s graph.MessagesState) (graph.MessagesState, error) {
		trimmed, err := message.Trim(s.Messages, message.TrimOptions{
			MaxTokens:    opts.MaxTokens,
			Strategy:     message.StrategyLast,
			TokenCounter: opts.Counter,
		})
		if err != nil {
			return graph.MessagesState{}, fmt.Errorf("trim messages: %w", err)
		}
		reply, err := prebuilt.Chat(ctx, model, trimmed)
		if err != nil {
			return graph.MessagesState{}, err
		}
		return graph.MessagesState{Messages: []message.Message{reply}}, nil
	})

	if opts.Filter {
		g.AddNode("filter_messages", "keeps the two most recent messages", func(_ context.Context, s graph.MessagesState) (graph.MessagesState, error) {
			return graph.MessagesState{Messages: message.RemoveAllBut(s.Messages, 2)}, nil
		})
		g.AddEdge(graph.START, "filter_messages")
		g.AddEdge("filter_messages", "chat_model_node")
	} else {
		g.AddEdge(graph.START, "chat_model_node")
	}
	g.AddEdge("chat_model_node", graph.END)
	return g
}

// TrimConversation is the repeated ocean mammals exchange.
func TrimConversation() []message.Message {
	return []message.Message{
		message.AI("So you said you were researching ocean mammals?", message.WithName("Bot"), message.WithID("1")),
		message.Human("Yes, I know about whales. But what others should I learn about?", message.WithName("Lance"), message.WithID("2")),
		message.AI("So you said you were researching ocean mammals?", message.WithName("Bot"), message.WithID("3")),
		message.Human("Yes, I know about whales. But what others should I learn about?", message.WithName("Lance"), message.WithID("4")),
	}
}

// RunTrim invokes the trimming graph, extends the conversation and shows
// what a 50 token window keeps before invoking it again.
func RunTrim(ctx context.Context, env *Env, filter bool) error {
	model, err := env.NewModel(chatmodel.Options{Model: "gpt-4o-mini"})
	if err != nil {
		return err
	}
	r, err := BuildTrim(model, TrimOptions{MaxTokens: 100, Counter: env.TokenCounter, Filter: filter}).Compile()
	if err != nil {
		return err
	}
	config := &graph.Config{Callbacks: env.callbacks()}

	msgs := TrimConversation()
	out, err := r.InvokeWithConfig(ctx, graph.MessagesState{Messages: msgs}, config)
	if err != nil {
		return err
	}
	last, _ := message.Last(out.Messages)
	msgs = append(msgs, last, message.Human("Tell me where Orcas live!", message.WithName("Lance")))

	window, err := message.Trim(msgs, message.TrimOptions{
		MaxTokens:    50,
		Strategy:     message.StrategyLast,
		TokenCounter: env.TokenCounter,
	})
	if err != nil {
		return err
	}
	if err := message.PrettyPrintAll(env.Out, window); err != nil {
		return err
	}

	out, err = r.InvokeWithConfig(ctx, graph.MessagesState{Messages: msgs}, config)
	if err != nil {
		return err
	}
	return message.PrettyPrintAll(env.Out, out.Messages)
}

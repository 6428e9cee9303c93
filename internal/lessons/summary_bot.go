package lessons

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/tvme/intro-LangGraph/graph"
	"github.com/tvme/intro-LangGraph/internal/chatmodel"
	"github.com/tvme/intro-LangGraph/message"
	"github.com/tvme/intro-LangGraph/prebuilt"
)

// SummaryThread is the persistent thread of the summarizing bot.
const SummaryThread = "a1"

// SummaryState is a conversation plus a running summary of what was
// dropped from it.
type SummaryState struct {
	Messages []message.Message `json:"messages"`
	Summary  string            `json:"summary"`
}

// SummarySchema appends messages with message.Add and replaces the summary
// only when a node produced a new one.
func SummarySchema() *graph.StructSchema[SummaryState] {
	return graph.NewStructSchema(SummaryState{}, func(current, update SummaryState) (SummaryState, error) {
		merged, err := message.Add(current.Messages, update.Messages)
		if err != nil {
			return current, err
		}
		current.Messages = merged
		if update.Summary != "" {
			current.Summary = update.Summary
		}
		return current, nil
	})
}

// BuildSummaryBot answers in the conversation node and, once the history
// grows past six messages, folds all but the two most recent into the
// summary.
func BuildSummaryBot(model llms.Model) *graph.StateGraph[SummaryState] {
	g := graph.NewStateGraph[SummaryState]()
	g.SetSchema(SummarySchema())

	g.AddNode("conversation", "answers using the summary as context", func(ctx context.Context, s SummaryState) (SummaryState, error) {
		msgs := s.Messages
		if s.Summary != "" {
			msgs = append([]message.Message{message.System("Summary of conversation earlier: " + s.Summary)}, msgs...)
		}
		reply, err := prebuilt.Chat(ctx, model, msgs)
		if err != nil {
			return SummaryState{}, err
		}
		return SummaryState{Messages: []message.Message{reply}}, nil
	})

	g.AddNode("summarize_conversation", "extends the summary and drops old messages", func(ctx context.Context, s SummaryState) (SummaryState, error) {
		prompt := "Create a summary of the conversation above:"
		if s.Summary != "" {
			prompt = fmt.Sprintf("This is summary of the conversation to date: %s\n\n"+
				"Extend the summary by taking into account the new messages above:", s.Summary)
		}
		msgs := append(append([]message.Message(nil), s.Messages...), message.Human(prompt))
		reply, err := prebuilt.Chat(ctx, model, msgs)
		if err != nil {
			return SummaryState{}, err
		}
		return SummaryState{
			Summary:  reply.Content,
			Messages: message.RemoveAllBut(s.Messages, 2),
		}, nil
	})

	g.AddEdge(graph.START, "conversation")
	g.AddConditionalEdge("conversation", ShouldSummarize, "summarize_conversation", graph.END)
	g.AddEdge("summarize_conversation", graph.END)
	return g
}

// ShouldSummarize routes to summarize_conversation when the conversation
// holds more than six messages.
func ShouldSummarize(_ context.Context, s SummaryState) string {
	if len(s.Messages) > 6 {
		return "summarize_conversation"
	}
	return graph.END
}

// RunSummaryBot chats on the persistent thread until the user types exit
// or quit.
func RunSummaryBot(ctx context.Context, env *Env) error {
	model, err := env.NewModel(chatmodel.Options{Model: "gpt-4o-mini", Temperature: chatmodel.Temperature(0)})
	if err != nil {
		return err
	}
	g := BuildSummaryBot(model)

	if env.inStudio() {
		_, err := g.Compile()
		return err
	}

	cp, release, err := env.OpenCheckpointer(ctx)
	if err != nil {
		return err
	}
	defer release()

	r, err := g.Compile(graph.WithCheckpointer(cp))
	if err != nil {
		return err
	}
	if err := writeDiagram(ctx, env, graph.NewExporter(g), "summarizing_bot_with_memory_schema"); err != nil {
		env.Logger.Warn("write diagram: %v", err)
	}

	config := graph.WithThreadID(SummaryThread)
	config.Callbacks = env.callbacks()
	config.Metadata = map[string]any{"langfuse_session_id": SummaryThread}

	var last SummaryState
	scanner := bufio.NewScanner(env.In)
	for {
		env.printf("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if in := strings.ToLower(input); in == "exit" || in == "quit" {
			break
		}
		if input == "" {
			continue
		}

		last, err = r.InvokeWithConfig(ctx, SummaryState{Messages: []message.Message{message.Human(input)}}, config)
		if err != nil {
			return err
		}
		if m, ok := message.Last(last.Messages); ok {
			env.println("Bot:", m.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if env.TranscriptPath != "" && len(last.Messages) > 0 {
		if err := os.WriteFile(env.TranscriptPath, message.RenderTranscriptHTML(last.Messages), 0o644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
	}
	return nil
}

// writeDiagram renders the graph as PNG through mermaid.ink and falls back
// to a locally drawn SVG when the service is unreachable.
func writeDiagram[S any](ctx context.Context, env *Env, ex *graph.Exporter[S], name string) error {
	base := filepath.Join(env.DiagramDir, name)

	png, err := ex.DrawMermaidPNG(ctx, env.HTTPClient, env.MermaidInkURL)
	if err == nil {
		return os.WriteFile(base+".png", png, 0o644)
	}
	env.Logger.Warn("mermaid render failed, writing SVG instead: %v", err)

	f, err := os.Create(base + ".svg")
	if err != nil {
		return err
	}
	if err := ex.DrawSVG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package lessons

import (
	"context"
	"fmt"

	"github.com/tvme/intro-LangGraph/internal/chatmodel"
	"github.com/tvme/intro-LangGraph/message"
	"github.com/tvme/intro-LangGraph/prebuilt"
	"github.com/tvme/intro-LangGraph/tool"
)

// SearchQuery is the question the basics lesson searches for.
const SearchQuery = "What is LangGraph?"

// RunBasics sends a single named message to the model, then runs a web
// search with three results.
func RunBasics(ctx context.Context, env *Env) error {
	model, err := env.NewModel(chatmodel.Options{Model: "gpt-4o", Temperature: chatmodel.Temperature(0)})
	if err != nil {
		return err
	}

	reply, err := prebuilt.Chat(ctx, model, []message.Message{
		message.Human("Hello world", message.WithName("Alex")),
	})
	if err != nil {
		return err
	}
	env.println(reply.Content)

	search, err := tool.NewTavilySearch(env.Config.TavilyKey,
		append([]tool.TavilyOption{tool.WithTavilyMaxResults(3)}, env.TavilyOptions...)...)
	if err != nil {
		return err
	}
	results, err := search.Search(ctx, SearchQuery)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	env.printf("Search results for '%s':\n", SearchQuery)
	for i, r := range results {
		env.printf("Result %d: %+v\n", i+1, r)
	}
	return nil
}

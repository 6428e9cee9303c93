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

// ArithmeticPrompt is the system message of the arithmetic agent.
const ArithmeticPrompt = "You are a helpful assistant that can perform arithmetic operations using tools. " +
	"You can multiply, add, subtract, and divide numbers. Use the tools when necessary."

// BuildArithmeticAgent loops arithmetic_llm and the tools node until the
// model stops requesting tools.
func BuildArithmeticAgent(model llms.Model) *graph.StateGraph[graph.MessagesState] {
	return prebuilt.NewReactAgent(model, tool.ArithmeticTools(), prebuilt.AgentOptions{
		SystemPrompt: ArithmeticPrompt,
		NodeName:     "arithmetic_llm",
	})
}

// RunAgent asks the agent a multi-step arithmetic question.
func RunAgent(ctx context.Context, env *Env) error {
	model, err := env.NewModel(chatmodel.Options{Model: "gpt-4o"})
	if err != nil {
		return err
	}
	r, err := BuildArithmeticAgent(model).Compile()
	if err != nil {
		return err
	}
	out, err := r.Invoke(ctx, graph.MessagesState{Messages: []message.Message{
		message.Human("Add 3 and 4. Multiply the output by 2. Subtract 4 and divide the output by 5"),
	}})
	if err != nil {
		return err
	}
	return message.PrettyPrintAll(env.Out, out.Messages)
}

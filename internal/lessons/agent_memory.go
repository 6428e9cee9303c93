package lessons

import (
	"context"

	"github.com/tvme/intro-LangGraph/graph"
	"github.com/tvme/intro-LangGraph/internal/chatmodel"
	"github.com/tvme/intro-LangGraph/message"
)

// AgentMemoryThread is the conversation thread of the agent memory lesson.
const AgentMemoryThread = "1"

// RunAgentMemory runs the arithmetic agent twice on one persisted thread so
// that the second question can refer to the first answer.
func RunAgentMemory(ctx context.Context, env *Env) error {
	model, err := env.NewModel(chatmodel.Options{Model: "gpt-4o-mini"})
	if err != nil {
		return err
	}

	var opts []graph.CompileOption
	if env.inStudio() {
		env.Logger.Info("running in studio, checkpointing is provided by the host")
	} else {
		cp, release, err := env.OpenCheckpointer(ctx)
		if err != nil {
			return err
		}
		defer release()
		opts = append(opts, graph.WithCheckpointer(cp))
	}

	r, err := BuildArithmeticAgent(model).Compile(opts...)
	if err != nil {
		return err
	}

	config := graph.WithThreadID(AgentMemoryThread)
	config.Callbacks = env.callbacks()

	var out graph.MessagesState
	for _, q := range []string{"Add 11 and 4.", "Multiply that by 2."} {
		out, err = r.InvokeWithConfig(ctx, graph.MessagesState{Messages: []message.Message{message.Human(q)}}, config)
		if err != nil {
			return err
		}
	}
	return message.PrettyPrintAll(env.Out, out.Messages)
}

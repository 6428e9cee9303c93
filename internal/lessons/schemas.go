package lessons

import (
	"context"
	"encoding/json"

	"github.com/tvme/intro-LangGraph/graph"
)

// InputState is what callers pass in.
type InputState struct {
	Question string `json:"question"`
}

// OutputState is what callers get back.
type OutputState struct {
	Answer string `json:"answer"`
}

// OverallState is the internal state shared by the nodes.
type OverallState struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Notes    string `json:"notes"`
}

// BuildSchemas runs thinking_node then answer_node over OverallState and
// exposes only InputState and OutputState.
func BuildSchemas() (*graph.SchemaRunnable[InputState, OutputState, OverallState], error) {
	g := graph.NewStateGraph[OverallState]()
	g.SetSchema(graph.NewStructSchema(OverallState{}, nil))
	g.AddNode("thinking_node", "", func(context.Context, OverallState) (OverallState, error) {
		return OverallState{Answer: "bye", Notes: "... his name is Lance"}, nil
	})
	g.AddNode("answer_node", "", func(context.Context, OverallState) (OverallState, error) {
		return OverallState{Answer: "bye Lance"}, nil
	})
	g.AddEdge(graph.START, "thinking_node")
	g.AddEdge("thinking_node", "answer_node")
	g.AddEdge("answer_node", graph.END)

	r, err := g.Compile()
	if err != nil {
		return nil, err
	}
	return graph.WithIOSchema[InputState, OutputState](r), nil
}

// RunSchemas prints the output of the multi-schema graph for "hi".
func RunSchemas(ctx context.Context, env *Env) error {
	r, err := BuildSchemas()
	if err != nil {
		return err
	}
	out, err := r.InvokeWithConfig(ctx, InputState{Question: "hi"}, &graph.Config{Callbacks: env.callbacks()})
	if err != nil {
		return err
	}
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	env.println(string(data))
	return nil
}

package lessons

import (
	"context"
	"fmt"
	"io"

	"github.com/tvme/intro-LangGraph/graph"
)

// MoodState is the state of the simple graph.
type MoodState struct {
	Graph string `json:"graph_state"`
}

// BuildSimpleGraph wires node_1 to node_2 or node_3, picking each with
// probability 0.5 according to random.
func BuildSimpleGraph(out io.Writer, random func() float64) *graph.StateGraph[MoodState] {
	appendText := func(name, text string) graph.NodeFunc[MoodState] {
		return func(_ context.Context, s MoodState) (MoodState, error) {
			fmt.Fprintf(out, "----%s----\n", name)
			return MoodState{Graph: s.Graph + text}, nil
		}
	}

	g := graph.NewStateGraph[MoodState]()
	g.AddNode("node_1", "", appendText("Node 1", " I am"))
	g.AddNode("node_2", "", appendText("Node 2", " very happy!"))
	g.AddNode("node_3", "", appendText("Node 3", " so sad!"))

	g.AddEdge(graph.START, "node_1")
	g.AddConditionalEdge("node_1", func(context.Context, MoodState) string {
		if random() < 0.5 {
			return "node_2"
		}
		return "node_3"
	}, "node_2", "node_3")
	g.AddEdge("node_2", graph.END)
	g.AddEdge("node_3", graph.END)
	return g
}

// RunSimpleGraph runs the mood graph once.
func RunSimpleGraph(ctx context.Context, env *Env) error {
	r, err := BuildSimpleGraph(env.Out, env.Random).Compile()
	if err != nil {
		return err
	}
	result, err := r.Invoke(ctx, MoodState{Graph: "Hi, this is Alex."})
	if err != nil {
		return err
	}
	env.printf("Graph result: %s\n", result.Graph)
	return nil
}

package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/tvme/intro-LangGraph/store"
)

// NodeFunc computes a state update from the current state. With a schema the
// returned value is merged into the state; without one it replaces the state.
type NodeFunc[S any] func(ctx context.Context, state S) (S, error)

// RouteFunc picks the next node from the state after a node ran.
type RouteFunc[S any] func(ctx context.Context, state S) string

// Node is a named step of the graph.
type Node[S any] struct {
	Name        string
	Description string
	Function    NodeFunc[S]
}

type conditionalEdge[S any] struct {
	route   RouteFunc[S]
	targets []string
}

// StateGraph is a builder for a graph whose state has type S.
//
//	type MoodState struct {
//	    Graph string `json:"graph_state"`
//	}
//
//	g := graph.NewStateGraph[MoodState]()
//	g.AddNode("node_1", "greet", node1)
//	g.AddEdge(graph.START, "node_1")
//	g.AddEdge("node_1", graph.END)
//	runnable, err := g.Compile()
type StateGraph[S any] struct {
	nodes            map[string]Node[S]
	order            []string
	edges            []Edge
	conditionalEdges map[string]conditionalEdge[S]
	entryPoint       string
	retryConfig      *RetryConfig
	errs             []error

	// Schema merges node updates into the state. Nil means replace.
	Schema StateSchema[S]
}

// NewStateGraph creates an empty graph.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]conditionalEdge[S]),
	}
}

// AddNode registers a node. Reserved or duplicate names are reported by Compile.
func (g *StateGraph[S]) AddNode(name string, description string, fn NodeFunc[S]) {
	switch {
	case name == START || name == END:
		g.errs = append(g.errs, fmt.Errorf("node name %q is reserved", name))
		return
	case fn == nil:
		g.errs = append(g.errs, fmt.Errorf("node %q has no function", name))
		return
	}
	if _, ok := g.nodes[name]; ok {
		g.errs = append(g.errs, fmt.Errorf("node %q already exists", name))
		return
	}
	g.nodes[name] = Node[S]{Name: name, Description: description, Function: fn}
	g.order = append(g.order, name)
}

// AddEdge adds a static edge. An edge from START sets the entry point.
func (g *StateGraph[S]) AddEdge(from, to string) {
	if from == START {
		g.entryPoint = to
		return
	}
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// AddConditionalEdge routes from a node with a function evaluated on the
// merged state. When targets are given, any other result fails the run.
func (g *StateGraph[S]) AddConditionalEdge(from string, route RouteFunc[S], targets ...string) {
	g.conditionalEdges[from] = conditionalEdge[S]{route: route, targets: targets}
}

// SetEntryPoint sets the first node to run.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetSchema sets the state schema used to merge node updates.
func (g *StateGraph[S]) SetSchema(schema StateSchema[S]) {
	g.Schema = schema
}

// SetRetryConfig retries failing nodes according to config.
func (g *StateGraph[S]) SetRetryConfig(config *RetryConfig) {
	g.retryConfig = config
}

// Nodes returns the nodes in insertion order.
func (g *StateGraph[S]) Nodes() []Node[S] {
	out := make([]Node[S], 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

type compileOptions struct {
	checkpointer store.CheckpointStore
	name         string
}

// WithCheckpointer persists state after every superstep of runs that carry a thread id.
func WithCheckpointer(cs store.CheckpointStore) CompileOption {
	return func(o *compileOptions) { o.checkpointer = cs }
}

// WithName names the run reported to callbacks. Defaults to "LangGraph".
func WithName(name string) CompileOption {
	return func(o *compileOptions) { o.name = name }
}

// Compile validates the graph and returns a runnable.
func (g *StateGraph[S]) Compile(opts ...CompileOption) (*StateRunnable[S], error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	o := compileOptions{name: "LangGraph"}
	for _, opt := range opts {
		opt(&o)
	}

	return &StateRunnable[S]{
		graph:        g,
		checkpointer: o.checkpointer,
		name:         o.name,
	}, nil
}

func (g *StateGraph[S]) validate() error {
	if len(g.errs) > 0 {
		return errors.Join(g.errs...)
	}
	if g.entryPoint == "" {
		return ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return fmt.Errorf("%w: entry point %s", ErrNodeNotFound, g.entryPoint)
	}

	known := func(name string) bool {
		_, ok := g.nodes[name]
		return ok || name == END
	}
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return fmt.Errorf("%w: edge source %s", ErrNodeNotFound, e.From)
		}
		if !known(e.To) {
			return fmt.Errorf("%w: edge target %s", ErrNodeNotFound, e.To)
		}
	}
	for from, ce := range g.conditionalEdges {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("%w: conditional edge source %s", ErrNodeNotFound, from)
		}
		if ce.route == nil {
			return fmt.Errorf("conditional edge from %s has no route function", from)
		}
		if i := slices.IndexFunc(ce.targets, func(t string) bool { return !known(t) }); i >= 0 {
			return fmt.Errorf("%w: conditional edge target %s", ErrNodeNotFound, ce.targets[i])
		}
	}
	return nil
}

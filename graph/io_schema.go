package graph

import (
	"context"
	"encoding/json"
	"fmt"
)

// SchemaRunnable narrows a graph over the overall state S to an input
// schema I and an output schema O. Fields are matched by JSON name: the
// input fills the matching fields of S and the output keeps only the fields
// of S that O declares.
type SchemaRunnable[I, O, S any] struct {
	runnable *StateRunnable[S]
}

// WithIOSchema wraps a compiled graph with input and output schemas.
func WithIOSchema[I, O, S any](runnable *StateRunnable[S]) *SchemaRunnable[I, O, S] {
	return &SchemaRunnable[I, O, S]{runnable: runnable}
}

// Invoke runs the graph without config.
func (r *SchemaRunnable[I, O, S]) Invoke(ctx context.Context, input I) (O, error) {
	return r.InvokeWithConfig(ctx, input, nil)
}

// InvokeWithConfig projects input into S, runs the graph and projects the
// final state onto O.
func (r *SchemaRunnable[I, O, S]) InvokeWithConfig(ctx context.Context, input I, config *Config) (O, error) {
	var out O

	state, err := project[I, S](input)
	if err != nil {
		return out, fmt.Errorf("failed to project input: %w", err)
	}
	final, err := r.runnable.InvokeWithConfig(ctx, state, config)
	if err != nil {
		return out, err
	}
	out, err = project[S, O](final)
	if err != nil {
		return out, fmt.Errorf("failed to project output: %w", err)
	}
	return out, nil
}

func project[From, To any](v From) (To, error) {
	var to To
	data, err := json.Marshal(v)
	if err != nil {
		return to, err
	}
	err = json.Unmarshal(data, &to)
	return to, err
}

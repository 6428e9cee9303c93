package graph

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tvme/intro-LangGraph/store"
)

// StateRunnable is a compiled graph.
type StateRunnable[S any] struct {
	graph        *StateGraph[S]
	checkpointer store.CheckpointStore
	name         string
}

// Graph returns the graph the runnable was compiled from.
func (r *StateRunnable[S]) Graph() *StateGraph[S] {
	return r.graph
}

// Invoke runs the graph without config.
func (r *StateRunnable[S]) Invoke(ctx context.Context, input S) (S, error) {
	return r.InvokeWithConfig(ctx, input, nil)
}

// InvokeWithConfig runs the graph from the entry point until every branch
// reaches END.
//
// When config carries a thread id and a checkpointer was attached, the state
// starts from the thread's latest checkpoint with input merged into it, and
// a checkpoint is written after every superstep.
func (r *StateRunnable[S]) InvokeWithConfig(ctx context.Context, input S, config *Config) (S, error) {
	var zero S
	if config == nil {
		config = &Config{}
	}
	ctx = WithConfig(ctx, config)
	runID := uuid.NewString()

	for _, cb := range config.Callbacks {
		cb.OnChainStart(ctx, r.name, convertStateToMap(input), runID, config.Metadata)
	}
	fail := func(err error) (S, error) {
		for _, cb := range config.Callbacks {
			cb.OnChainError(ctx, err, runID)
		}
		return zero, err
	}

	threadID := config.ThreadID()
	saving := r.checkpointer != nil && threadID != ""

	base, version, err := r.startingState(ctx, threadID)
	if err != nil {
		return fail(err)
	}
	state, err := r.merge(base, []S{input})
	if err != nil {
		return fail(fmt.Errorf("failed to apply input: %w", err))
	}

	limit := config.recursionLimit()
	current := []string{r.graph.entryPoint}
	for step := 0; len(current) > 0; step++ {
		if step >= limit {
			return fail(fmt.Errorf("%w: limit %d", ErrRecursionLimit, limit))
		}

		updates, err := r.runStep(ctx, current, state, config, runID)
		if err != nil {
			return fail(err)
		}

		state, err = r.merge(state, updates)
		if err != nil {
			return fail(err)
		}

		next, err := r.nextNodes(ctx, current, state)
		if err != nil {
			return fail(err)
		}

		if saving {
			version++
			if err := r.saveCheckpoint(ctx, threadID, current, next, state, step, version, config.Metadata); err != nil {
				return fail(err)
			}
		}
		current = next
	}

	for _, cb := range config.Callbacks {
		cb.OnChainEnd(ctx, convertStateToMap(state), runID)
	}
	return state, nil
}

// startingState returns the schema's initial state, or the latest
// checkpointed state of the thread.
func (r *StateRunnable[S]) startingState(ctx context.Context, threadID string) (S, int, error) {
	var base S
	if r.graph.Schema != nil {
		base = r.graph.Schema.Init()
	}
	if r.checkpointer == nil || threadID == "" {
		return base, 0, nil
	}

	latest, err := r.latestCheckpoint(ctx, threadID)
	if err != nil || latest == nil {
		return base, 0, err
	}
	restored, err := decodeState[S](latest.State)
	if err != nil {
		return base, 0, fmt.Errorf("failed to restore thread %s: %w", threadID, err)
	}
	return restored, latest.Version, nil
}

func (r *StateRunnable[S]) merge(state S, updates []S) (S, error) {
	if r.graph.Schema == nil {
		if len(updates) == 0 {
			return state, nil
		}
		return updates[len(updates)-1], nil
	}
	for _, u := range updates {
		var err error
		state, err = r.graph.Schema.Update(state, u)
		if err != nil {
			var zero S
			return zero, fmt.Errorf("schema update failed: %w", err)
		}
	}
	return state, nil
}

// runStep runs the active nodes concurrently on the same state and returns
// their updates in the order of nodes.
func (r *StateRunnable[S]) runStep(ctx context.Context, nodes []string, state S, config *Config, runID string) ([]S, error) {
	var wg sync.WaitGroup
	updates := make([]S, len(nodes))
	errs := make([]error, len(nodes))

	for _, name := range nodes {
		if _, ok := r.graph.nodes[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
		}
	}

	for i, name := range nodes {
		node := r.graph.nodes[name]
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					errs[i] = fmt.Errorf("panic in node %s: %v", name, p)
				}
			}()
			updates[i], errs[i] = r.runNode(ctx, node, state, config, runID)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return updates, nil
}

func (r *StateRunnable[S]) runNode(ctx context.Context, node Node[S], state S, config *Config, parentRunID string) (S, error) {
	nodeRunID := uuid.NewString()
	ctx = WithRunInfo(ctx, RunInfo{RunID: nodeRunID, ParentRunID: parentRunID, Node: node.Name})

	if len(config.Callbacks) > 0 {
		inputs := convertStateToMap(state)
		for _, cb := range config.Callbacks {
			cb.OnNodeStart(ctx, node.Name, inputs, nodeRunID, parentRunID)
		}
	}

	update, err := runWithRetry(ctx, r.graph.retryConfig, func() (S, error) {
		return node.Function(ctx, state)
	})
	if err != nil {
		err = fmt.Errorf("error in node %s: %w", node.Name, err)
	}

	if len(config.Callbacks) > 0 {
		var outputs map[string]any
		if err == nil {
			outputs = convertStateToMap(update)
		}
		for _, cb := range config.Callbacks {
			cb.OnNodeEnd(ctx, node.Name, outputs, nodeRunID, err)
		}
	}
	return update, err
}

// nextNodes resolves the edges leaving the nodes that just ran. END targets
// are dropped and the result is sorted for a deterministic step order.
func (r *StateRunnable[S]) nextNodes(ctx context.Context, ran []string, state S) ([]string, error) {
	seen := make(map[string]bool)
	var next []string
	add := func(n string) {
		if n != END && !seen[n] {
			seen[n] = true
			next = append(next, n)
		}
	}

	for _, name := range ran {
		if ce, ok := r.graph.conditionalEdges[name]; ok {
			target := ce.route(ctx, state)
			if target == "" {
				return nil, fmt.Errorf("conditional edge returned empty next node from %s", name)
			}
			if len(ce.targets) > 0 && !slices.Contains(ce.targets, target) {
				return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidRoute, name, target)
			}
			if _, ok := r.graph.nodes[target]; !ok && target != END {
				return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
			}
			add(target)
			continue
		}

		found := false
		for _, e := range r.graph.edges {
			if e.From == name {
				add(e.To)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNoOutgoingEdge, name)
		}
	}

	slices.Sort(next)
	return next, nil
}

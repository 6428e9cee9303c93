package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/tvme/intro-LangGraph/store"
)

// StateSnapshot is the persisted state of a thread.
type StateSnapshot[S any] struct {
	Values       S
	Next         []string
	CheckpointID string
	Version      int
	Metadata     map[string]any
	CreatedAt    time.Time
}

func (r *StateRunnable[S]) latestCheckpoint(ctx context.Context, threadID string) (*store.Checkpoint, error) {
	checkpoints, err := r.checkpointer.List(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints for thread %s: %w", threadID, err)
	}
	return store.Latest(checkpoints), nil
}

func (r *StateRunnable[S]) saveCheckpoint(ctx context.Context, threadID string, ran, next []string, state S, step, version int, extra map[string]any) error {
	metadata := make(map[string]any, len(extra)+5)
	maps.Copy(metadata, extra)
	metadata["execution_id"] = threadID
	metadata["thread_id"] = threadID
	metadata["step"] = step
	metadata["writes"] = ran
	metadata["next"] = next

	nodeName := ran[0]
	if len(ran) > 1 {
		nodeName = fmt.Sprintf("step:%v", ran)
	}

	cp := &store.Checkpoint{
		ID:        uuid.NewString(),
		NodeName:  nodeName,
		State:     state,
		Metadata:  metadata,
		Timestamp: time.Now(),
		Version:   version,
	}
	if err := r.checkpointer.Save(ctx, cp); err != nil {
		return fmt.Errorf("failed to save checkpoint for thread %s: %w", threadID, err)
	}
	return nil
}

// GetState returns the latest snapshot of a thread. A thread without
// checkpoints yields the schema's initial state and version 0.
func (r *StateRunnable[S]) GetState(ctx context.Context, threadID string) (*StateSnapshot[S], error) {
	if r.checkpointer == nil {
		return nil, fmt.Errorf("graph compiled without a checkpointer")
	}

	latest, err := r.latestCheckpoint(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		var values S
		if r.graph.Schema != nil {
			values = r.graph.Schema.Init()
		}
		return &StateSnapshot[S]{Values: values}, nil
	}
	return snapshotOf[S](latest)
}

// History returns every snapshot of a thread, oldest first.
func (r *StateRunnable[S]) History(ctx context.Context, threadID string) ([]*StateSnapshot[S], error) {
	if r.checkpointer == nil {
		return nil, fmt.Errorf("graph compiled without a checkpointer")
	}
	checkpoints, err := r.checkpointer.List(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints for thread %s: %w", threadID, err)
	}
	out := make([]*StateSnapshot[S], 0, len(checkpoints))
	for _, cp := range checkpoints {
		snap, err := snapshotOf[S](cp)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// UpdateState merges update into the thread's latest state as if node asNode
// had produced it, and stores the result as a new checkpoint.
func (r *StateRunnable[S]) UpdateState(ctx context.Context, threadID, asNode string, update S) (*StateSnapshot[S], error) {
	if r.checkpointer == nil {
		return nil, fmt.Errorf("graph compiled without a checkpointer")
	}
	if _, ok := r.graph.nodes[asNode]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, asNode)
	}

	base, version, err := r.startingState(ctx, threadID)
	if err != nil {
		return nil, err
	}
	state, err := r.merge(base, []S{update})
	if err != nil {
		return nil, err
	}
	next, err := r.nextNodes(ctx, []string{asNode}, state)
	if err != nil {
		return nil, err
	}
	if err := r.saveCheckpoint(ctx, threadID, []string{asNode}, next, state, -1, version+1, map[string]any{"source": "update"}); err != nil {
		return nil, err
	}
	return r.GetState(ctx, threadID)
}

func snapshotOf[S any](cp *store.Checkpoint) (*StateSnapshot[S], error) {
	values, err := decodeState[S](cp.State)
	if err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint %s: %w", cp.ID, err)
	}
	return &StateSnapshot[S]{
		Values:       values,
		Next:         stringList(cp.Metadata["next"]),
		CheckpointID: cp.ID,
		Version:      cp.Version,
		Metadata:     cp.Metadata,
		CreatedAt:    cp.Timestamp,
	}, nil
}

// decodeState converts a stored state to S. Stores that serialize to JSON
// hand back generic maps, so anything that is not already an S takes a
// JSON round trip.
func decodeState[S any](v any) (S, error) {
	if s, ok := v.(S); ok {
		return s, nil
	}
	var s S
	data, err := json.Marshal(v)
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(data, &s)
	return s, err
}

func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, e := range l {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

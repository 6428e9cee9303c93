package graph

import (
	"context"
	"encoding/json"
)

// CallbackHandler receives run events. Handlers are called synchronously;
// node events may arrive concurrently when a superstep runs several nodes.
type CallbackHandler interface {
	OnChainStart(ctx context.Context, name string, inputs map[string]any, runID string, metadata map[string]any)
	OnChainEnd(ctx context.Context, outputs map[string]any, runID string)
	OnChainError(ctx context.Context, err error, runID string)
	OnNodeStart(ctx context.Context, node string, state map[string]any, runID, parentRunID string)
	OnNodeEnd(ctx context.Context, node string, update map[string]any, runID string, err error)
}

// NoopCallbackHandler can be embedded to implement only some events.
type NoopCallbackHandler struct{}

func (NoopCallbackHandler) OnChainStart(context.Context, string, map[string]any, string, map[string]any) {
}
func (NoopCallbackHandler) OnChainEnd(context.Context, map[string]any, string)  {}
func (NoopCallbackHandler) OnChainError(context.Context, error, string)         {}
func (NoopCallbackHandler) OnNodeStart(context.Context, string, map[string]any, string, string) {
}
func (NoopCallbackHandler) OnNodeEnd(context.Context, string, map[string]any, string, error) {}

// RunInfo identifies the node run enclosing a context.
type RunInfo struct {
	RunID       string
	ParentRunID string
	Node        string
}

type runInfoKey struct{}

// WithRunInfo stores info in ctx.
func WithRunInfo(ctx context.Context, info RunInfo) context.Context {
	return context.WithValue(ctx, runInfoKey{}, info)
}

// RunInfoFromContext returns the enclosing node run. LLM callbacks use it to
// attach generations to the node that issued them.
func RunInfoFromContext(ctx context.Context) (RunInfo, bool) {
	info, ok := ctx.Value(runInfoKey{}).(RunInfo)
	return info, ok
}

// convertStateToMap renders a state through its JSON form.
func convertStateToMap(state any) map[string]any {
	if m, ok := state.(map[string]any); ok {
		return m
	}
	data, err := json.Marshal(state)
	if err != nil {
		return map[string]any{"value": state}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"value": state}
	}
	return m
}

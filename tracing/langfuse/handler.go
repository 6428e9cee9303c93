package langfuse

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"

	"github.com/tvme/intro-LangGraph/graph"
)

// SessionIDKey is the Config.Metadata key that groups traces into a session.
const SessionIDKey = "langfuse_session_id"

// Handler turns graph runs into Langfuse traces and node runs into spans.
// It also implements langchaingo's callbacks.Handler so that model calls made
// inside a node are recorded as generations of that node.
type Handler struct {
	callbacks.SimpleHandler

	client *Client

	mu          sync.Mutex
	traces      map[string]string // node run id -> trace id
	generations map[string]*generation
}

type generation struct {
	id       string
	traceID  string
	parentID string
	start    time.Time
	input    []llms.MessageContent
}

var (
	_ graph.CallbackHandler = (*Handler)(nil)
	_ callbacks.Handler     = (*Handler)(nil)
)

// NewHandler returns a handler sending through client.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:      client,
		traces:      make(map[string]string),
		generations: make(map[string]*generation),
	}
}

// Client returns the underlying ingestion client.
func (h *Handler) Client() *Client {
	return h.client
}

func (h *Handler) OnChainStart(ctx context.Context, name string, inputs map[string]any, runID string, metadata map[string]any) {
	body := map[string]any{
		"id":        runID,
		"name":      name,
		"timestamp": timestamp(time.Now()),
		"input":     inputs,
	}
	if sid, ok := metadata[SessionIDKey].(string); ok && sid != "" {
		body["sessionId"] = sid
	}
	if len(metadata) > 0 {
		body["metadata"] = metadata
	}
	h.client.Enqueue(ctx, "trace-create", body)
}

func (h *Handler) OnChainEnd(ctx context.Context, outputs map[string]any, runID string) {
	h.client.Enqueue(ctx, "trace-create", map[string]any{
		"id":     runID,
		"output": outputs,
	})
	h.flush(ctx)
}

func (h *Handler) OnChainError(ctx context.Context, err error, runID string) {
	h.client.Enqueue(ctx, "trace-create", map[string]any{
		"id":     runID,
		"output": map[string]any{"error": err.Error()},
		"tags":   []string{"error"},
	})
	h.flush(ctx)
}

func (h *Handler) OnNodeStart(ctx context.Context, node string, state map[string]any, runID, parentRunID string) {
	h.mu.Lock()
	h.traces[runID] = parentRunID
	h.mu.Unlock()

	h.client.Enqueue(ctx, "span-create", map[string]any{
		"id":        runID,
		"traceId":   parentRunID,
		"name":      node,
		"startTime": timestamp(time.Now()),
		"input":     state,
	})
}

func (h *Handler) OnNodeEnd(ctx context.Context, node string, update map[string]any, runID string, err error) {
	h.mu.Lock()
	traceID := h.traces[runID]
	delete(h.traces, runID)
	h.mu.Unlock()

	body := map[string]any{
		"id":      runID,
		"traceId": traceID,
		"name":    node,
		"endTime": timestamp(time.Now()),
		"output":  update,
	}
	if err != nil {
		body["level"] = "ERROR"
		body["statusMessage"] = err.Error()
	}
	h.client.Enqueue(ctx, "span-update", body)
}

// HandleLLMGenerateContentStart opens a generation under the enclosing node
// run, or under a trace of its own when called outside a graph.
func (h *Handler) HandleLLMGenerateContentStart(ctx context.Context, ms []llms.MessageContent) {
	g := &generation{id: uuid.NewString(), start: time.Now(), input: ms}
	key := ""
	if info, ok := graph.RunInfoFromContext(ctx); ok {
		key = info.RunID
		g.traceID = info.ParentRunID
		g.parentID = info.RunID
	} else {
		g.traceID = uuid.NewString()
		h.client.Enqueue(ctx, "trace-create", map[string]any{
			"id":        g.traceID,
			"name":      "llm",
			"timestamp": timestamp(g.start),
		})
	}

	h.mu.Lock()
	h.generations[key] = g
	h.mu.Unlock()
}

func (h *Handler) HandleLLMGenerateContentEnd(ctx context.Context, res *llms.ContentResponse) {
	g := h.takeGeneration(ctx)
	if g == nil {
		return
	}
	body := g.body()
	if res != nil && len(res.Choices) > 0 {
		choice := res.Choices[0]
		body["output"] = choiceOutput(choice)
		if usage := usageOf(choice.GenerationInfo); usage != nil {
			body["usage"] = usage
		}
		if model, ok := choice.GenerationInfo["model"].(string); ok {
			body["model"] = model
		}
	}
	h.client.Enqueue(ctx, "generation-create", body)
}

func (h *Handler) HandleLLMError(ctx context.Context, err error) {
	g := h.takeGeneration(ctx)
	if g == nil {
		return
	}
	body := g.body()
	body["level"] = "ERROR"
	body["statusMessage"] = err.Error()
	h.client.Enqueue(ctx, "generation-create", body)
}

func (h *Handler) takeGeneration(ctx context.Context) *generation {
	key := ""
	if info, ok := graph.RunInfoFromContext(ctx); ok {
		key = info.RunID
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	g := h.generations[key]
	delete(h.generations, key)
	return g
}

func (h *Handler) flush(ctx context.Context) {
	if err := h.client.Flush(ctx); err != nil {
		h.client.logger.Warn("langfuse flush: %v", err)
	}
}

func (g *generation) body() map[string]any {
	body := map[string]any{
		"id":        g.id,
		"traceId":   g.traceID,
		"name":      "ChatModel",
		"startTime": timestamp(g.start),
		"endTime":   timestamp(time.Now()),
		"input":     inputOf(g.input),
	}
	if g.parentID != "" {
		body["parentObservationId"] = g.parentID
	}
	return body
}

func inputOf(ms []llms.MessageContent) []map[string]any {
	out := make([]map[string]any, 0, len(ms))
	for _, m := range ms {
		var text string
		for _, p := range m.Parts {
			switch p := p.(type) {
			case llms.TextContent:
				text += p.Text
			case llms.ToolCallResponse:
				text += p.Content
			}
		}
		out = append(out, map[string]any{"role": string(m.Role), "content": text})
	}
	return out
}

func choiceOutput(c *llms.ContentChoice) map[string]any {
	out := map[string]any{"role": "assistant", "content": c.Content}
	if len(c.ToolCalls) > 0 {
		calls := make([]map[string]any, 0, len(c.ToolCalls))
		for _, tc := range c.ToolCalls {
			if tc.FunctionCall == nil {
				continue
			}
			calls = append(calls, map[string]any{
				"id":        tc.ID,
				"name":      tc.FunctionCall.Name,
				"arguments": tc.FunctionCall.Arguments,
			})
		}
		out["tool_calls"] = calls
	}
	return out
}

// usageOf reads the token counts langchaingo providers put in GenerationInfo.
func usageOf(info map[string]any) map[string]any {
	in, okIn := asInt(info["PromptTokens"])
	out, okOut := asInt(info["CompletionTokens"])
	if !okIn && !okOut {
		return nil
	}
	total, ok := asInt(info["TotalTokens"])
	if !ok {
		total = in + out
	}
	return map[string]any{"input": in, "output": out, "total": total, "unit": "TOKENS"}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

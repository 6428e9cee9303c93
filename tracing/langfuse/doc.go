// Package langfuse records graph runs in Langfuse.
//
// A Handler is registered twice: as a graph callback in Config.Callbacks,
// where every invocation becomes a trace and every node run a span, and as
// the callbacks handler of the chat model, where each completion becomes a
// generation nested under the node that requested it. Traces are grouped
// into sessions by the "langfuse_session_id" metadata key.
//
// Events are batched and posted to /api/public/ingestion with basic auth.
// Three consecutive delivery failures open a circuit breaker; batches
// flushed while it is open are dropped.
package langfuse

// Package graph is a small state-graph runtime.
//
// A StateGraph[S] holds named nodes that compute updates to a state of type
// S, static edges and conditional edges. Compile validates the graph; the
// resulting StateRunnable executes it in supersteps: the active nodes run
// concurrently on the same state, their updates are merged through the
// StateSchema (or replace the state when there is none), and the edges of the
// nodes that ran select the next step. A run stops when every branch reaches
// END and fails with ErrRecursionLimit after Config.RecursionLimit steps.
//
// With a store.CheckpointStore attached through WithCheckpointer, runs whose
// Config carries a thread id resume from the thread's latest checkpoint and
// write a new checkpoint after every step.
//
//	g := graph.NewStateGraph[graph.MessagesState]()
//	g.SetSchema(graph.MessagesSchema())
//	g.AddNode("assistant", "call the model", assistant)
//	g.AddNode("tools", "run tools", toolNode.Invoke)
//	g.AddEdge(graph.START, "assistant")
//	g.AddConditionalEdge("assistant", prebuilt.ToolsCondition, "tools", graph.END)
//	g.AddEdge("tools", "assistant")
//
//	runnable, err := g.Compile(graph.WithCheckpointer(saver))
//	if err != nil {
//	    return err
//	}
//	out, err := runnable.InvokeWithConfig(ctx, graph.MessagesState{
//	    Messages: []message.Message{message.Human("Add 3 and 4.")},
//	}, graph.WithThreadID("1"))
package graph

// Package store defines the checkpoint contract shared by the conversation
// savers used in the lessons.
//
// A checkpoint captures the full graph state after a superstep together with
// the node that produced it. The graph runtime groups checkpoints by
// execution id, which it sets to the conversation thread id, so loading the
// latest checkpoint of a thread restores the conversation.
//
// Implementations:
//
//   - store/memory: in-process map, used by tests and when running inside studio
//   - store/postgres: pgx connection pool, plus database and schema bootstrap
//   - store/redis: go-redis client with optional TTL
//   - store/sqlite: mattn/go-sqlite3 file database
//
// Example:
//
//	saver, err := postgres.NewPostgresCheckpointStore(ctx, postgres.PostgresOptions{
//	    ConnString: postgres.ConnString(params),
//	})
//	if err != nil {
//	    return err
//	}
//	defer saver.Close()
//
//	runnable, err := builder.Compile(graph.WithCheckpointer(saver))
package store

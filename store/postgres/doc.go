// Package postgres stores conversation checkpoints in PostgreSQL through a pgx
// connection pool.
//
// Besides the CheckpointStore methods the package bootstraps its own storage:
// EnsureDatabase creates the target database from the "postgres" maintenance
// database when it is missing, and EnsureSchema creates the checkpoint table
// when information_schema does not list it.
//
//	params := postgres.ConnParams{User: "postgres", Password: "pw", Host: "localhost", Port: "5432", Name: "langgraph"}
//	if err := postgres.EnsureDatabase(ctx, params); err != nil {
//	    return err
//	}
//	saver, err := postgres.NewPostgresCheckpointStore(ctx, postgres.PostgresOptions{
//	    ConnString: postgres.ConnString(params),
//	})
//	if err != nil {
//	    return err
//	}
//	defer saver.Close()
//	if err := saver.EnsureSchema(ctx); err != nil {
//	    return err
//	}
package postgres

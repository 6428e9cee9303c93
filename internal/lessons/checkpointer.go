package lessons

import (
	"context"
	"fmt"

	"github.com/tvme/intro-LangGraph/internal/config"
	"github.com/tvme/intro-LangGraph/log"
	"github.com/tvme/intro-LangGraph/store"
	"github.com/tvme/intro-LangGraph/store/memory"
	"github.com/tvme/intro-LangGraph/store/postgres"
	"github.com/tvme/intro-LangGraph/store/redis"
	"github.com/tvme/intro-LangGraph/store/sqlite"
)

// OpenCheckpointer opens the store selected by cfg.CheckpointBackend. For
// postgres the database and the checkpoint table are created when missing.
func OpenCheckpointer(ctx context.Context, cfg config.Config, logger log.Logger) (store.CheckpointStore, func(), error) {
	switch cfg.CheckpointBackend {
	case config.BackendPostgres, "":
		params := cfg.PostgresParams()
		if err := postgres.EnsureDatabase(ctx, params); err != nil {
			return nil, nil, err
		}
		s, err := postgres.NewPostgresCheckpointStore(ctx, postgres.PostgresOptions{
			ConnString: postgres.ConnString(params),
		})
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, nil, err
		}
		logger.Info("using postgres checkpoints in database %s", params.Name)
		return s, s.Close, nil

	case config.BackendRedis:
		s := redis.NewRedisCheckpointStore(redis.RedisOptions{Addr: cfg.RedisAddr})
		logger.Info("using redis checkpoints at %s", cfg.RedisAddr)
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Warn("close redis: %v", err)
			}
		}, nil

	case config.BackendSqlite:
		s, err := sqlite.NewSqliteCheckpointStore(ctx, sqlite.SqliteOptions{Path: cfg.SqlitePath})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite checkpoints in %s", cfg.SqlitePath)
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Warn("close sqlite: %v", err)
			}
		}, nil

	case config.BackendMemory:
		return memory.NewMemoryCheckpointStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown checkpoint backend %q", cfg.CheckpointBackend)
}

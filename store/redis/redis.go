package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tvme/intro-LangGraph/store"
)

// RedisCheckpointStore keeps each checkpoint as a JSON string and indexes the
// checkpoints of a thread in a sorted set scored by version.
type RedisCheckpointStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ store.CheckpointStore = (*RedisCheckpointStore)(nil)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // default "academy:"
	TTL      time.Duration // 0 keeps checkpoints forever
}

// NewRedisCheckpointStore connects to opts.Addr.
func NewRedisCheckpointStore(opts RedisOptions) *RedisCheckpointStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisCheckpointStoreWithClient(client, opts.Prefix, opts.TTL)
}

// NewRedisCheckpointStoreWithClient wraps an existing client.
func NewRedisCheckpointStoreWithClient(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCheckpointStore {
	if prefix == "" {
		prefix = "academy:"
	}
	return &RedisCheckpointStore{client: client, prefix: prefix, ttl: ttl}
}

// Close closes the underlying client.
func (s *RedisCheckpointStore) Close() error {
	return s.client.Close()
}

func (s *RedisCheckpointStore) checkpointKey(id string) string {
	return s.prefix + "checkpoint:" + id
}

func (s *RedisCheckpointStore) threadKey(executionID string) string {
	return s.prefix + "thread:" + executionID + ":checkpoints"
}

// Save stores a checkpoint and indexes it under its thread.
func (s *RedisCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.checkpointKey(checkpoint.ID), data, s.ttl)

	if execID := store.ExecutionID(checkpoint); execID != "" {
		key := s.threadKey(execID)
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(checkpoint.Version), Member: checkpoint.ID})
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save checkpoint to redis: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint by ID.
func (s *RedisCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	data, err := s.client.Get(ctx, s.checkpointKey(checkpointID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", store.ErrCheckpointNotFound, checkpointID)
		}
		return nil, fmt.Errorf("failed to load checkpoint from redis: %w", err)
	}

	var checkpoint store.Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// List returns the checkpoints of a thread ordered by version. Expired
// entries still present in the index are skipped.
func (s *RedisCheckpointStore) List(ctx context.Context, executionID string) ([]*store.Checkpoint, error) {
	ids, err := s.client.ZRange(ctx, s.threadKey(executionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints for thread %s: %w", executionID, err)
	}

	checkpoints := make([]*store.Checkpoint, 0, len(ids))
	if len(ids) == 0 {
		return checkpoints, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.checkpointKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkpoints: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var cp store.Checkpoint
		if err := json.Unmarshal([]byte(raw), &cp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkpoint %s: %w", ids[i], err)
		}
		checkpoints = append(checkpoints, &cp)
	}
	return checkpoints, nil
}

// Delete removes a checkpoint. Deleting a missing checkpoint is not an error.
func (s *RedisCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	checkpoint, err := s.Load(ctx, checkpointID)
	if errors.Is(err, store.ErrCheckpointNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.checkpointKey(checkpointID))
	if execID := store.ExecutionID(checkpoint); execID != "" {
		pipe.ZRem(ctx, s.threadKey(execID), checkpointID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Clear removes every checkpoint of a thread along with its index.
func (s *RedisCheckpointStore) Clear(ctx context.Context, executionID string) error {
	key := s.threadKey(executionID)
	ids, err := s.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get checkpoints for clearing: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.checkpointKey(id))
	}
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}

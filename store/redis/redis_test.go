package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvme/intro-LangGraph/store"
)

func newTestStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisCheckpointStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	saver := NewRedisCheckpointStore(RedisOptions{Addr: mr.Addr(), TTL: ttl})
	t.Cleanup(func() { _ = saver.Close() })
	return mr, saver
}

func checkpoint(thread string, version int) *store.Checkpoint {
	return &store.Checkpoint{
		ID:        fmt.Sprintf("%s-%d", thread, version),
		NodeName:  "conversation",
		State:     map[string]any{"summary": "", "messages": []any{}},
		Timestamp: time.Now(),
		Version:   version,
		Metadata:  map[string]any{"execution_id": thread, "thread_id": thread},
	}
}

func TestRedisCheckpointStore_SaveLoad(t *testing.T) {
	_, saver := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, saver.Save(ctx, checkpoint("a1", 1)))

	loaded, err := saver.Load(ctx, "a1-1")
	require.NoError(t, err)
	assert.Equal(t, "conversation", loaded.NodeName)
	state, ok := loaded.State.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "", state["summary"])

	_, err = saver.Load(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrCheckpointNotFound)
}

func TestRedisCheckpointStore_ListOrderedByVersion(t *testing.T) {
	_, saver := newTestStore(t, 0)
	ctx := context.Background()

	for _, v := range []int{3, 1, 2} {
		require.NoError(t, saver.Save(ctx, checkpoint("a1", v)))
	}
	require.NoError(t, saver.Save(ctx, checkpoint("other", 1)))

	list, err := saver.List(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, cp := range list {
		assert.Equal(t, i+1, cp.Version)
	}

	empty, err := saver.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisCheckpointStore_DeleteAndClear(t *testing.T) {
	mr, saver := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, saver.Save(ctx, checkpoint("a1", 1)))
	require.NoError(t, saver.Save(ctx, checkpoint("a1", 2)))

	require.NoError(t, saver.Delete(ctx, "a1-1"))
	require.NoError(t, saver.Delete(ctx, "never-saved"))
	list, err := saver.List(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1-2", list[0].ID)

	require.NoError(t, saver.Clear(ctx, "a1"))
	assert.False(t, mr.Exists("academy:checkpoint:a1-2"))
	assert.False(t, mr.Exists("academy:thread:a1:checkpoints"))
}

func TestRedisCheckpointStore_TTL(t *testing.T) {
	mr, saver := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, saver.Save(ctx, checkpoint("a1", 1)))
	assert.Equal(t, time.Minute, mr.TTL("academy:checkpoint:a1-1"))

	mr.FastForward(2 * time.Minute)

	_, err := saver.Load(ctx, "a1-1")
	assert.ErrorIs(t, err, store.ErrCheckpointNotFound)
}

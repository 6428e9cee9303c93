package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvme/intro-LangGraph/store"
)

func newTestStore(t *testing.T) *SqliteCheckpointStore {
	t.Helper()
	saver, err := NewSqliteCheckpointStore(context.Background(), SqliteOptions{
		Path: filepath.Join(t.TempDir(), "checkpoints.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = saver.Close() })
	return saver
}

func TestSqliteCheckpointStore_RoundTrip(t *testing.T) {
	saver := newTestStore(t)
	ctx := context.Background()

	cp := &store.Checkpoint{
		ID:        "cp-1",
		NodeName:  "chat_model_node",
		State:     map[string]any{"messages": []any{map[string]any{"content": "hi"}}},
		Timestamp: time.Now().UTC(),
		Version:   1,
		Metadata:  map[string]any{"execution_id": "a1"},
	}
	require.NoError(t, saver.Save(ctx, cp))

	loaded, err := saver.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "chat_model_node", loaded.NodeName)
	assert.Equal(t, "a1", loaded.Metadata["execution_id"])
	assert.WithinDuration(t, cp.Timestamp, loaded.Timestamp, time.Second)

	cp.NodeName = "filter_messages"
	cp.Version = 2
	require.NoError(t, saver.Save(ctx, cp))
	loaded, err = saver.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "filter_messages", loaded.NodeName)
	assert.Equal(t, 2, loaded.Version)
}

func TestSqliteCheckpointStore_ListDeleteClear(t *testing.T) {
	saver := newTestStore(t)
	ctx := context.Background()

	for _, v := range []int{2, 1, 3} {
		require.NoError(t, saver.Save(ctx, &store.Checkpoint{
			ID:        "a1-" + string(rune('0'+v)),
			NodeName:  "conversation",
			State:     map[string]any{},
			Timestamp: time.Now(),
			Version:   v,
			Metadata:  map[string]any{"execution_id": "a1"},
		}))
	}

	list, err := saver.List(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1, list[0].Version)
	assert.Equal(t, 3, list[2].Version)

	require.NoError(t, saver.Delete(ctx, "a1-2"))
	list, err = saver.List(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, saver.Clear(ctx, "a1"))
	list, err = saver.List(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = saver.Load(ctx, "a1-1")
	assert.ErrorIs(t, err, store.ErrCheckpointNotFound)
}

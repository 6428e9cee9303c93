package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvme/intro-LangGraph/store"
)

func threadCheckpoint(id, thread string, version int) *store.Checkpoint {
	return &store.Checkpoint{
		ID:        id,
		NodeName:  "conversation",
		State:     map[string]any{"summary": fmt.Sprintf("turn %d", version)},
		Timestamp: time.Now(),
		Version:   version,
		Metadata: map[string]any{
			"execution_id": thread,
			"thread_id":    thread,
		},
	}
}

func TestMemoryCheckpointStore_SaveLoad(t *testing.T) {
	t.Parallel()

	ms := NewMemoryCheckpointStore()
	ctx := context.Background()

	cp := threadCheckpoint("cp-1", "a1", 1)
	require.NoError(t, ms.Save(ctx, cp))

	loaded, err := ms.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "conversation", loaded.NodeName)
	assert.Equal(t, 1, loaded.Version)
	assert.Equal(t, "a1", loaded.Metadata["thread_id"])

	// the store keeps its own copy
	cp.NodeName = "mutated"
	loaded, err = ms.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "conversation", loaded.NodeName)
}

func TestMemoryCheckpointStore_LoadMissing(t *testing.T) {
	t.Parallel()

	ms := NewMemoryCheckpointStore()
	_, err := ms.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrCheckpointNotFound)
}

func TestMemoryCheckpointStore_SaveNil(t *testing.T) {
	t.Parallel()

	assert.Error(t, NewMemoryCheckpointStore().Save(context.Background(), nil))
}

func TestMemoryCheckpointStore_ListByThread(t *testing.T) {
	t.Parallel()

	ms := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, ms.Save(ctx, threadCheckpoint("a1-3", "a1", 3)))
	require.NoError(t, ms.Save(ctx, threadCheckpoint("a1-1", "a1", 1)))
	require.NoError(t, ms.Save(ctx, threadCheckpoint("a1-2", "a1", 2)))
	require.NoError(t, ms.Save(ctx, threadCheckpoint("other-1", "1", 1)))

	list, err := ms.List(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{list[0].Version, list[1].Version, list[2].Version})
	assert.Equal(t, "a1-3", store.Latest(list).ID)

	empty, err := ms.List(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryCheckpointStore_Overwrite(t *testing.T) {
	t.Parallel()

	ms := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, ms.Save(ctx, threadCheckpoint("cp", "a1", 1)))
	require.NoError(t, ms.Save(ctx, threadCheckpoint("cp", "b2", 2)))

	a1, _ := ms.List(ctx, "a1")
	b2, _ := ms.List(ctx, "b2")
	assert.Empty(t, a1)
	require.Len(t, b2, 1)
	assert.Equal(t, 2, b2[0].Version)
}

func TestMemoryCheckpointStore_DeleteAndClear(t *testing.T) {
	t.Parallel()

	ms := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, ms.Save(ctx, threadCheckpoint("a1-1", "a1", 1)))
	require.NoError(t, ms.Save(ctx, threadCheckpoint("a1-2", "a1", 2)))
	require.NoError(t, ms.Save(ctx, threadCheckpoint("t1-1", "1", 1)))

	require.NoError(t, ms.Delete(ctx, "a1-1"))
	require.NoError(t, ms.Delete(ctx, "never-existed"))

	list, _ := ms.List(ctx, "a1")
	require.Len(t, list, 1)

	require.NoError(t, ms.Clear(ctx, "a1"))
	list, _ = ms.List(ctx, "a1")
	assert.Empty(t, list)

	_, err := ms.Load(ctx, "t1-1")
	assert.NoError(t, err)
}

func TestMemoryCheckpointStore_Concurrent(t *testing.T) {
	t.Parallel()

	ms := NewMemoryCheckpointStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			thread := fmt.Sprintf("thread-%d", worker)
			for v := 1; v <= 5; v++ {
				id := fmt.Sprintf("%s-%d", thread, v)
				assert.NoError(t, ms.Save(ctx, threadCheckpoint(id, thread, v)))
				_, err := ms.Load(ctx, id)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	for w := range 8 {
		list, err := ms.List(ctx, fmt.Sprintf("thread-%d", w))
		require.NoError(t, err)
		assert.Len(t, list, 5)
	}
}

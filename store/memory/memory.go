package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tvme/intro-LangGraph/store"
)

// MemoryCheckpointStore keeps checkpoints in process memory.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
	executions  map[string]map[string]struct{}
}

var _ store.CheckpointStore = (*MemoryCheckpointStore)(nil)

// NewMemoryCheckpointStore creates an empty in-memory checkpoint store
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
		executions:  make(map[string]map[string]struct{}),
	}
}

// Save stores a checkpoint
func (m *MemoryCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	if checkpoint == nil {
		return fmt.Errorf("checkpoint is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.checkpoints[checkpoint.ID]; ok {
		if ids, ok := m.executions[store.ExecutionID(prev)]; ok {
			delete(ids, prev.ID)
		}
	}

	cp := *checkpoint
	m.checkpoints[cp.ID] = &cp

	execID := store.ExecutionID(&cp)
	if _, ok := m.executions[execID]; !ok {
		m.executions[execID] = make(map[string]struct{})
	}
	m.executions[execID][cp.ID] = struct{}{}

	return nil
}

// Load retrieves a checkpoint by ID
func (m *MemoryCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.checkpoints[checkpointID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrCheckpointNotFound, checkpointID)
	}
	out := *cp
	return &out, nil
}

// List returns all checkpoints for a given execution, oldest version first
func (m *MemoryCheckpointStore) List(_ context.Context, executionID string) ([]*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.executions[executionID]
	checkpoints := make([]*store.Checkpoint, 0, len(ids))
	for id := range ids {
		cp := *m.checkpoints[id]
		checkpoints = append(checkpoints, &cp)
	}

	sort.Slice(checkpoints, func(i, j int) bool {
		if checkpoints[i].Version != checkpoints[j].Version {
			return checkpoints[i].Version < checkpoints[j].Version
		}
		return checkpoints[i].Timestamp.Before(checkpoints[j].Timestamp)
	})

	return checkpoints, nil
}

// Delete removes a checkpoint
func (m *MemoryCheckpointStore) Delete(_ context.Context, checkpointID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp, ok := m.checkpoints[checkpointID]
	if !ok {
		return nil
	}
	delete(m.checkpoints, checkpointID)
	if ids, ok := m.executions[store.ExecutionID(cp)]; ok {
		delete(ids, checkpointID)
	}
	return nil
}

// Clear removes all checkpoints for an execution
func (m *MemoryCheckpointStore) Clear(_ context.Context, executionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.executions[executionID] {
		delete(m.checkpoints, id)
	}
	delete(m.executions, executionID)
	return nil
}

package store

import (
	"context"
	"errors"
	"time"
)

// ErrCheckpointNotFound is returned when a checkpoint does not exist in a store.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Checkpoint represents a saved state at a specific point in execution
type Checkpoint struct {
	ID        string         `json:"id"`
	NodeName  string         `json:"node_name"`
	State     any            `json:"state"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
	Version   int            `json:"version"`
}

// CheckpointStore defines the interface for checkpoint persistence.
// Checkpoints are grouped by execution id, which the graph runtime sets to the
// conversation thread id.
type CheckpointStore interface {
	// Save stores a checkpoint
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves a checkpoint by ID
	Load(ctx context.Context, checkpointID string) (*Checkpoint, error)

	// List returns all checkpoints for a given execution
	List(ctx context.Context, executionID string) ([]*Checkpoint, error)

	// Delete removes a checkpoint
	Delete(ctx context.Context, checkpointID string) error

	// Clear removes all checkpoints for an execution
	Clear(ctx context.Context, executionID string) error
}

// Latest returns the checkpoint with the highest version, or nil for an empty list.
func Latest(checkpoints []*Checkpoint) *Checkpoint {
	var latest *Checkpoint
	for _, cp := range checkpoints {
		if latest == nil || cp.Version > latest.Version {
			latest = cp
		}
	}
	return latest
}

// ExecutionID extracts the execution id used to index a checkpoint.
func ExecutionID(checkpoint *Checkpoint) string {
	if id, ok := checkpoint.Metadata["execution_id"].(string); ok {
		return id
	}
	return ""
}

package message

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrUnknownMessageID is returned when a removal marker targets a message
// that is not present.
var ErrUnknownMessageID = errors.New("attempting to delete a message with an ID that doesn't exist")

// Add merges update into current.
//
// New messages are appended in arrival order, a message whose ID is already
// present replaces the existing one in place, and removal markers delete the
// message they name. Neither input slice is modified.
func Add(current, update []Message) ([]Message, error) {
	merged := make([]Message, 0, len(current)+len(update))
	index := make(map[string]int, len(current)+len(update))

	for _, m := range current {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		index[m.ID] = len(merged)
		merged = append(merged, m)
	}

	removed := map[string]bool{}
	for _, m := range update {
		if m.removal {
			if _, ok := index[m.ID]; !ok || removed[m.ID] {
				return nil, fmt.Errorf("%w: %s", ErrUnknownMessageID, m.ID)
			}
			removed[m.ID] = true
			continue
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if i, ok := index[m.ID]; ok {
			merged[i] = m
			delete(removed, m.ID)
			continue
		}
		index[m.ID] = len(merged)
		merged = append(merged, m)
	}

	if len(removed) == 0 {
		return merged, nil
	}
	kept := merged[:0]
	for _, m := range merged {
		if !removed[m.ID] {
			kept = append(kept, m)
		}
	}
	return kept, nil
}

// RemoveAllBut returns removal markers for every message except the n most
// recent ones.
func RemoveAllBut(msgs []Message, n int) []Message {
	if n < 0 {
		n = 0
	}
	if len(msgs) <= n {
		return nil
	}
	out := make([]Message, 0, len(msgs)-n)
	for _, m := range msgs[:len(msgs)-n] {
		out = append(out, Remove(m.ID))
	}
	return out
}

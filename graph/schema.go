package graph

import (
	"fmt"
	"reflect"

	"github.com/tvme/intro-LangGraph/message"
)

// StateSchema defines the initial state and how node updates are merged
// into it.
type StateSchema[S any] interface {
	Init() S
	Update(current, update S) (S, error)
}

// StructSchema is a StateSchema for struct states.
type StructSchema[S any] struct {
	InitialValue S
	MergeFunc    func(current, update S) (S, error)
}

// NewStructSchema creates a schema. A nil merge uses DefaultStructMerge.
func NewStructSchema[S any](initial S, merge func(current, update S) (S, error)) *StructSchema[S] {
	if merge == nil {
		merge = DefaultStructMerge[S]
	}
	return &StructSchema[S]{InitialValue: initial, MergeFunc: merge}
}

// Init returns the initial value.
func (s *StructSchema[S]) Init() S {
	return s.InitialValue
}

// Update merges update into current.
func (s *StructSchema[S]) Update(current, update S) (S, error) {
	return s.MergeFunc(current, update)
}

// DefaultStructMerge overwrites every exported field whose value in update
// is non-zero and keeps the rest of current.
func DefaultStructMerge[S any](current, update S) (S, error) {
	cur := reflect.ValueOf(&current).Elem()
	upd := reflect.ValueOf(update)
	if cur.Kind() != reflect.Struct {
		var zero S
		return zero, fmt.Errorf("DefaultStructMerge only works with struct types, got %s", cur.Kind())
	}

	t := cur.Type()
	for i := range cur.NumField() {
		if !t.Field(i).IsExported() {
			continue
		}
		if f := upd.Field(i); !f.IsZero() {
			cur.Field(i).Set(f)
		}
	}
	return current, nil
}

// MessagesState is the prebuilt state holding a conversation.
type MessagesState struct {
	Messages []message.Message `json:"messages"`
}

// MessagesSchema merges MessagesState updates with message.Add.
func MessagesSchema() *StructSchema[MessagesState] {
	return NewStructSchema(MessagesState{}, func(current, update MessagesState) (MessagesState, error) {
		merged, err := message.Add(current.Messages, update.Messages)
		if err != nil {
			return current, err
		}
		return MessagesState{Messages: merged}, nil
	})
}

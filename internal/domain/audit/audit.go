// Package audit defines the catalog change-audit contract.
// Recording is best-effort: a failed audit write is logged and never fails
// the operation that triggered it.
package audit

import (
	"context"

	"stockgrid/internal/core/id"
)

// Action represents the kind of audited operation.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionArchive    Action = "archive"
	ActionRestore    Action = "restore"
	ActionDeactivate Action = "deactivate"
	ActionActivate   Action = "activate"
)

// Entry is one audited change.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	ActorID    string

	// Changes is the entity snapshot or diff; serialized by the recorder.
	Changes any
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Nop is a Recorder that discards entries. Useful in tests and tools.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

// Package replica keeps an offline copy of the reconciled view and a queue
// of local edits waiting to be sent to the server.
package replica

import (
	"context"
	"time"

	"student-scores/models"
)

// LocalRecord is a replicated row. LocalID is a surrogate key assigned on
// first pull; Identifier stays the business key.
type LocalRecord struct {
	models.StudentRecord
	LocalID string `json:"localId"`
	Dirty   bool   `json:"dirty"`
}

// PendingEdit is a local patch that has not reached the server yet.
type PendingEdit struct {
	ID       string              `json:"id"`
	Patch    models.PatchRequest `json:"patch"`
	QueuedAt time.Time           `json:"queuedAt"`
}

// Store is the key-indexed local storage. Get returns a NotFound error for
// unknown identifiers; Pending returns edits in the order they were queued.
type Store interface {
	Get(ctx context.Context, identifier string) (*LocalRecord, error)
	Put(ctx context.Context, rec LocalRecord) error
	Delete(ctx context.Context, identifier string) error
	List(ctx context.Context) ([]LocalRecord, error)

	Enqueue(ctx context.Context, edit PendingEdit) error
	Pending(ctx context.Context) ([]PendingEdit, error)
	Dequeue(ctx context.Context, id string) error

	Close() error
}

package repository

import (
	"context"

	"student-scores/models"
)

// Reader is the read-only view of the source sets handed to the view
// builder. It has no write methods.
type Reader interface {
	List(ctx context.Context, set models.SourceSet) ([]models.SourceRecord, error)
	Get(ctx context.Context, set models.SourceSet, identifier string) (*models.SourceRecord, error)
}

type reader struct {
	q Querier
}

func NewReader(q Querier) Reader {
	return reader{q: q}
}

func (r reader) List(ctx context.Context, set models.SourceSet) ([]models.SourceRecord, error) {
	return List(ctx, r.q, set)
}

func (r reader) Get(ctx context.Context, set models.SourceSet, identifier string) (*models.SourceRecord, error) {
	return Get(ctx, r.q, set, identifier)
}

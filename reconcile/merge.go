// Package reconcile combines the three source sets: the field-level merge
// used by every write, the transactional patch, the cascading delete and the
// read-only reconciled view.
package reconcile

import (
	"context"

	"student-scores/models"
	"student-scores/repository"
)

// Merge resolves an incoming partial row against the stored one (nil when
// there is none) and returns the full row to persist. Set overwrites, Clear
// writes null and Untouched keeps the stored value. Names only ever coalesce:
// a supplied non-empty name wins, anything else keeps the stored name.
func Merge(existing *models.SourceRecord, incoming models.SourceUpdate) models.SourceRecord {
	var base models.SourceRecord
	if existing != nil {
		base = *existing
	}

	out := models.SourceRecord{
		Identifier: incoming.Identifier,
		FirstName:  coalesceName(incoming.FirstName, base.FirstName),
		LastName:   coalesceName(incoming.LastName, base.LastName),
		Subject:    mergeString(incoming.Subject, base.Subject),
		Grade:      mergeString(incoming.Grade, base.Grade),
		Campus:     mergeString(incoming.Campus, base.Campus),
		Teacher:    mergeString(incoming.Teacher, base.Teacher),
		Score:      mergeFloat(incoming.Score, base.Score),
		StaarScore: mergeFloat(incoming.StaarScore, base.StaarScore),
	}
	if out.Identifier == "" {
		out.Identifier = base.Identifier
	}
	return out
}

func coalesceName(in models.OptionalString, stored *string) *string {
	if in.State == models.Set && in.Value != "" {
		return in.Ptr()
	}
	return stored
}

func mergeString(in models.OptionalString, stored *string) *string {
	switch in.State {
	case models.Set:
		return in.Ptr()
	case models.Clear:
		return nil
	default:
		return stored
	}
}

func mergeFloat(in models.OptionalFloat, stored *float64) *float64 {
	switch in.State {
	case models.Set:
		return in.Ptr()
	case models.Clear:
		return nil
	default:
		return stored
	}
}

// Upsert reads the stored row of update.Identifier in set, merges and writes
// the full result back through q.
func Upsert(ctx context.Context, q repository.Querier, set models.SourceSet, update models.SourceUpdate) (models.SourceRecord, error) {
	existing, err := repository.Get(ctx, q, set, update.Identifier)
	if err != nil {
		return models.SourceRecord{}, err
	}
	merged := Merge(existing, update)
	if existing == nil {
		err = repository.Insert(ctx, q, set, merged)
	} else {
		err = repository.Update(ctx, q, set, merged)
	}
	return merged, err
}

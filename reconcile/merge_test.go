package reconcile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-scores/internal/testutil"
	"student-scores/models"
	"student-scores/reconcile"
	"student-scores/repository"
)

func strPtr(s string) *string { return &s }
func fPtr(f float64) *float64 { return &f }

func TestMergeFieldStates(t *testing.T) {
	existing := &models.SourceRecord{
		Identifier: "006547",
		FirstName:  strPtr("Itzhak"),
		LastName:   strPtr("Aguilar"),
		Grade:      strPtr("7"),
		Campus:     strPtr("North"),
		StaarScore: fPtr(72),
		Score:      fPtr(80),
	}

	t.Run("untouched keeps stored values", func(t *testing.T) {
		got := reconcile.Merge(existing, models.SourceUpdate{Identifier: "006547"})
		assert.Equal(t, *existing, got)
	})

	t.Run("set overwrites and clear nulls", func(t *testing.T) {
		got := reconcile.Merge(existing, models.SourceUpdate{
			Identifier: "006547",
			Score:      models.SetFloat(91),
			StaarScore: models.ClearFloat(),
			Campus:     models.ClearString(),
		})
		assert.Equal(t, 91.0, *got.Score)
		assert.Nil(t, got.StaarScore)
		assert.Nil(t, got.Campus)
		assert.Equal(t, "7", *got.Grade)
	})

	t.Run("names never clear", func(t *testing.T) {
		got := reconcile.Merge(existing, models.SourceUpdate{
			Identifier: "006547",
			FirstName:  models.ClearString(),
			LastName:   models.SetString(""),
		})
		assert.Equal(t, "Itzhak", *got.FirstName)
		assert.Equal(t, "Aguilar", *got.LastName)
	})

	t.Run("supplied name wins", func(t *testing.T) {
		got := reconcile.Merge(existing, models.SourceUpdate{Identifier: "006547", FirstName: models.SetString("Isaac")})
		assert.Equal(t, "Isaac", *got.FirstName)
	})

	t.Run("no existing row", func(t *testing.T) {
		got := reconcile.Merge(nil, models.SourceUpdate{Identifier: "12", Score: models.SetFloat(40), Grade: models.ClearString()})
		assert.Equal(t, models.SourceRecord{Identifier: "12", Score: fPtr(40)}, got)
	})
}

func TestMergeIsIdempotent(t *testing.T) {
	updates := []models.SourceUpdate{
		{Identifier: "1", Score: models.SetFloat(55)},
		{Identifier: "1", Score: models.ClearFloat(), FirstName: models.SetString("Ana")},
		{Identifier: "1", Grade: models.SetString("K"), LastName: models.ClearString()},
	}
	bases := []*models.SourceRecord{
		nil,
		{Identifier: "1", FirstName: strPtr("Bo"), Score: fPtr(10), Grade: strPtr("3")},
	}
	for _, base := range bases {
		for _, u := range updates {
			once := reconcile.Merge(base, u)
			twice := reconcile.Merge(&once, u)
			assert.Equal(t, once, twice)
		}
	}
}

func TestUpsertInsertsThenUpdates(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, err := reconcile.Upsert(ctx, db, models.FallPerformance, models.SourceUpdate{
		Identifier: "42",
		FirstName:  models.SetString("Ana"),
		Subject:    models.SetString("math"),
		Score:      models.SetFloat(60),
	})
	require.NoError(t, err)

	merged, err := reconcile.Upsert(ctx, db, models.FallPerformance, models.SourceUpdate{Identifier: "42", Score: models.SetFloat(75)})
	require.NoError(t, err)
	assert.Equal(t, "Ana", *merged.FirstName)

	stored, err := repository.Get(ctx, db, models.FallPerformance, "42")
	require.NoError(t, err)
	assert.Equal(t, merged, *stored)
	assert.Equal(t, 75.0, *stored.Score)
	assert.Equal(t, "math", *stored.Subject)
}

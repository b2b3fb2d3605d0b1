package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-scores/internal/testutil"
	"student-scores/models"
	"student-scores/repository"
)

func strPtr(s string) *string { return &s }
func fPtr(f float64) *float64 { return &f }

func TestInsertGetUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	rec := models.SourceRecord{
		Identifier: "006547",
		FirstName:  strPtr("Itzhak"),
		LastName:   strPtr("Aguilar"),
		Grade:      strPtr("7"),
		Campus:     strPtr("North"),
		Teacher:    strPtr("Rivera"),
		StaarScore: fPtr(72),
		Score:      fPtr(88.5),
	}
	require.NoError(t, repository.Insert(ctx, db, models.SpringMatrix, rec))

	got, err := repository.Get(ctx, db, models.SpringMatrix, "006547")
	require.NoError(t, err)
	assert.Equal(t, rec, *got)

	rec.Score = nil
	rec.Teacher = strPtr("Okafor")
	require.NoError(t, repository.Update(ctx, db, models.SpringMatrix, rec))

	got, err = repository.Get(ctx, db, models.SpringMatrix, "006547")
	require.NoError(t, err)
	assert.Nil(t, got.Score)
	assert.Equal(t, "Okafor", *got.Teacher)
	assert.Equal(t, 72.0, *got.StaarScore)
}

func TestGetMissingReturnsNil(t *testing.T) {
	db := testutil.NewDB(t)
	got, err := repository.Get(context.Background(), db, models.PriorPerformance, "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	require.NoError(t, repository.Insert(ctx, db, models.FallPerformance, models.SourceRecord{Identifier: "1", Subject: strPtr("math"), Score: fPtr(50)}))

	n, err := repository.Delete(ctx, db, models.FallPerformance, "1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repository.Delete(ctx, db, models.FallPerformance, "1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestListOrdersByIdentifier(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	for _, id := range []string{"3", "1", "2"} {
		require.NoError(t, repository.Insert(ctx, db, models.PriorPerformance, models.SourceRecord{Identifier: id}))
	}

	rows, err := repository.NewReader(db).List(ctx, models.PriorPerformance)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].Identifier)
	assert.Equal(t, "3", rows[2].Identifier)
	assert.Nil(t, rows[0].Score)
}

func TestUnknownSet(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := repository.List(context.Background(), db, models.SourceSet("students; DROP TABLE x"))
	assert.ErrorContains(t, err, "unknown source set")
}

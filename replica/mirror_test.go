package replica

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-scores/apperr"
	"student-scores/models"
	"student-scores/scoring"
)

type fakeRemote struct {
	records []models.StudentRecord
	patches []models.PatchRequest
	deleted []string
	// fail maps an identifier to the error its patch returns.
	fail map[string]error
}

func (f *fakeRemote) ListStudents(ctx context.Context, subject string) ([]models.StudentRecord, error) {
	return f.records, nil
}

func (f *fakeRemote) PatchStudent(ctx context.Context, req models.PatchRequest) (*models.PatchResult, error) {
	if err := f.fail[req.Identifier]; err != nil {
		return nil, err
	}
	f.patches = append(f.patches, req)
	return &models.PatchResult{Identifier: req.Identifier}, nil
}

func (f *fakeRemote) DeleteStudent(ctx context.Context, identifier string) error {
	f.deleted = append(f.deleted, identifier)
	return nil
}

func newMirror(t *testing.T, s Store, remote *fakeRemote) *Mirror {
	t.Helper()
	return &Mirror{Store: s, Remote: remote, Subject: "math", Config: scoring.DefaultConfig()}
}

func TestMirrorPullKeepsLocalIDs(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			remote := &fakeRemote{records: []models.StudentRecord{
				{Identifier: "006547", LastName: strPtr("Aguilar")},
				{Identifier: "000100", LastName: strPtr("Baker")},
			}}
			m := newMirror(t, s, remote)

			n, err := m.Pull(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			first, err := s.Get(ctx, "006547")
			require.NoError(t, err)
			assert.NotEmpty(t, first.LocalID)

			remote.records = remote.records[:1]
			_, err = m.Pull(ctx)
			require.NoError(t, err)

			again, err := s.Get(ctx, "006547")
			require.NoError(t, err)
			assert.Equal(t, first.LocalID, again.LocalID)

			_, err = s.Get(ctx, "000100")
			assert.True(t, apperr.Is(err, apperr.NotFound), "vanished identifiers are dropped")
		})
	}
}

func TestMirrorEditAndFlush(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			remote := &fakeRemote{records: []models.StudentRecord{{Identifier: "006547", LastName: strPtr("Aguilar"), FallScore: fPtr(40)}}}
			m := newMirror(t, s, remote)
			_, err := m.Pull(ctx)
			require.NoError(t, err)

			rec, err := m.Edit(ctx, models.PatchRequest{Identifier: "6547", FallScore: models.SetFloat(91)})
			require.NoError(t, err)
			assert.Equal(t, "006547", rec.Identifier)
			assert.True(t, rec.Dirty)
			assert.Equal(t, 91.0, *rec.FallScore)
			assert.Equal(t, "Masters", *rec.FallLevel)

			// a pull before flushing keeps the local edit visible
			_, err = m.Pull(ctx)
			require.NoError(t, err)
			stored, err := s.Get(ctx, "006547")
			require.NoError(t, err)
			assert.Equal(t, 91.0, *stored.FallScore)
			assert.True(t, stored.Dirty)

			res, err := m.Flush(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, res.Sent)
			require.Len(t, remote.patches, 1)
			assert.Equal(t, "006547", remote.patches[0].Identifier)

			stored, err = s.Get(ctx, "006547")
			require.NoError(t, err)
			assert.False(t, stored.Dirty)
			pending, err := s.Pending(ctx)
			require.NoError(t, err)
			assert.Empty(t, pending)
		})
	}
}

func TestMirrorEditRejectsInvalidPatch(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			m := newMirror(t, s, &fakeRemote{})
			_, err := m.Edit(context.Background(), models.PatchRequest{Identifier: "1", StaarScore: models.SetFloat(150)})
			assert.True(t, apperr.Is(err, apperr.Validation))

			pending, err := s.Pending(context.Background())
			require.NoError(t, err)
			assert.Empty(t, pending)
		})
	}
}

func TestMirrorFlushStopsOnTransportFailure(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			remote := &fakeRemote{fail: map[string]error{
				"2": apperr.Validationf("fallScore must be between 0 and 100, got 101"),
				"3": apperr.Wrap(assert.AnError, "patch"),
			}}
			m := newMirror(t, s, remote)
			for _, id := range []string{"1", "2", "3", "4"} {
				_, err := m.Edit(ctx, models.PatchRequest{Identifier: id, FallScore: models.SetFloat(10)})
				require.NoError(t, err)
			}

			res, err := m.Flush(ctx)
			assert.True(t, apperr.Is(err, apperr.Transport))
			assert.Equal(t, 1, res.Sent)
			assert.Len(t, res.Rejected, 1)
			assert.Equal(t, 2, res.Pending)

			pending, err := s.Pending(ctx)
			require.NoError(t, err)
			require.Len(t, pending, 2)
			assert.Equal(t, "3", pending[0].Patch.Identifier)
			assert.Equal(t, "4", pending[1].Patch.Identifier)

			rec, err := s.Get(ctx, "3")
			require.NoError(t, err)
			assert.True(t, rec.Dirty)
		})
	}
}

func TestMirrorFlushResetsRejectedRows(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			remote := &fakeRemote{
				records: []models.StudentRecord{
					{Identifier: "006547", LastName: strPtr("Aguilar"), FallScore: fPtr(40)},
					{Identifier: "000100", FallScore: fPtr(55)},
				},
				fail: map[string]error{
					"006547": apperr.Validationf("fallScore rejected"),
					"777":    apperr.NotFoundf("student 777 not found"),
				},
			}
			m := newMirror(t, s, remote)
			_, err := m.Pull(ctx)
			require.NoError(t, err)
			before, err := s.Get(ctx, "006547")
			require.NoError(t, err)

			for _, p := range []models.PatchRequest{
				{Identifier: "006547", FallScore: models.SetFloat(91)},
				{Identifier: "000100", FallScore: models.SetFloat(70)},
				{Identifier: "777", FallScore: models.SetFloat(12)},
			} {
				_, err := m.Edit(ctx, p)
				require.NoError(t, err)
			}

			res, err := m.Flush(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, res.Sent)
			assert.Len(t, res.Rejected, 2)

			rejected, err := s.Get(ctx, "006547")
			require.NoError(t, err)
			assert.Equal(t, 40.0, *rejected.FallScore, "server copy restored")
			assert.False(t, rejected.Dirty)
			assert.Equal(t, before.LocalID, rejected.LocalID)

			accepted, err := s.Get(ctx, "000100")
			require.NoError(t, err)
			assert.Equal(t, 70.0, *accepted.FallScore)
			assert.False(t, accepted.Dirty)

			_, err = s.Get(ctx, "777")
			assert.True(t, apperr.Is(err, apperr.NotFound), "unknown to the server, dropped locally")
		})
	}
}

func TestMirrorRemove(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			remote := &fakeRemote{records: []models.StudentRecord{{Identifier: "9"}}}
			m := newMirror(t, s, remote)
			_, err := m.Pull(ctx)
			require.NoError(t, err)

			require.NoError(t, m.Remove(ctx, "9"))
			assert.Equal(t, []string{"9"}, remote.deleted)
			all, err := m.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

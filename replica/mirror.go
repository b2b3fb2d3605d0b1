package replica

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"student-scores/apperr"
	"student-scores/identity"
	"student-scores/models"
	"student-scores/reconcile"
	"student-scores/scoring"
)

// Remote is the part of the service API the mirror needs.
type Remote interface {
	ListStudents(ctx context.Context, subject string) ([]models.StudentRecord, error)
	PatchStudent(ctx context.Context, req models.PatchRequest) (*models.PatchResult, error)
	DeleteStudent(ctx context.Context, identifier string) error
}

// Mirror keeps a Store in step with the server: Pull replaces the local copy
// with the server view, Edit changes the local copy and queues the patch,
// Flush sends queued patches in order.
type Mirror struct {
	Store   Store
	Remote  Remote
	Subject string
	// Config classifies locally edited scores. Nil leaves levels null.
	Config *models.Config
}

// FlushResult reports what a flush did with the queue.
type FlushResult struct {
	Sent     int
	Rejected []string
	Pending  int
}

// Pull refreshes the replica from the server. Known identifiers keep their
// LocalID, identifiers gone from the server are dropped unless they still
// have queued edits, and queued edits are re-applied on top of fresh rows.
func (m *Mirror) Pull(ctx context.Context) (int, error) {
	remote, err := m.Remote.ListStudents(ctx, m.Subject)
	if err != nil {
		return 0, err
	}
	local, err := m.Store.List(ctx)
	if err != nil {
		return 0, err
	}
	pending, err := m.Store.Pending(ctx)
	if err != nil {
		return 0, err
	}

	existing := make(map[string]LocalRecord, len(local))
	for _, rec := range local {
		existing[rec.Identifier] = rec
	}
	queued := make(map[string][]models.PatchRequest)
	for _, edit := range pending {
		queued[edit.Patch.Identifier] = append(queued[edit.Patch.Identifier], edit.Patch)
	}

	seen := make(map[string]bool, len(remote))
	for _, rec := range remote {
		seen[rec.Identifier] = true
		lr := LocalRecord{StudentRecord: rec, LocalID: uuid.NewString()}
		if prev, ok := existing[rec.Identifier]; ok {
			lr.LocalID = prev.LocalID
		}
		for _, p := range queued[rec.Identifier] {
			m.apply(&lr.StudentRecord, p)
			lr.Dirty = true
		}
		if err := m.Store.Put(ctx, lr); err != nil {
			return 0, err
		}
	}

	for id, rec := range existing {
		if seen[id] || rec.Dirty {
			continue
		}
		if err := m.Store.Delete(ctx, id); err != nil {
			return 0, err
		}
	}

	log.WithFields(log.Fields{"records": len(remote), "pending": len(pending)}).Info("replica pulled")
	return len(remote), nil
}

// Edit validates p, applies it to the local copy and queues it. The
// identifier is resolved against the identifiers already in the replica.
func (m *Mirror) Edit(ctx context.Context, p models.PatchRequest) (*LocalRecord, error) {
	if err := reconcile.ValidatePatch(p); err != nil {
		return nil, err
	}

	local, err := m.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	lookup := identity.NewLookup()
	for _, rec := range local {
		lookup.Add(rec.Identifier, identity.Names{})
	}
	p.Identifier = identity.Normalize(p.Identifier, lookup)

	rec, err := m.Store.Get(ctx, p.Identifier)
	if apperr.Is(err, apperr.NotFound) {
		rec = &LocalRecord{StudentRecord: models.StudentRecord{Identifier: p.Identifier}, LocalID: uuid.NewString()}
	} else if err != nil {
		return nil, err
	}

	m.apply(&rec.StudentRecord, p)
	rec.Dirty = true
	if err := m.Store.Put(ctx, *rec); err != nil {
		return nil, err
	}
	edit := PendingEdit{ID: uuid.NewString(), Patch: p, QueuedAt: time.Now().UTC()}
	if err := m.Store.Enqueue(ctx, edit); err != nil {
		return nil, err
	}
	return rec, nil
}

// Flush sends queued edits oldest first. A patch the server rejects as
// invalid is dropped and reported, and the rows it touched are reset to the
// server's copy. A transport failure stops the flush and leaves the rest of
// the queue in place.
func (m *Mirror) Flush(ctx context.Context) (*FlushResult, error) {
	pending, err := m.Store.Pending(ctx)
	if err != nil {
		return nil, err
	}

	res := &FlushResult{}
	flushed := make(map[string]bool)
	rejected := make(map[string]bool)
	for i, edit := range pending {
		_, err := m.Remote.PatchStudent(ctx, edit.Patch)
		switch {
		case err == nil:
			res.Sent++
		case apperr.Is(err, apperr.Validation), apperr.Is(err, apperr.NotFound):
			res.Rejected = append(res.Rejected, edit.Patch.Identifier+": "+apperr.Message(err))
			log.WithError(err).WithField("identifier", edit.Patch.Identifier).Warn("queued edit rejected")
			rejected[edit.Patch.Identifier] = true
		default:
			res.Pending = len(pending) - i
			return res, err
		}
		if err := m.Store.Dequeue(ctx, edit.ID); err != nil {
			res.Pending = len(pending) - i
			return res, err
		}
		flushed[edit.Patch.Identifier] = true
	}

	if len(rejected) > 0 {
		if err := m.restore(ctx, rejected); err != nil {
			log.WithError(err).Warn("could not reset rejected rows, they stay dirty")
		}
	}

	for id := range flushed {
		if rejected[id] {
			continue
		}
		rec, err := m.Store.Get(ctx, id)
		if apperr.Is(err, apperr.NotFound) {
			continue
		}
		if err != nil {
			return res, err
		}
		rec.Dirty = false
		if err := m.Store.Put(ctx, *rec); err != nil {
			return res, err
		}
	}
	return res, nil
}

// restore replaces the local rows of ids with the server view, or drops
// them when the server has no such student. A reset row is clean.
func (m *Mirror) restore(ctx context.Context, ids map[string]bool) error {
	remote, err := m.Remote.ListStudents(ctx, m.Subject)
	if err != nil {
		return err
	}
	byID := make(map[string]models.StudentRecord, len(remote))
	for _, r := range remote {
		byID[r.Identifier] = r
	}
	for id := range ids {
		server, ok := byID[id]
		if !ok {
			if err := m.Store.Delete(ctx, id); err != nil {
				return err
			}
			continue
		}
		rec := LocalRecord{StudentRecord: server, LocalID: uuid.NewString()}
		if cur, err := m.Store.Get(ctx, id); err == nil {
			rec.LocalID = cur.LocalID
		} else if !apperr.Is(err, apperr.NotFound) {
			return err
		}
		if err := m.Store.Put(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes identifier on the server and then from the replica.
func (m *Mirror) Remove(ctx context.Context, identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return apperr.Validationf("identifier is required")
	}
	if err := m.Remote.DeleteStudent(ctx, identifier); err != nil {
		return err
	}
	return m.Store.Delete(ctx, identifier)
}

// List returns the replica sorted the same way as the server view.
func (m *Mirror) List(ctx context.Context) ([]LocalRecord, error) {
	local, err := m.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.StudentRecord, len(local))
	byID := make(map[string]LocalRecord, len(local))
	for i, rec := range local {
		views[i] = rec.StudentRecord
		byID[rec.Identifier] = rec
	}
	reconcile.SortRecords(views)

	out := make([]LocalRecord, len(views))
	for i, v := range views {
		out[i] = byID[v.Identifier]
	}
	return out, nil
}

// apply merges a patch into a view row the same way the server would and
// reclassifies the scores.
func (m *Mirror) apply(rec *models.StudentRecord, p models.PatchRequest) {
	rec.PriorScore = patchFloat(p.Prior(), rec.PriorScore)
	rec.FallScore = patchFloat(p.FallScore, rec.FallScore)
	rec.SpringScore = patchFloat(p.SpringScore, rec.SpringScore)
	if p.FirstName.State == models.Set && p.FirstName.Value != "" {
		rec.FirstName = p.FirstName.Ptr()
	}
	if p.LastName.State == models.Set && p.LastName.Value != "" {
		rec.LastName = p.LastName.Ptr()
	}

	sets := scoring.SetsFor(m.Config, m.subject())
	rec.PriorLevel = sets.Prior(rec.PriorScore)
	rec.FallLevel = sets.Checkpoint(rec.FallScore)
	rec.SpringLevel = sets.Checkpoint(rec.SpringScore)
}

func (m *Mirror) subject() string {
	if m.Subject == "" {
		return reconcile.DefaultSubject
	}
	return strings.ToLower(m.Subject)
}

func patchFloat(in models.OptionalFloat, stored *float64) *float64 {
	switch in.State {
	case models.Set:
		return in.Ptr()
	case models.Clear:
		return nil
	default:
		return stored
	}
}

package reconcile

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"student-scores/apperr"
	"student-scores/identity"
	"student-scores/models"
	"student-scores/repository"
	"student-scores/scoring"
)

// DefaultSubject is used when a read does not name one.
const DefaultSubject = "math"

// NamePrecedence is the order in which source sets supply names, both in the
// view and when a patch looks up names to carry along.
var NamePrecedence = []models.SourceSet{models.SpringMatrix, models.FallPerformance, models.PriorPerformance}

type sourceRows struct {
	prior, fall, spring *models.SourceRecord
}

func (s *sourceRows) slot(set models.SourceSet) **models.SourceRecord {
	switch set {
	case models.PriorPerformance:
		return &s.prior
	case models.FallPerformance:
		return &s.fall
	default:
		return &s.spring
	}
}

func (s *sourceRows) row(set models.SourceSet) *models.SourceRecord {
	return *s.slot(set)
}

// BuildView returns one classified record per canonical identifier found in
// any source set, sorted by last name then first name. A nil cfg leaves every
// level null.
func BuildView(ctx context.Context, reader repository.Reader, cfg *models.Config, subject string) ([]models.StudentRecord, error) {
	grouped, err := collect(ctx, reader)
	if err != nil {
		return nil, err
	}

	sets := scoring.SetsFor(cfg, subjectOrDefault(subject))
	records := make([]models.StudentRecord, 0, len(grouped))
	for id, rows := range grouped {
		records = append(records, assemble(id, rows, sets))
	}
	SortRecords(records)
	return records, nil
}

// FindRecord builds the view row of a single identifier.
func FindRecord(ctx context.Context, reader repository.Reader, cfg *models.Config, subject, identifier string) (*models.StudentRecord, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return nil, apperr.Validationf("identifier is required")
	}
	records, err := BuildView(ctx, reader, cfg, subject)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Identifier == id {
			return &records[i], nil
		}
	}
	// the caller may have sent a differently padded form
	lookup := identity.NewLookup()
	for _, r := range records {
		lookup.Add(r.Identifier, identity.Names{})
	}
	canonical := identity.Normalize(id, lookup)
	for i := range records {
		if records[i].Identifier == canonical {
			return &records[i], nil
		}
	}
	return nil, apperr.NotFoundf("no student with identifier %s", id)
}

// collect reads all three sets and groups their rows by canonical
// identifier. Canonical forms are taken from the sets in name precedence
// order, so a roster id like "006547" absorbs a stray "6547" elsewhere.
func collect(ctx context.Context, reader repository.Reader) (map[string]*sourceRows, error) {
	bySet := make(map[models.SourceSet][]models.SourceRecord, len(NamePrecedence))
	lookup := identity.NewLookup()
	for _, set := range NamePrecedence {
		rows, err := reader.List(ctx, set)
		if err != nil {
			return nil, apperr.Wrap(err, "read "+string(set))
		}
		bySet[set] = rows
		for _, r := range rows {
			lookup.Add(r.Identifier, identity.Names{})
		}
	}

	grouped := make(map[string]*sourceRows)
	for _, set := range NamePrecedence {
		for i := range bySet[set] {
			rec := &bySet[set][i]
			id, ok := identity.NormalizeOK(rec.Identifier, lookup)
			if !ok {
				continue
			}
			g, found := grouped[id]
			if !found {
				g = &sourceRows{}
				grouped[id] = g
			}
			slot := g.slot(set)
			// an exact identifier match beats a differently padded duplicate
			if *slot == nil || (*slot).Identifier != id && rec.Identifier == id {
				*slot = rec
			}
		}
	}
	return grouped, nil
}

func assemble(id string, rows *sourceRows, sets scoring.Sets) models.StudentRecord {
	rec := models.StudentRecord{Identifier: id}

	for _, set := range NamePrecedence {
		r := rows.row(set)
		if r == nil {
			continue
		}
		if rec.FirstName == nil {
			rec.FirstName = r.FirstName
		}
		if rec.LastName == nil {
			rec.LastName = r.LastName
		}
	}

	if s := rows.spring; s != nil {
		rec.Grade = s.Grade
		rec.Campus = s.Campus
		rec.Teacher = s.Teacher
		rec.SpringScore = s.Score
	}
	if p := rows.prior; p != nil && p.Score != nil {
		rec.PriorScore = p.Score
	} else if s := rows.spring; s != nil {
		rec.PriorScore = s.StaarScore
	}
	if f := rows.fall; f != nil {
		rec.FallScore = f.Score
	}

	rec.PriorLevel = sets.Prior(rec.PriorScore)
	rec.FallLevel = sets.Checkpoint(rec.FallScore)
	rec.SpringLevel = sets.Checkpoint(rec.SpringScore)
	return rec
}

// SortRecords orders by last name, then first name, using English collation,
// with the identifier as the final tie-breaker.
func SortRecords(records []models.StudentRecord) {
	col := collate.New(language.English)
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if c := col.CompareString(deref(a.LastName), deref(b.LastName)); c != 0 {
			return c < 0
		}
		if c := col.CompareString(deref(a.FirstName), deref(b.FirstName)); c != 0 {
			return c < 0
		}
		return a.Identifier < b.Identifier
	})
}

func subjectOrDefault(subject string) string {
	subject = strings.TrimSpace(strings.ToLower(subject))
	if subject == "" {
		return DefaultSubject
	}
	return subject
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

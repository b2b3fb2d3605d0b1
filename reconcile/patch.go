package reconcile

import (
	"context"
	"database/sql"
	"strings"

	log "github.com/sirupsen/logrus"

	"student-scores/apperr"
	"student-scores/identity"
	"student-scores/models"
	"student-scores/repository"
)

// ValidatePatch rejects a patch before any transaction is opened.
func ValidatePatch(req models.PatchRequest) error {
	if strings.TrimSpace(req.Identifier) == "" {
		return apperr.Validationf("identifier is required")
	}
	if n := len(strings.TrimSpace(req.Identifier)); n > identity.MaxLength {
		return apperr.Validationf("identifier must be at most %d characters, got %d", identity.MaxLength, n)
	}
	if !req.HasScore() {
		return apperr.Validationf("at least one of priorScore, fallScore or springScore must be supplied")
	}
	scores := []struct {
		name  string
		value models.OptionalFloat
	}{
		{"priorScore", req.PriorScore},
		{"staarScore", req.StaarScore},
		{"fallScore", req.FallScore},
		{"springScore", req.SpringScore},
	}
	for _, s := range scores {
		if s.value.State == models.Set && (s.value.Value < 0 || s.value.Value > 100) {
			return apperr.Validationf("%s must be between 0 and 100, got %g", s.name, s.value.Value)
		}
	}
	return nil
}

// Patcher applies partial score updates across the three source sets in a
// single transaction.
type Patcher struct {
	DB *sql.DB
}

func NewPatcher(db *sql.DB) *Patcher {
	return &Patcher{DB: db}
}

// Apply validates req, then resolves the canonical identifier, carries the
// known names along and upserts prior, fall and spring in that order. Either
// every supplied score is written or none is.
func (p *Patcher) Apply(ctx context.Context, req models.PatchRequest) (*models.PatchResult, error) {
	if err := ValidatePatch(req); err != nil {
		return nil, err
	}

	result := &models.PatchResult{}
	err := WithTx(ctx, p.DB, "patch", func(q repository.Querier) error {
		lookup, err := LoadLookup(ctx, q)
		if err != nil {
			return err
		}
		id := identity.Normalize(req.Identifier, lookup)
		result.Identifier = id

		names, err := lookupNames(ctx, q, id)
		if err != nil {
			return err
		}
		first := nameUpdate(req.FirstName, names.FirstName)
		last := nameUpdate(req.LastName, names.LastName)

		writes := []struct {
			set     models.SourceSet
			score   models.OptionalFloat
			updated *bool
		}{
			{models.PriorPerformance, req.Prior(), &result.Updated.Prior},
			{models.FallPerformance, req.FallScore, &result.Updated.Fall},
			{models.SpringMatrix, req.SpringScore, &result.Updated.Spring},
		}
		for _, w := range writes {
			if !w.score.Present() {
				continue
			}
			update := models.SourceUpdate{Identifier: id, FirstName: first, LastName: last, Score: w.score}
			if _, err := Upsert(ctx, q, w.set, update); err != nil {
				return err
			}
			*w.updated = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"identifier": result.Identifier,
		"prior":      result.Updated.Prior,
		"fall":       result.Updated.Fall,
		"spring":     result.Updated.Spring,
	}).Info("patch applied")
	return result, nil
}

// LoadLookup indexes every stored identifier, registering sources in name
// precedence order so the roster's form of an identifier is canonical.
func LoadLookup(ctx context.Context, q repository.Querier) (*identity.Lookup, error) {
	lookup := identity.NewLookup()
	for _, set := range NamePrecedence {
		rows, err := repository.List(ctx, q, set)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			lookup.Add(r.Identifier, identity.Names{FirstName: r.FirstName, LastName: r.LastName})
		}
	}
	return lookup, nil
}

// lookupNames takes each name field from the first source set, in name
// precedence order, that holds a non-null value for id.
func lookupNames(ctx context.Context, q repository.Querier, id string) (identity.Names, error) {
	var names identity.Names
	for _, set := range NamePrecedence {
		if names.FirstName != nil && names.LastName != nil {
			break
		}
		rec, err := repository.Get(ctx, q, set, id)
		if err != nil {
			return names, err
		}
		if rec == nil {
			continue
		}
		if names.FirstName == nil {
			names.FirstName = rec.FirstName
		}
		if names.LastName == nil {
			names.LastName = rec.LastName
		}
	}
	return names, nil
}

// nameUpdate prefers a supplied name and otherwise carries the known one.
func nameUpdate(supplied models.OptionalString, known *string) models.OptionalString {
	if supplied.State == models.Set && strings.TrimSpace(supplied.Value) != "" {
		return models.SetString(strings.TrimSpace(supplied.Value))
	}
	if known != nil {
		return models.SetString(*known)
	}
	return models.OptionalString{}
}

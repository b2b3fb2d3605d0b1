package importer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"student-scores/apperr"
	"student-scores/identity"
	"student-scores/models"
	"student-scores/reconcile"
	"student-scores/repository"
)

// Pipeline imports batches into the source sets. Every record is upserted
// in its own transaction so one bad row never aborts the batch.
type Pipeline struct {
	DB *sql.DB
}

func NewPipeline(db *sql.DB) *Pipeline {
	return &Pipeline{DB: db}
}

// Destination returns the source set an import kind writes to. An empty
// kind means a standard roster import.
func Destination(kind string) (models.SourceSet, error) {
	switch kind {
	case models.ImportPrevious:
		return models.PriorPerformance, nil
	case models.ImportFall:
		return models.FallPerformance, nil
	case models.ImportStandard, "":
		return models.SpringMatrix, nil
	default:
		return "", apperr.Validationf("unknown importKind %q", kind)
	}
}

// Run validates the batch envelope, then parses, normalizes and upserts each
// element. Per-record failures are counted as skipped; their messages are
// only returned when verbose is set.
func (p *Pipeline) Run(ctx context.Context, req models.ImportRequest, verbose bool) (*models.ImportResult, error) {
	req.Subject = strings.ToLower(strings.TrimSpace(req.Subject))
	if err := models.Validate(req); err != nil {
		return nil, apperr.Validationf("%v", err)
	}
	set, err := Destination(req.ImportKind)
	if err != nil {
		return nil, err
	}

	lookup, err := p.loadLookup(ctx)
	if err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{"subject": req.Subject, "set": set})
	result := &models.ImportResult{Success: true}
	for i, raw := range req.Students {
		id, err := p.importOne(ctx, set, req.Subject, raw, lookup)
		if err != nil {
			result.Skipped++
			msg := fmt.Sprintf("record %d: %s", i+1, apperr.Message(err))
			logger.WithError(err).WithField("record", i+1).Warn("import record skipped")
			if verbose {
				result.Errors = append(result.Errors, msg)
			}
			continue
		}
		result.Processed++
		logger.WithField("identifier", id).Debug("import record stored")
	}

	result.Message = fmt.Sprintf("imported %d of %d records", result.Processed, len(req.Students))
	logger.WithFields(log.Fields{"processed": result.Processed, "skipped": result.Skipped}).Info("import finished")
	return result, nil
}

func (p *Pipeline) loadLookup(ctx context.Context) (*identity.Lookup, error) {
	var lookup *identity.Lookup
	err := reconcile.WithTx(ctx, p.DB, "import lookup", func(q repository.Querier) error {
		var err error
		lookup, err = reconcile.LoadLookup(ctx, q)
		return err
	})
	return lookup, err
}

func (p *Pipeline) importOne(ctx context.Context, set models.SourceSet, subject string, raw []byte, lookup *identity.Lookup) (string, error) {
	rec, err := Resolve(raw)
	if err != nil {
		return "", err
	}
	row, err := Parse(rec)
	if err != nil {
		return "", err
	}

	id, ok := identity.NormalizeOK(row.Identifier, lookup)
	if !ok {
		return "", apperr.ImportRecordf("missing identifier")
	}
	if len(id) > identity.MaxLength {
		return "", apperr.ImportRecordf("identifier %q longer than %d characters", id, identity.MaxLength)
	}
	if row.FirstName == nil && row.LastName == nil {
		if names, found := lookup.Names(id); found {
			row.FirstName, row.LastName = names.FirstName, names.LastName
		}
	}

	update, err := route(set, subject, id, row)
	if err != nil {
		return "", err
	}
	err = reconcile.WithTx(ctx, p.DB, "import "+string(set), func(q repository.Querier) error {
		_, err := reconcile.Upsert(ctx, q, set, update)
		return err
	})
	if err != nil {
		return "", err
	}
	lookup.Add(id, identity.Names{FirstName: row.FirstName, LastName: row.LastName})
	return id, nil
}

// route maps a parsed row onto the columns of its destination. Absent
// optional fields stay untouched so a re-import never wipes stored data.
func route(set models.SourceSet, subject, id string, row Row) (models.SourceUpdate, error) {
	update := models.SourceUpdate{
		Identifier: id,
		FirstName:  models.StringFrom(row.FirstName),
		LastName:   models.StringFrom(row.LastName),
	}
	if set == models.SpringMatrix {
		update.Grade = present(row.Grade)
		update.Campus = present(row.Campus)
		update.Teacher = present(row.Teacher)
		if row.Score != nil {
			update.Score = models.SetFloat(*row.Score)
		}
		if row.StaarScore != nil {
			update.StaarScore = models.SetFloat(*row.StaarScore)
		}
		return update, nil
	}

	score := row.Score
	if score == nil {
		score = row.StaarScore
	}
	if score == nil {
		return update, apperr.ImportRecordf("no score for %s", id)
	}
	update.Subject = models.SetString(subject)
	update.Score = models.SetFloat(*score)
	return update, nil
}

func present(s *string) models.OptionalString {
	if s == nil {
		return models.OptionalString{}
	}
	return models.SetString(*s)
}

package reconcile

import (
	"context"
	"database/sql"

	log "github.com/sirupsen/logrus"

	"student-scores/apperr"
	"student-scores/repository"
)

// WithTx runs fn inside one transaction. The rollback is deferred right
// after begin so the transaction is released on every exit path, panics
// included; it is a no-op once Commit succeeded. Errors that are not already
// kinded come back as transport failures.
func WithTx(ctx context.Context, db *sql.DB, op string, fn func(q repository.Querier) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.WithError(err).WithField("op", op).Error("begin transaction failed")
		return apperr.Wrap(err, op+": begin")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		log.WithError(err).WithField("op", op).Warn("transaction rolled back")
		if _, kinded := err.(*apperr.Error); kinded {
			return err
		}
		return apperr.Wrap(err, op)
	}

	if err := tx.Commit(); err != nil {
		log.WithError(err).WithField("op", op).Error("commit failed")
		return apperr.Wrap(err, op+": commit")
	}
	return nil
}

package reconcile

import (
	"context"
	"database/sql"
	"strings"

	log "github.com/sirupsen/logrus"

	"student-scores/apperr"
	"student-scores/identity"
	"student-scores/repository"
)

// Delete removes identifier from all three source sets in one transaction.
// Rows whose identifier normalizes to the same canonical form, such as a
// stray "6547" next to "006547", are removed too. Deleting an identifier
// that has no rows succeeds without effect.
func Delete(ctx context.Context, db *sql.DB, identifier string) (string, error) {
	if strings.TrimSpace(identifier) == "" {
		return "", apperr.Validationf("identifier is required")
	}

	var id string
	var removed int64
	err := WithTx(ctx, db, "delete", func(q repository.Querier) error {
		lookup, err := LoadLookup(ctx, q)
		if err != nil {
			return err
		}
		id = identity.Normalize(identifier, lookup)
		for _, set := range NamePrecedence {
			rows, err := repository.List(ctx, q, set)
			if err != nil {
				return err
			}
			for _, r := range rows {
				if identity.Normalize(r.Identifier, lookup) != id {
					continue
				}
				n, err := repository.Delete(ctx, q, set, r.Identifier)
				if err != nil {
					return err
				}
				removed += n
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{"identifier": id, "rows": removed}).Info("student deleted")
	return id, nil
}

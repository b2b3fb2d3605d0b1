// Package repository reads and writes the three source record sets. All
// statements use `?` placeholders and plain INSERT/UPDATE so they run on both
// MySQL and SQLite.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"student-scores/models"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var columns = map[models.SourceSet][]string{
	models.PriorPerformance: {"identifier", "first_name", "last_name", "subject", "score"},
	models.FallPerformance:  {"identifier", "first_name", "last_name", "subject", "score"},
	models.SpringMatrix:     {"identifier", "first_name", "last_name", "grade", "campus", "teacher", "staar_score", "spring_score"},
}

func columnsOf(set models.SourceSet) ([]string, error) {
	cols, ok := columns[set]
	if !ok {
		return nil, fmt.Errorf("unknown source set %q", set)
	}
	return cols, nil
}

// fields returns pointers into rec in the column order of set, usable both as
// Scan destinations and, dereferenced, as statement arguments.
func fields(set models.SourceSet, rec *models.SourceRecord) []interface{} {
	if set == models.SpringMatrix {
		return []interface{}{&rec.Identifier, &rec.FirstName, &rec.LastName, &rec.Grade, &rec.Campus, &rec.Teacher, &rec.StaarScore, &rec.Score}
	}
	return []interface{}{&rec.Identifier, &rec.FirstName, &rec.LastName, &rec.Subject, &rec.Score}
}

func values(set models.SourceSet, rec *models.SourceRecord) []interface{} {
	if set == models.SpringMatrix {
		return []interface{}{rec.Identifier, rec.FirstName, rec.LastName, rec.Grade, rec.Campus, rec.Teacher, rec.StaarScore, rec.Score}
	}
	return []interface{}{rec.Identifier, rec.FirstName, rec.LastName, rec.Subject, rec.Score}
}

// Get returns the row of identifier in set, or nil when there is none.
func Get(ctx context.Context, q Querier, set models.SourceSet, identifier string) (*models.SourceRecord, error) {
	cols, err := columnsOf(set)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE identifier = ?", strings.Join(cols, ", "), set)

	var rec models.SourceRecord
	err = q.QueryRowContext(ctx, query, identifier).Scan(fields(set, &rec)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select %s from %s", identifier, set)
	}
	return &rec, nil
}

// Insert writes a new full row.
func Insert(ctx context.Context, q Querier, set models.SourceSet, rec models.SourceRecord) error {
	cols, err := columnsOf(set)
	if err != nil {
		return err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", set, strings.Join(cols, ", "), placeholders)
	if _, err := q.ExecContext(ctx, query, values(set, &rec)...); err != nil {
		return errors.Wrapf(err, "insert %s into %s", rec.Identifier, set)
	}
	return nil
}

// Update replaces every non-key column of an existing row.
func Update(ctx context.Context, q Querier, set models.SourceSet, rec models.SourceRecord) error {
	cols, err := columnsOf(set)
	if err != nil {
		return err
	}
	assignments := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		assignments = append(assignments, c+" = ?")
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE identifier = ?", set, strings.Join(assignments, ", "))
	args := append(values(set, &rec)[1:], rec.Identifier)
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "update %s in %s", rec.Identifier, set)
	}
	return nil
}

// Delete removes identifier from set. Missing rows are not an error.
func Delete(ctx context.Context, q Querier, set models.SourceSet, identifier string) (int64, error) {
	if _, err := columnsOf(set); err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE identifier = ?", set), identifier)
	if err != nil {
		return 0, errors.Wrapf(err, "delete %s from %s", identifier, set)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	return n, nil
}

// List returns every row of set ordered by identifier.
func List(ctx context.Context, q Querier, set models.SourceSet) ([]models.SourceRecord, error) {
	cols, err := columnsOf(set)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY identifier", strings.Join(cols, ", "), set))
	if err != nil {
		return nil, errors.Wrapf(err, "select from %s", set)
	}
	defer rows.Close()

	var records []models.SourceRecord
	for rows.Next() {
		var rec models.SourceRecord
		if err := rows.Scan(fields(set, &rec)...); err != nil {
			return nil, errors.Wrapf(err, "scan %s", set)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate %s", set)
	}
	return records, nil
}

// Package testutil opens throwaway migrated stores for package tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"student-scores/driver"
)

// NewDB returns a migrated SQLite database in a temp directory, closed when
// the test ends.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "scores.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := driver.ConnectDB(driver.SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, driver.Migrate(db, driver.SQLite))
	return db
}

// Exec runs raw fixture statements.
func Exec(t testing.TB, db *sql.DB, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

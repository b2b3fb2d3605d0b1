package driver

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	MySQL  = "mysql"
	SQLite = "sqlite3"
)

// ConnectDB opens and pings the backing store. MySQL is the production
// engine, SQLite serves local runs and tests.
func ConnectDB(driverName, dsn string) (*sql.DB, error) {
	switch driverName {
	case MySQL, SQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driverName)
	}
	if dsn == "" {
		return nil, errors.New("database dsn is empty")
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	log.WithField("driver", driverName).Info("database connected")
	return db, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB, driverName string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}

	var m *migrate.Migrate
	switch driverName {
	case MySQL:
		target, err := migratemysql.WithInstance(db, &migratemysql.Config{})
		if err != nil {
			return errors.Wrap(err, "prepare mysql migrations")
		}
		m, err = migrate.NewWithInstance("iofs", src, MySQL, target)
		if err != nil {
			return errors.Wrap(err, "create migrator")
		}
	case SQLite:
		target, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			return errors.Wrap(err, "prepare sqlite migrations")
		}
		m, err = migrate.NewWithInstance("iofs", src, SQLite, target)
		if err != nil {
			return errors.Wrap(err, "create migrator")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", driverName)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "apply migrations")
	}
	version, dirty, _ := m.Version()
	log.WithFields(log.Fields{"version": version, "dirty": dirty}).Info("schema migrated")
	return nil
}

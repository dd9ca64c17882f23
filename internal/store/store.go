// Package store owns the SQLite connection: it opens the database,
// applies the embedded schema migrations, and hands the ready handle to
// the repositories. Nothing else opens or closes the connection.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open opens (creating if necessary) the SQLite database at path and
// configures it for this application. The pool is pinned to a single
// connection: SQLite serializes writes anyway, and a shared connection
// keeps ":memory:" databases coherent.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("while opening database '%s': %w", path, err)
	}
	db.SetMaxOpenConns(1)

	// Foreign keys are off by default in SQLite; the image_tags
	// cascades depend on them.
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("while executing %q: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("while pinging database '%s': %w", path, err)
	}

	log.Debug().Str("path", path).Msg("database opened")
	return db, nil
}

// Migrate brings the schema up to date from the embedded migration
// files. An already up-to-date database is not an error.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("while loading embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("while preparing migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("while preparing migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("while applying migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("while reading schema version: %w", err)
	}
	log.Debug().Uint("version", version).Bool("dirty", dirty).Msg("schema migrated")
	return nil
}

// Package db persists observation datasets and trajectory analysis
// runs in SQLite. It wraps database/sql with the modernc.org/sqlite
// driver; schema lifecycle is handled by golang-migrate over the
// embedded migrations directory.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle for trajectory storage.
type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the SQLite database at path and brings the
// schema up to the latest migration. Use ":memory:" for tests.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// modernc sqlite serializes through a single connection; more than
	// one causes table-lock errors under concurrent writers.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

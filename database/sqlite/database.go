// Package sqlite implements the aimage backend on SQLite using modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/aimage"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB provides SQLite database operations for one images table.
type DB struct {
	db    *sql.DB
	table string
}

// Connect opens a SQLite database. The table name is validated up front.
//
// SQLite allows a single writer, so the pool is limited to one connection.
// This also keeps ":memory:" databases shared across calls.
func Connect(ctx context.Context, dsn, table string) (*DB, error) {
	if err := aimage.ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &DB{db: db, table: table}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *DB) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.table); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.table)
}

// Store returns the image backend for this database.
func (d *DB) Store() *Store {
	return &Store{db: d.db, table: d.table}
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// DropTables removes the images table.
func (d *DB) DropTables(ctx context.Context) error {
	return DropTables(ctx, d.db, d.table)
}

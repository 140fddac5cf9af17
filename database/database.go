package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/aimage"
	"github.com/sagarc03/aimage/database/postgres"
	"github.com/sagarc03/aimage/database/sqlite"
)

// Config holds the configuration for connecting to a SQL image backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string
	// DSN is the data source name (connection string)
	DSN string
	// Table is the name of the images table
	Table string
	// SkipMigrate disables automatic table creation. The schema is still validated.
	SkipMigrate bool
}

// Store is an image backend with a live database connection behind it.
type Store interface {
	aimage.Backend
	Ping(ctx context.Context) error
	Close() error
}

// backend is the shared surface of the sqlite and postgres DB types.
type backend[S aimage.Backend] interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	Store() S
	Close() error
}

type store struct {
	aimage.Backend
	ping  func(ctx context.Context) error
	close func() error
}

func (s *store) Ping(ctx context.Context) error { return s.ping(ctx) }
func (s *store) Close() error                   { return s.close() }

// Connect establishes a connection to the configured database backend,
// runs migrations, validates the schema, and returns a ready Store.
// Close the Store to release the connection.
func Connect(ctx context.Context, cfg Config) (Store, error) {
	table := cfg.Table
	if table == "" {
		table = aimage.DefaultTableName
	}

	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN, table)
		if err != nil {
			return nil, err
		}
		return prepare[*sqlite.Store](ctx, db, cfg.SkipMigrate)
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, table)
		if err != nil {
			return nil, err
		}
		return prepare[*postgres.Store](ctx, db, cfg.SkipMigrate)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func prepare[S aimage.Backend](ctx context.Context, db backend[S], skipMigrate bool) (Store, error) {
	if !skipMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if err := db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &store{Backend: db.Store(), ping: db.Ping, close: db.Close}, nil
}

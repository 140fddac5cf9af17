// Package database connects aimage to SQL backends.
//
// Images are stored as rows holding the raw bytes, keyed by canonical
// identifier. Publishing is a single INSERT ... ON CONFLICT DO NOTHING, so a
// row is either fully visible or absent and an existing image is never
// replaced.
//
// # Supported Backends
//
//   - PostgreSQL: production backend using a pgx connection pool
//   - SQLite: lightweight backend for development and single-node deployments
//
// # Usage
//
//	store, err := database.Connect(ctx, database.Config{
//	    Type:  "sqlite",
//	    DSN:   "aimage.db",
//	    Table: "images",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	service := aimage.NewImageService(store, validator, aimage.ServiceConfig{})
//
// Connect automatically:
//   - Opens the database connection
//   - Runs schema migrations (unless SkipMigrate is set)
//   - Validates the schema
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database

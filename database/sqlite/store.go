package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/sagarc03/aimage"
)

// listPageSize bounds how many identifiers List reads per query.
const listPageSize = 256

// Store implements aimage.Backend on a single SQLite table.
type Store struct {
	db    *sql.DB
	table string
}

// NewStore wraps an open database. The table must already be migrated.
func NewStore(db *sql.DB, table string) (*Store, error) {
	if err := aimage.ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("new store: %w", err)
	}
	return &Store{db: db, table: table}, nil
}

func (s *Store) Exists(ctx context.Context, id aimage.Identifier) (bool, error) {
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ?`, quoteIdentifier(s.table)) //nolint:gosec // G201: table name is validated

	var one int
	err := s.db.QueryRowContext(ctx, query, id.String()).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}

// Publish inserts the row in a single statement. The row becomes visible only
// when the statement commits, and an existing id leaves the table untouched.
func (s *Store) Publish(ctx context.Context, id aimage.Identifier, content []byte) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, content)
		VALUES (?, ?)
		ON CONFLICT (id) DO NOTHING`, quoteIdentifier(s.table))

	res, err := s.db.ExecContext(ctx, query, id.String(), content)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("publish: rows affected: %w", err)
	}
	if n == 0 {
		return aimage.ErrIdentifierCollision
	}
	return nil
}

func (s *Store) Read(ctx context.Context, id aimage.Identifier) ([]byte, error) {
	query := fmt.Sprintf(`SELECT content FROM %s WHERE id = ?`, quoteIdentifier(s.table)) //nolint:gosec // G201: table name is validated

	var content []byte
	err := s.db.QueryRowContext(ctx, query, id.String()).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, aimage.ErrNotFound
		}
		return nil, fmt.Errorf("read: %w", err)
	}
	return content, nil
}

func (s *Store) Remove(ctx context.Context, id aimage.Identifier) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, quoteIdentifier(s.table)) //nolint:gosec // G201: table name is validated

	res, err := s.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove: rows affected: %w", err)
	}
	if n == 0 {
		return aimage.ErrNotFound
	}
	return nil
}

// List pages through ids in key order. Each page is read and closed before
// anything is yielded, so callers may use the store while iterating.
func (s *Store) List(ctx context.Context) iter.Seq2[aimage.Identifier, error] {
	return func(yield func(aimage.Identifier, error) bool) {
		after := ""
		for {
			page, err := s.listPage(ctx, after)
			if err != nil {
				yield("", err)
				return
			}

			for _, id := range page {
				if !yield(id, nil) {
					return
				}
			}

			if len(page) < listPageSize {
				return
			}
			after = page[len(page)-1].String()
		}
	}
}

func (s *Store) listPage(ctx context.Context, after string) ([]aimage.Identifier, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id FROM %s WHERE id > ? ORDER BY id LIMIT ?`, quoteIdentifier(s.table))

	rows, err := s.db.QueryContext(ctx, query, after, listPageSize)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	page := make([]aimage.Identifier, 0, listPageSize)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		id, err := aimage.ParseIdentifier(raw)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		page = append(page, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows error: %w", err)
	}
	return page, nil
}

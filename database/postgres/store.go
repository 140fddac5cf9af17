package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/aimage"
)

const listPageSize = 256

// Store implements aimage.Backend on a single PostgreSQL table.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// NewStore wraps an open pool. The table must already be migrated.
func NewStore(pool *pgxpool.Pool, table string) (*Store, error) {
	if err := aimage.ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("new store: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

func (s *Store) quotedTable() string {
	return pgx.Identifier{s.table}.Sanitize()
}

func (s *Store) Exists(ctx context.Context, id aimage.Identifier) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, s.quotedTable())

	var exists bool
	if err := s.pool.QueryRow(ctx, query, id.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return exists, nil
}

// Publish inserts the row in one statement; ON CONFLICT leaves an existing
// row untouched and reports zero affected rows.
func (s *Store) Publish(ctx context.Context, id aimage.Identifier, content []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, content)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, s.quotedTable())

	tag, err := s.pool.Exec(ctx, query, id.String(), content)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return aimage.ErrIdentifierCollision
	}
	return nil
}

func (s *Store) Read(ctx context.Context, id aimage.Identifier) ([]byte, error) {
	query := fmt.Sprintf(`SELECT content FROM %s WHERE id = $1`, s.quotedTable())

	var content []byte
	err := s.pool.QueryRow(ctx, query, id.String()).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, aimage.ErrNotFound
		}
		return nil, fmt.Errorf("read: %w", err)
	}
	return content, nil
}

func (s *Store) Remove(ctx context.Context, id aimage.Identifier) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.quotedTable())

	tag, err := s.pool.Exec(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return aimage.ErrNotFound
	}
	return nil
}

// List pages through ids with keyset pagination. No connection is held
// between pages.
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
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id > $1 ORDER BY id LIMIT $2`, s.quotedTable())

	rows, err := s.pool.Query(ctx, query, after, listPageSize)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	raw, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	page := make([]aimage.Identifier, 0, len(raw))
	for _, r := range raw {
		id, err := aimage.ParseIdentifier(r)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		page = append(page, id)
	}
	return page, nil
}

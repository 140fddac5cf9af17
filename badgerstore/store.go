// Package badgerstore provides an embedded key-value backend for aimage built
// on BadgerDB. Each image is a single value under the key "image/<ID>".
package badgerstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"
	"github.com/sagarc03/aimage"
)

var keyPrefix = []byte("image/")

// Store is a Backend backed by a BadgerDB instance.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a BadgerDB database in dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("open badger store: directory cannot be empty")
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	return open(opts)
}

// OpenInMemory opens a database that lives only in memory.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func imageKey(id aimage.Identifier) []byte {
	return append(bytes.Clone(keyPrefix), id...)
}

func (s *Store) Exists(ctx context.Context, id aimage.Identifier) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(imageKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return exists, nil
}

// Publish checks and sets the key in one transaction. Badger's optimistic
// concurrency rejects the later of two racing commits with ErrConflict, which
// is reported as a collision.
func (s *Store) Publish(ctx context.Context, id aimage.Identifier, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := imageKey(id)
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return aimage.ErrIdentifierCollision
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, bytes.Clone(content))
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, aimage.ErrIdentifierCollision), errors.Is(err, badger.ErrConflict):
		return aimage.ErrIdentifierCollision
	default:
		return fmt.Errorf("publish: %w", err)
	}
}

func (s *Store) Read(ctx context.Context, id aimage.Identifier) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var content []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(imageKey(id))
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, aimage.ErrNotFound
		}
		return nil, fmt.Errorf("read: %w", err)
	}
	return content, nil
}

func (s *Store) Remove(ctx context.Context, id aimage.Identifier) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := imageKey(id)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return aimage.ErrNotFound
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// List iterates keys only. Each iteration runs in its own read transaction
// and observes a consistent snapshot.
func (s *Store) List(ctx context.Context) iter.Seq2[aimage.Identifier, error] {
	return func(yield func(aimage.Identifier, error) bool) {
		if err := ctx.Err(); err != nil {
			yield("", err)
			return
		}

		stopped := false
		err := s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = keyPrefix

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}

				key := it.Item().Key()
				id, err := aimage.ParseIdentifier(string(key[len(keyPrefix):]))
				if err != nil {
					continue
				}

				if !yield(id, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", fmt.Errorf("list: %w", err))
		}
	}
}

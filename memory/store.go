// Package memory provides an in-memory backend for aimage, intended for tests
// and ephemeral deployments.
package memory

import (
	"bytes"
	"context"
	"iter"
	"sync"

	"github.com/sagarc03/aimage"
)

// Store keeps images in a map guarded by a RWMutex.
type Store struct {
	mu     sync.RWMutex
	images map[aimage.Identifier][]byte
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{images: make(map[aimage.Identifier][]byte)}
}

func (s *Store) Exists(ctx context.Context, id aimage.Identifier) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.images[id]
	return ok, nil
}

// Publish stores a copy of content. Check and insert happen under one lock.
func (s *Store) Publish(ctx context.Context, id aimage.Identifier, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[id]; ok {
		return aimage.ErrIdentifierCollision
	}
	s.images[id] = bytes.Clone(content)
	return nil
}

func (s *Store) Read(ctx context.Context, id aimage.Identifier) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.images[id]
	if !ok {
		return nil, aimage.ErrNotFound
	}
	return bytes.Clone(content), nil
}

func (s *Store) Remove(ctx context.Context, id aimage.Identifier) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[id]; !ok {
		return aimage.ErrNotFound
	}
	delete(s.images, id)
	return nil
}

// List snapshots the keys when iteration starts.
func (s *Store) List(ctx context.Context) iter.Seq2[aimage.Identifier, error] {
	return func(yield func(aimage.Identifier, error) bool) {
		if err := ctx.Err(); err != nil {
			yield("", err)
			return
		}

		s.mu.RLock()
		ids := make([]aimage.Identifier, 0, len(s.images))
		for id := range s.images {
			ids = append(ids, id)
		}
		s.mu.RUnlock()

		for _, id := range ids {
			if !yield(id, nil) {
				return
			}
		}
	}
}

// Len returns the number of stored images.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// Package filesystem provides a flat-directory storage backend for aimage.
// Each image is one file named <ID>.<ext>. Writes go to a hidden temp file
// and are published with a hard link, so readers never see partial files and
// an existing image is never overwritten.
package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/aimage"
)

// DefaultExtension is the storage extension used when none is configured.
const DefaultExtension = "png"

const listBatchSize = 128

// Store provides file system storage operations rooted at a single directory.
// The directory is created lazily by every operation.
type Store struct {
	dir string
	ext string
}

// NewFileStorage creates a Store for dir. ext is the canonical storage
// extension, independent of the media type declared on upload.
func NewFileStorage(dir, ext string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("new file storage: directory cannot be empty")
	}

	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = DefaultExtension
	}
	if strings.ContainsAny(ext, `/\.`) {
		return nil, fmt.Errorf("new file storage: invalid extension %q", ext)
	}

	return &Store{dir: dir, ext: ext}, nil
}

// Extension returns the canonical storage extension without the dot.
func (s *Store) Extension() string {
	return s.ext
}

// openRoot ensures the directory exists and opens it as a sandboxed root.
func (s *Store) openRoot() (*os.Root, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(s.dir)
	if err != nil {
		return nil, fmt.Errorf("open storage root: %w", err)
	}
	return root, nil
}

func closeRoot(root *os.Root) {
	if err := root.Close(); err != nil {
		slog.Warn("failed to close storage root", "err", err)
	}
}

func (s *Store) fileName(id aimage.Identifier) string {
	return id.String() + "." + s.ext
}

func (s *Store) Exists(ctx context.Context, id aimage.Identifier) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	root, err := s.openRoot()
	if err != nil {
		return false, err
	}
	defer closeRoot(root)

	info, err := root.Stat(s.fileName(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat file: %w", err)
	}

	return info.Mode().IsRegular(), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Publish writes content to a temp file, syncs it, then hard-links it to the
// final name. The link fails if the name is taken, which is reported as
// aimage.ErrIdentifierCollision. The temp file is always removed.
func (s *Store) Publish(ctx context.Context, id aimage.Identifier, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	root, err := s.openRoot()
	if err != nil {
		return err
	}
	defer closeRoot(root)

	tmpFile := tmpFileName()
	t, err := root.OpenFile(tmpFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return fmt.Errorf("could not open temp file: %w", err)
	}

	defer func() {
		if rmErr := root.Remove(tmpFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("failed to remove tmp file", "err", rmErr)
		}
	}()

	if err := writeAndSync(ctx, t, content); err != nil {
		return err
	}

	if err := root.Link(tmpFile, s.fileName(id)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return aimage.ErrIdentifierCollision
		}
		return fmt.Errorf("failed to publish file: %w", err)
	}

	return nil
}

func writeAndSync(ctx context.Context, f *os.File, content []byte) error {
	_, copyErr := io.Copy(f, &ctxReader{ctx: ctx, r: bytes.NewReader(content)})
	if copyErr != nil {
		_ = f.Close()
		return fmt.Errorf("could not copy file contents: %w", copyErr)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not sync written file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close written file: %w", err)
	}
	return nil
}

// Read returns the file contents. Returns aimage.ErrNotFound if the file does not exist.
func (s *Store) Read(ctx context.Context, id aimage.Identifier) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := s.openRoot()
	if err != nil {
		return nil, err
	}
	defer closeRoot(root)

	content, err := root.ReadFile(s.fileName(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, aimage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return content, nil
}

// Remove deletes a file. Returns aimage.ErrNotFound if the file does not exist.
// A missing storage directory is recreated and reported as not found.
func (s *Store) Remove(ctx context.Context, id aimage.Identifier) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	root, err := s.openRoot()
	if err != nil {
		return err
	}
	defer closeRoot(root)

	if err := root.Remove(s.fileName(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return aimage.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List streams the directory in batches and yields every file named
// <canonical ID>.<ext>. Temp files, directories and foreign files are skipped.
func (s *Store) List(ctx context.Context) iter.Seq2[aimage.Identifier, error] {
	return func(yield func(aimage.Identifier, error) bool) {
		if err := ctx.Err(); err != nil {
			yield("", err)
			return
		}

		root, err := s.openRoot()
		if err != nil {
			yield("", err)
			return
		}
		defer closeRoot(root)

		dir, err := root.Open(".")
		if err != nil {
			yield("", fmt.Errorf("open storage directory: %w", err))
			return
		}
		defer func() {
			if closeErr := dir.Close(); closeErr != nil {
				slog.Warn("failed to close storage directory", "err", closeErr)
			}
		}()

		suffix := "." + s.ext
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}

			entries, readErr := dir.ReadDir(listBatchSize)
			for _, entry := range entries {
				if !entry.Type().IsRegular() {
					continue
				}

				base, ok := strings.CutSuffix(entry.Name(), suffix)
				if !ok {
					continue
				}

				id, parseErr := aimage.ParseIdentifier(base)
				if parseErr != nil || id.String() != base {
					continue
				}

				if !yield(id, nil) {
					return
				}
			}

			if readErr != nil {
				if !errors.Is(readErr, io.EOF) {
					yield("", fmt.Errorf("read storage directory: %w", readErr))
				}
				return
			}
		}
	}
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}

package aimage

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
)

// Backend defines the storage medium behind an ImageService.
// Implementations can use a local directory, an embedded key-value store,
// a SQL database, or memory.
//
// All methods receive canonical identifiers. Implementations must be safe for
// concurrent use and must never expose a partially written image to readers.
type Backend interface {
	// Exists reports whether an image is stored under id.
	Exists(ctx context.Context, id Identifier) (bool, error)

	// Publish stores content under id atomically relative to readers.
	//
	// Returns:
	//   - ErrIdentifierCollision if an image already exists under id at publish time
	//
	// Publish must never overwrite an existing image.
	Publish(ctx context.Context, id Identifier, content []byte) error

	// Read returns the stored bytes.
	//
	// Returns:
	//   - ErrNotFound if nothing is stored under id
	Read(ctx context.Context, id Identifier) ([]byte, error)

	// Remove deletes the stored bytes.
	//
	// Returns:
	//   - ErrNotFound if nothing is stored under id
	Remove(ctx context.Context, id Identifier) error

	// List returns a lazy sequence of every stored identifier. The sequence may
	// be iterated more than once; each iteration reflects the current contents.
	// Order is unspecified.
	List(ctx context.Context) iter.Seq2[Identifier, error]
}

// ServiceConfig holds configuration options for ImageService.
type ServiceConfig struct {
	// Generator produces identifiers for new images (default: NewIdentifier).
	Generator IdentifierGenerator
	// CollisionRetries is how many fresh identifiers Create tries after a
	// collision. Zero fails the first collision with ErrIdentifierCollision.
	CollisionRetries int
	// VerifyContent additionally sniffs payloads and rejects those whose real
	// type is not an allowed image type.
	VerifyContent bool
	// Logger receives integrity faults (default: slog.Default()).
	Logger *slog.Logger
}

// ImageService maps identifiers to stored images.
type ImageService struct {
	backend       Backend
	validator     *MediaTypeValidator
	generate      IdentifierGenerator
	retries       int
	verifyContent bool
	logger        *slog.Logger
}

func NewImageService(backend Backend, validator *MediaTypeValidator, cfg ServiceConfig) *ImageService {
	generate := cfg.Generator
	if generate == nil {
		generate = NewIdentifier
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageService{
		backend:       backend,
		validator:     validator,
		generate:      generate,
		retries:       max(0, cfg.CollisionRetries),
		verifyContent: cfg.VerifyContent,
		logger:        logger,
	}
}

// Create stores a new image and returns its generated identifier.
//
// The method performs the following steps:
//  1. Rejects empty payloads with ErrEmptyPayload
//  2. Rejects media types outside the allow-set with ErrUnsupportedMediaType
//  3. Generates an identifier and checks it is free
//  4. Publishes the payload atomically; the backend re-checks the identifier
//     immediately before the publish step
//
// With the default configuration a taken identifier fails with
// ErrIdentifierCollision. When CollisionRetries is positive, up to that many
// fresh identifiers are tried before giving up with the same error.
func (s *ImageService) Create(ctx context.Context, payload []byte, mediaType string) (Identifier, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}

	if len(payload) == 0 {
		return "", fmt.Errorf("create image: %w", ErrEmptyPayload)
	}

	if !s.validator.IsAllowed(mediaType) {
		return "", fmt.Errorf("create image: %w: %q", ErrUnsupportedMediaType, mediaType)
	}

	if s.verifyContent && !s.validator.MatchesContent(payload) {
		return "", fmt.Errorf("create image: %w: content does not match an allowed image type", ErrUnsupportedMediaType)
	}

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		id := s.generate()

		err := s.publish(ctx, id, payload)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrIdentifierCollision) {
			return "", fmt.Errorf("create image %s: %w", id, err)
		}

		s.logger.Warn("identifier collision", "id", id, "attempt", attempt+1)
		lastErr = err
	}

	return "", fmt.Errorf("create image: %w", lastErr)
}

func (s *ImageService) publish(ctx context.Context, id Identifier, payload []byte) error {
	exists, err := s.backend.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check existing: %w", err)
	}
	if exists {
		return ErrIdentifierCollision
	}

	if err := s.backend.Publish(ctx, id, payload); err != nil {
		return err
	}
	return nil
}

// Read returns the bytes stored under id. id may be in any surface syntax.
func (s *ImageService) Read(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	canonical, err := lookupIdentifier(id)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	content, err := s.backend.Read(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", canonical, err)
	}

	return content, nil
}

// Stat checks that an image exists and returns its canonical identifier.
func (s *ImageService) Stat(ctx context.Context, id string) (Identifier, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}

	canonical, err := lookupIdentifier(id)
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}

	exists, err := s.backend.Exists(ctx, canonical)
	if err != nil {
		return "", fmt.Errorf("stat image %s: %w", canonical, err)
	}
	if !exists {
		return "", fmt.Errorf("stat image %s: %w", canonical, ErrNotFound)
	}

	return canonical, nil
}

// Delete removes the image stored under id.
//
// Returns ErrNotFound if the image does not exist and ErrDeleteFailed if the
// backend still reports the image after removal.
func (s *ImageService) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	canonical, err := lookupIdentifier(id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	if err := s.backend.Remove(ctx, canonical); err != nil {
		return fmt.Errorf("delete image %s: %w", canonical, err)
	}

	stillThere, err := s.backend.Exists(ctx, canonical)
	if err != nil {
		return fmt.Errorf("delete image %s: verify removal: %w", canonical, err)
	}
	if stillThere {
		s.logger.Error("image still present after removal", "id", canonical)
		return fmt.Errorf("delete image %s: %w", canonical, ErrDeleteFailed)
	}

	return nil
}

// List returns a lazy sequence of every stored identifier.
func (s *ImageService) List(ctx context.Context) iter.Seq2[Identifier, error] {
	return s.backend.List(ctx)
}

// Collect drains List into a slice. The result is empty, not nil, for an empty store.
func (s *ImageService) Collect(ctx context.Context) ([]Identifier, error) {
	ids := []Identifier{}
	for id, err := range s.backend.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list images: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// lookupIdentifier normalizes id. Malformed identifiers cannot name a stored
// image, so they are reported as ErrNotFound.
func lookupIdentifier(id string) (Identifier, error) {
	canonical, err := ParseIdentifier(id)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return canonical, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"

	"github.com/sagarc03/aimage"
	"github.com/sagarc03/aimage/badgerstore"
	"github.com/sagarc03/aimage/config"
	"github.com/sagarc03/aimage/database"
	"github.com/sagarc03/aimage/filesystem"
	"github.com/sagarc03/aimage/memory"
)

// openBackend builds the configured storage backend. The returned close
// function releases whatever the backend holds open.
func openBackend(ctx context.Context, cfg config.StorageConfig) (aimage.Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "filesystem":
		store, err := filesystem.NewFileStorage(cfg.Path, cfg.Extension)
		if err != nil {
			return nil, nil, fmt.Errorf("open filesystem storage: %w", err)
		}
		return store, noop, nil

	case "memory":
		slog.Warn("memory backend selected, images are lost on exit")
		return memory.NewStore(), noop, nil

	case "badger":
		store, err := badgerstore.Open(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger storage: %w", err)
		}
		return store, store.Close, nil

	case "sqlite", "postgres":
		if cfg.Backend == "sqlite" && cfg.DSN == "" {
			if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
				return nil, nil, fmt.Errorf("create storage directory: %w", err)
			}
		}

		store, err := database.Connect(ctx, database.Config{
			Type:  cfg.Backend,
			DSN:   cfg.DatabaseDSN(),
			Table: cfg.Table,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}

		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// newService wires the configured backend into an ImageService.
func newService(ctx context.Context, cfg *config.Config) (*aimage.ImageService, func() error, error) {
	validator, err := aimage.NewMediaTypeValidator(cfg.Images.AllowedTypes)
	if err != nil {
		return nil, nil, fmt.Errorf("create validator: %w", err)
	}

	backend, closeBackend, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	service := aimage.NewImageService(backend, validator, aimage.ServiceConfig{
		CollisionRetries: cfg.Images.CollisionRetries,
		VerifyContent:    cfg.Images.VerifyContent,
	})

	slog.Debug("storage ready", "backend", cfg.Storage.Backend, "allowed_types", validator.Subtypes())
	return service, closeBackend, nil
}

// contentTypeFor maps a storage extension to the Content-Type served for images.
func contentTypeFor(ext string) string {
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	return "image/" + ext
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/sagarc03/aimage"
	"github.com/sagarc03/aimage/config"
)

var copyCmd = &cobra.Command{
	Use:   "copy --to-backend <backend> [flags]",
	Short: "Copy every stored image into another backend",
	Long: `Copy images from the configured backend into a second backend, keeping
their identifiers. Images whose identifier already exists in the target are
skipped, never overwritten.

Examples:
  # Move a filesystem store into sqlite
  aimage copy --to-backend sqlite --to-dsn ./images.db

  # Copy from postgres into a badger directory
  aimage copy --backend postgres --dsn postgres://... --to-backend badger --to-path ./badger`,
	Args: cobra.NoArgs,
	RunE: runCopy,
}

var (
	copyToBackend string
	copyToPath    string
	copyToDSN     string
	copyToTable   string
)

func init() {
	copyCmd.Flags().StringVar(&copyToBackend, "to-backend", "", "target backend: filesystem, sqlite, postgres, badger")
	copyCmd.Flags().StringVar(&copyToPath, "to-path", "", "target storage path (default: source path)")
	copyCmd.Flags().StringVar(&copyToDSN, "to-dsn", "", "target database connection string")
	copyCmd.Flags().StringVar(&copyToTable, "to-table", "", "target database table (default: source table)")
	_ = copyCmd.MarkFlagRequired("to-backend")
	rootCmd.AddCommand(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	target := cfg.Storage
	target.Backend = copyToBackend
	target.DSN = copyToDSN
	if copyToPath != "" {
		target.Path = copyToPath
	}
	if copyToTable != "" {
		target.Table = copyToTable
	}

	if err := validator.New().Struct(target); err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}
	if target == cfg.Storage {
		return errors.New("target backend is the same as the source")
	}

	ctx := cmd.Context()

	src, closeSrc, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() { _ = closeSrc() }()

	dst, closeDst, err := openBackend(ctx, target)
	if err != nil {
		return err
	}
	defer func() { _ = closeDst() }()

	copied, skipped, err := copyImages(ctx, src, dst)
	slog.Info("copy complete", "from", cfg.Storage.Backend, "to", target.Backend, "copied", copied, "skipped", skipped)
	return err
}

func copyImages(ctx context.Context, src, dst aimage.Backend) (copied, skipped int, err error) {
	for id, listErr := range src.List(ctx) {
		if listErr != nil {
			return copied, skipped, fmt.Errorf("list source: %w", listErr)
		}

		content, readErr := src.Read(ctx, id)
		if errors.Is(readErr, aimage.ErrNotFound) {
			// Deleted since it was listed.
			continue
		}
		if readErr != nil {
			return copied, skipped, fmt.Errorf("read %s: %w", id, readErr)
		}

		pubErr := dst.Publish(ctx, id, content)
		if errors.Is(pubErr, aimage.ErrIdentifierCollision) {
			skipped++
			slog.Debug("skipped (exists)", "id", id)
			continue
		}
		if pubErr != nil {
			return copied, skipped, fmt.Errorf("publish %s: %w", id, pubErr)
		}

		copied++
		slog.Debug("copied", "id", id, "size", len(content))
	}

	return copied, skipped, nil
}

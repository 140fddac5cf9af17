package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/aimage"
	"github.com/sagarc03/aimage/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove [flags] <id1> [id2] ...",
	Short: "Remove images from storage",
	Long: `Delete stored images by identifier.

Identifiers are accepted in any case, with or without hyphens.

Examples:
  # Remove a single image
  aimage remove A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D

  # Remove quietly
  aimage remove -q a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var removeQuiet bool

func init() {
	removeCmd.Flags().BoolVarP(&removeQuiet, "quiet", "q", false, "suppress per-image output")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	service, closeBackend, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeBackend() }()

	removed := 0
	notFound := 0

	for _, id := range args {
		deleteErr := service.Delete(ctx, id)
		if errors.Is(deleteErr, aimage.ErrNotFound) {
			notFound++
			if !removeQuiet {
				slog.Warn("not found", "id", id)
			}
			continue
		}
		if deleteErr != nil {
			return fmt.Errorf("remove %s: %w", id, deleteErr)
		}

		removed++
		if !removeQuiet {
			slog.Info("removed", "id", id)
		}
	}

	slog.Info("remove complete", "removed", removed, "not_found", notFound)
	return nil
}

package main

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagarc03/aimage/config"
)

var importCmd = &cobra.Command{
	Use:   "import [flags] <file1> [file2] ...",
	Short: "Import local image files into storage",
	Long: `Store local image files through the same validation the server applies.

The media type is taken from each file's extension unless --content-type is
given. Each generated identifier is printed on its own line.

Examples:
  # Import a single image
  aimage import ./cat.png

  # Import several images into the badger backend
  aimage import --backend badger --storage-path ./data *.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var (
	importContentType string
	importQuiet       bool
)

func init() {
	importCmd.Flags().StringVarP(&importContentType, "content-type", "t", "", "media type for every file (default: from extension)")
	importCmd.Flags().BoolVarP(&importQuiet, "quiet", "q", false, "suppress per-file log output")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
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

	imported := 0
	for _, path := range args {
		content, readErr := os.ReadFile(path) //#nosec G304 -- path is user-provided input
		if readErr != nil {
			return fmt.Errorf("read %s: %w", path, readErr)
		}

		mediaType := importContentType
		if mediaType == "" {
			mediaType = mediaTypeFromExtension(path)
		}

		id, createErr := service.Create(ctx, content, mediaType)
		if createErr != nil {
			return fmt.Errorf("import %s: %w", path, createErr)
		}

		imported++
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
		if !importQuiet {
			slog.Info("imported", "path", path, "id", id, "media_type", mediaType, "size", len(content))
		}
	}

	slog.Info("import complete", "imported", imported)
	return nil
}

// mediaTypeFromExtension determines the media type from a file's extension.
func mediaTypeFromExtension(path string) string {
	if mediaType := mime.TypeByExtension(filepath.Ext(path)); mediaType != "" {
		return mediaType
	}
	return "application/octet-stream"
}

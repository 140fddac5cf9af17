package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/aimage/clientcli"
)

var (
	downloadOutput string
	downloadStdout bool
	downloadRaw    bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <id> [local-path]",
	Short: "Download an image from the server",
	Long: `Download an image by identifier.

Without a local path the image is saved as <id>.<ext> in the current
directory, with the extension taken from the served Content-Type.

Examples:
  aimage-cli download A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D
  aimage-cli download A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D ./cat.png
  aimage-cli download --stdout A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D | display`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
	downloadCmd.Flags().BoolVar(&downloadRaw, "raw", false, "fetch from /images/{id}/data")
}

func runDownload(cmd *cobra.Command, args []string) error {
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(commandContext(cmd), clientcli.DownloadOptions{
		ID:        args[0],
		LocalPath: localPath,
		Raw:       downloadRaw,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		// Metadata goes to stderr so stdout stays pure image bytes
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}

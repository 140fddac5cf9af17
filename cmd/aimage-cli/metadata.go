package main

import (
	"os"

	"github.com/spf13/cobra"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata <id>",
	Short: "Check that an image exists",
	Long: `Ask the server for an image's metadata. The server answers with the
canonical identifier, or 404 when nothing is stored under it.

Examples:
  aimage-cli metadata a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d`,
	Args: cobra.ExactArgs(1),
	RunE: runMetadata,
}

func runMetadata(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Metadata(commandContext(cmd), args[0])
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatMetadata(os.Stdout, result)
}

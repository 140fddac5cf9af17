package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/aimage/clientcli"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id> [id...]",
	Short: "Delete images from the server",
	Long: `Delete one or more images by identifier.

Examples:
  aimage-cli delete A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D
  aimage-cli list -q | xargs aimage-cli delete -q`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(commandContext(cmd), clientcli.DeleteOptions{IDs: args})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}

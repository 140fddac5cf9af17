package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/aimage/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored image identifiers",
	Long: `Print every stored identifier, one per line, in no particular order.

Identifiers are streamed from the backend so large stores print
incrementally.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listCount bool

func init() {
	listCmd.Flags().BoolVarP(&listCount, "count", "c", false, "print only the number of stored images")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	total := 0
	for id, listErr := range service.List(ctx) {
		if listErr != nil {
			return fmt.Errorf("list images: %w", listErr)
		}
		total++
		if !listCount {
			_, _ = fmt.Fprintln(out, id)
		}
	}

	if listCount {
		_, _ = fmt.Fprintln(out, total)
	}
	return nil
}

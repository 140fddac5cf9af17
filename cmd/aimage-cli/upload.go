package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/aimage/clientcli"
)

var uploadContentType string

var uploadCmd = &cobra.Command{
	Use:   "upload <file> [file...]",
	Short: "Upload images to the server",
	Long: `Upload one or more image files. Each upload gets a new identifier.

The Content-Type is sniffed from the file content, falling back to the
extension, unless --content-type is given.

Examples:
  aimage-cli upload ./cat.png
  aimage-cli upload -q *.jpg > ids.txt
  aimage-cli upload --content-type image/jpeg ./photo`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Upload(commandContext(cmd), clientcli.UploadOptions{
		Paths:       args,
		ContentType: uploadContentType,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}

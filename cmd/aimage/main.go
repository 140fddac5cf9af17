package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/aimage/config"
)

var version = "dev"

// skipConfigAnnotation marks commands that run without a loaded config.
const skipConfigAnnotation = "aimage/skip-config"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "aimage",
	Short:   "Image store with HTTP Basic authentication",
	Long: `aimage stores uploaded images under generated identifiers and serves
them back over a small REST API. Images can live on the local filesystem,
in an embedded badger store, in sqlite or postgres, or in memory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfigAnnotation] == "true" {
			setupLogging(config.LogConfig{Level: "info", Format: "text"})
			return nil
		}

		configFiles, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path(s), merged left to right (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "storage backend: filesystem, sqlite, postgres, badger, memory (env: AIMAGE_STORAGE_BACKEND)")
	rootCmd.PersistentFlags().String("storage-path", "", "storage directory path (default: ./uploads, env: AIMAGE_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("dsn", "", "database connection string for sqlite/postgres (env: AIMAGE_STORAGE_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: AIMAGE_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text, json (env: AIMAGE_LOG_FORMAT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

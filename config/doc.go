// Package config provides configuration loading and validation for aimage.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (AIMAGE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with AIMAGE_ prefix:
//   - server.port → AIMAGE_SERVER_PORT
//   - storage.backend → AIMAGE_STORAGE_BACKEND
//   - auth.password → AIMAGE_AUTH_PASSWORD
//   - images.allowed_types → AIMAGE_IMAGES_ALLOWED_TYPES (comma separated)
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port, max_upload_size and the metrics toggle
//   - Storage: backend (filesystem, sqlite, postgres, badger, memory), path, extension, DSN and table
//   - Images: accepted media subtypes, content sniffing and collision retries
//   - Auth: the Basic credential pair and realm
//   - CORS: cross-origin resource sharing settings
//   - Log: level and format
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Backend must be one of the supported backends
//   - Postgres requires a DSN
//   - Auth username and password are required; there are no default credentials
//   - Log level must be debug, info, warn, or error
package config

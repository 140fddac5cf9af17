package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/aimage"
	aimagehttp "github.com/sagarc03/aimage/http"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "AIMAGE"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for aimage.
type Config struct {
	Server  ServerConfig          `mapstructure:"server"`
	Storage StorageConfig         `mapstructure:"storage"`
	Images  ImagesConfig          `mapstructure:"images"`
	Auth    AuthConfig            `mapstructure:"auth"`
	CORS    aimagehttp.CORSConfig `mapstructure:"cors"`
	Log     LogConfig             `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize int64 `mapstructure:"max_upload_size" validate:"min=0"`
	Metrics       bool  `mapstructure:"metrics"`
}

// StorageConfig selects and configures the image backend.
type StorageConfig struct {
	Backend   string `mapstructure:"backend" validate:"required,oneof=filesystem sqlite postgres badger memory"`
	Path      string `mapstructure:"path" validate:"required"`
	Extension string `mapstructure:"extension" validate:"required,alphanum"`
	DSN       string `mapstructure:"dsn" validate:"required_if=Backend postgres"`
	Table     string `mapstructure:"table" validate:"required,max=63"`
}

// DatabaseDSN returns the configured DSN. For sqlite without a DSN the
// database file lives in the storage path.
func (s StorageConfig) DatabaseDSN() string {
	if s.DSN == "" && s.Backend == "sqlite" {
		return filepath.Join(s.Path, "aimage.db")
	}
	return s.DSN
}

// ImagesConfig controls upload validation.
type ImagesConfig struct {
	AllowedTypes     []string `mapstructure:"allowed_types" validate:"min=1,dive,required"`
	VerifyContent    bool     `mapstructure:"verify_content"`
	CollisionRetries int      `mapstructure:"collision_retries" validate:"min=0,max=10"`
}

// AuthConfig holds the single credential pair for HTTP Basic authentication.
// Password may be plain text or a bcrypt hash.
type AuthConfig struct {
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Realm    string `mapstructure:"realm" validate:"required"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":         "server.port",
	"backend":      "storage.backend",
	"storage-path": "storage.path",
	"dsn":          "storage.dsn",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
// Keys without a meaningful default are still registered so that
// AutomaticEnv can fill them during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.max_upload_size", 0) // 0 means no limit
	v.SetDefault("server.metrics", false)

	v.SetDefault("storage.backend", "filesystem")
	v.SetDefault("storage.path", "./uploads")
	v.SetDefault("storage.extension", "png")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.table", aimage.DefaultTableName)

	v.SetDefault("images.allowed_types", aimage.DefaultAllowedSubtypes)
	v.SetDefault("images.verify_content", false)
	v.SetDefault("images.collision_retries", 0)

	v.SetDefault("auth.username", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.realm", "aimage")

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type"})
	v.SetDefault("cors.exposed_headers", []string{"Location"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := aimage.ValidateTableName(cfg.Storage.Table); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

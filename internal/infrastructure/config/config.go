// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for inventario configuration.
	DefaultConfigDir = ".inventario"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDataDir is where the JSON documents live, relative to the base path.
	DefaultDataDir = "datos"
	// DefaultSQLiteFile is the database file name inside the data directory.
	DefaultSQLiteFile = "inventario.db"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds static configuration (read-only after load).
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	RecycleBin RecycleBinConfig `yaml:"recycle_bin"`
	Log        LogConfig        `yaml:"log"`
}

// StorageConfig selects and locates the document store.
type StorageConfig struct {
	Backend    string `yaml:"backend" env:"INVENTARIO_STORAGE" validate:"required,oneof=json sqlite"`
	DataDir    string `yaml:"data_dir" env:"INVENTARIO_DATA_DIR" validate:"required"`
	SQLitePath string `yaml:"sqlite_path,omitempty" env:"INVENTARIO_SQLITE_PATH"`
}

// RecycleBinConfig holds recycle bin settings.
type RecycleBinConfig struct {
	TTLDays int `yaml:"ttl_days" env:"INVENTARIO_BIN_TTL_DAYS" validate:"min=1,max=3650"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" env:"INVENTARIO_LOG_LEVEL" validate:"required,oneof=debug info warn error"`
	Format string `yaml:"format" env:"INVENTARIO_LOG_FORMAT" validate:"required,oneof=text json"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendJSON,
			DataDir: DefaultDataDir,
		},
		RecycleBin: RecycleBinConfig{
			TTLDays: 30,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: LogFormatText,
		},
	}
}

// Load reads .inventario/config.yaml under basePath on top of the defaults,
// applies environment overrides and validates the result. A missing config
// file is not an error. Relative paths are resolved against basePath.
func Load(basePath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ConfigFilePath(basePath))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Apply environment variable overrides
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Resolve(basePath)

	return cfg, nil
}

func (c *Config) normalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s %s", fe.Namespace(), validationMessage(fe)))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return "is invalid"
	}
}

// Resolve makes the data directory and SQLite path absolute against basePath
// and fills in the default SQLite path.
func (c *Config) Resolve(basePath string) {
	if !filepath.IsAbs(c.Storage.DataDir) {
		c.Storage.DataDir = filepath.Join(basePath, c.Storage.DataDir)
	}
	switch {
	case c.Storage.SQLitePath == "":
		c.Storage.SQLitePath = filepath.Join(c.Storage.DataDir, DefaultSQLiteFile)
	case c.Storage.SQLitePath != ":memory:" && !filepath.IsAbs(c.Storage.SQLitePath):
		c.Storage.SQLitePath = filepath.Join(basePath, c.Storage.SQLitePath)
	}
}

// BinTTL returns how long deleted records stay restorable.
func (c *Config) BinTTL() time.Duration {
	return time.Duration(c.RecycleBin.TTLDays) * 24 * time.Hour
}

// SlogLevel returns the configured log level.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// ConfigDir returns the path to the .inventario config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if an inventario config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/artpar/stackgen/internal/core/props"
	"github.com/artpar/stackgen/internal/generators"
	"github.com/artpar/stackgen/internal/shell/store"
	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Project ProjectConfig `mapstructure:"project"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Journal JournalConfig `mapstructure:"journal"`
	Server  ServerConfig  `mapstructure:"server"`
	Welcome WelcomeConfig `mapstructure:"welcome"`
	Compose ComposeConfig `mapstructure:"compose"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProjectConfig selects the generated project.
type ProjectConfig struct {
	Dir string `mapstructure:"dir"`
}

// CatalogConfig selects the generator catalog. An empty Dir uses the
// embedded catalog.
type CatalogConfig struct {
	Dir string `mapstructure:"dir"`
}

// JournalConfig holds apply journal configuration.
type JournalConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// DSN defaults to <project>/.openshiftio/history.db.
	DSN string `mapstructure:"dsn"`
}

// ServerConfig holds HTTP server configuration for serve.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WelcomeConfig configures the welcome application image.
type WelcomeConfig struct {
	ImageName string `mapstructure:"image_name"`
	ImageTag  string `mapstructure:"image_tag"`
}

// ComposeConfig configures the compose export.
type ComposeConfig struct {
	BaseDomain string `mapstructure:"base_domain"`
	EnableTLS  bool   `mapstructure:"enable_tls"`
}

// JournalDSN returns the configured DSN or the default one inside the
// project directory.
func (c *Config) JournalDSN() string {
	if c.Journal.DSN != "" {
		return c.Journal.DSN
	}
	return filepath.Join(c.Project.Dir, store.MetaDir, "history.db")
}

// Settings converts the generator-facing keys into host settings.
func (c *Config) Settings() *props.Properties {
	return props.New().
		SetPath(generators.SettingWelcomeImageName, c.Welcome.ImageName).
		SetPath(generators.SettingWelcomeImageTag, c.Welcome.ImageTag).
		SetPath(generators.SettingComposeBaseDomain, c.Compose.BaseDomain).
		SetPath(generators.SettingComposeEnableTLS, c.Compose.EnableTLS)
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("project.dir", ".")
	v.SetDefault("catalog.dir", "")
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.dsn", "")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8090)
	v.SetDefault("welcome.image_name", generators.DefaultWelcomeImageName)
	v.SetDefault("welcome.image_tag", generators.DefaultWelcomeImageTag)
	v.SetDefault("compose.base_domain", "apps.localhost")
	v.SetDefault("compose.enable_tls", false)

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("STACKGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format writing
// to w.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

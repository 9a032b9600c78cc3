// Package config loads application settings for artifact emission.
//
// Settings come from defaults, an optional atlasmigrate.yaml in the
// working directory, and ATLASMIGRATE_* environment variables, in
// increasing precedence. These are the deployment defaults baked into
// generated artifacts, not migration parameters; those live in the job
// manifest.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AppConfig holds the deployment defaults rendered into artifacts.
type AppConfig struct {
	// Port is the application listen port written to the env file.
	Port int `mapstructure:"port"`

	// NodeEnv is the runtime environment name.
	NodeEnv string `mapstructure:"node_env"`

	// MaxUploadSize is the request body cap (e.g., "50mb").
	MaxUploadSize string `mapstructure:"max_upload_size"`

	// RateLimitWindowMS is the rate-limit window in milliseconds.
	RateLimitWindowMS int `mapstructure:"rate_limit_window_ms"`

	// RateLimitMax is the request cap per window.
	RateLimitMax int `mapstructure:"rate_limit_max"`

	// CORSOrigin is the allowed CORS origin.
	CORSOrigin string `mapstructure:"cors_origin"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level"`
}

// Load reads configuration from defaults, an optional config file, and
// the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("app.port", 3000)
	v.SetDefault("app.node_env", "production")
	v.SetDefault("app.max_upload_size", "50mb")
	v.SetDefault("app.rate_limit_window_ms", 900000)
	v.SetDefault("app.rate_limit_max", 100)
	v.SetDefault("app.cors_origin", "http://localhost:3000")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("atlasmigrate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ATLASMIGRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = false
	}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app.port out of range: %d", c.App.Port)
	}
	if c.App.RateLimitWindowMS <= 0 {
		return fmt.Errorf("app.rate_limit_window_ms must be positive: %d", c.App.RateLimitWindowMS)
	}
	if c.App.RateLimitMax <= 0 {
		return fmt.Errorf("app.rate_limit_max must be positive: %d", c.App.RateLimitMax)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level: %q", c.Logging.Level)
	}
	return nil
}

// Package config loads server configuration from a YAML file and environment
// variables via viper. Every key has a workable default so a bare `splitzer`
// starts with a local SQLite file; only the JWT secret must be supplied.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	OCR      OCRConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path string
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
}

// OCRConfig holds the receipt scanning service configuration. Scanning is
// disabled when ApiUrl is empty.
type OCRConfig struct {
	ApiUrl string
	ApiKey string
}

// Load reads configuration from the given file (optional) and the
// environment. Environment variables use the SPLITZER_ prefix with
// underscores, e.g. SPLITZER_AUTH_JWTSECRET.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("Server.Port", 8080)
	v.SetDefault("Server.ShutdownTimeout", "10s")
	v.SetDefault("Database.Path", "./data/splitzer.db")
	v.SetDefault("Auth.TokenDuration", "24h")

	// Keys without a real default still need registering so AutomaticEnv
	// can surface them through Unmarshal.
	v.SetDefault("Auth.JWTSecret", "")
	v.SetDefault("OCR.ApiUrl", "")
	v.SetDefault("OCR.ApiKey", "")

	v.SetEnvPrefix("SPLITZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth jwt secret is required")
	}

	return &cfg, nil
}

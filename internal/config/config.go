package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"
)

// Config holds all application configuration.
type Config struct {
	Env string `envconfig:"ENV" default:"development"`

	// Logging settings. The TUI owns the terminal, so logs go to a
	// file rather than stderr; empty means discard.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:""`

	// Visualization buffer size in samples. Rounded up to a power of
	// two by the buffer itself.
	BufferSize int `envconfig:"BUFFER_SIZE" default:"4096"`

	// Where user settings are persisted. Empty selects a default
	// under the user config directory.
	SettingsPath string `envconfig:"SETTINGS_PATH" default:""`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	// Parse environment variables into config struct
	var config Config
	if err := envconfig.Process("SCOPE", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if config.SettingsPath == "" {
		config.SettingsPath = defaultSettingsPath()
	}

	return &config, nil
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "scope.yaml"
	}

	return filepath.Join(dir, "scope", "settings.yaml")
}

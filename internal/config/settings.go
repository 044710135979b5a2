// internal/config/settings.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds the service runtime configuration. Consumer behavior
// lives in the configuration document; Settings covers only where to
// find things and how to run.
type Settings struct {
	DatabaseURL  string
	DocumentPath string
	LogLevel     string
	LogFormat    string
	Workers      int
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DatabaseURL:  "sqlite:///obslayer.db",
		DocumentPath: "./obs_config.json",
		LogLevel:     "info",
		LogFormat:    "json",
		Workers:      4,
	}
}

// LoadSettings loads runtime settings using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadSettings(configPath string) (*Settings, error) {
	v := viper.New()

	// Defaults matching DefaultSettings
	v.SetDefault("database.url", "sqlite:///obslayer.db")
	v.SetDefault("document.path", "./obs_config.json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("workers", 4)

	// Bind environment variables with OBS_ prefix
	v.SetEnvPrefix("OBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	s := &Settings{
		DatabaseURL:  v.GetString("database.url"),
		DocumentPath: v.GetString("document.path"),
		LogLevel:     v.GetString("log.level"),
		LogFormat:    v.GetString("log.format"),
		Workers:      v.GetInt("workers"),
	}

	if err := validateSettings(s); err != nil {
		return nil, err
	}
	return s, nil
}

// validateSettings checks the loaded values before anything starts.
func validateSettings(s *Settings) error {
	if s.DatabaseURL == "" {
		return fmt.Errorf("database.url must not be empty")
	}
	if s.DocumentPath == "" {
		return fmt.Errorf("document.path must not be empty")
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", s.LogLevel)
	}
	switch s.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", s.LogFormat)
	}
	if s.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", s.Workers)
	}
	return nil
}

// internal/config/settings_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings("")
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultSettings()
	if *s != *want {
		t.Errorf("settings = %+v, want %+v", s, want)
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obslayer.yaml")
	content := []byte("log:\n  level: debug\n  format: text\nworkers: 2\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.LogLevel != "debug" || s.LogFormat != "text" || s.Workers != 2 {
		t.Errorf("settings = %+v", s)
	}
	// Unset keys keep their defaults.
	if s.DatabaseURL != DefaultSettings().DatabaseURL {
		t.Errorf("DatabaseURL = %q", s.DatabaseURL)
	}
}

func TestLoadSettingsValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad log level", "log:\n  level: verbose\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"non-positive workers", "workers: 0\n"},
		{"empty database url", "database:\n  url: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "obslayer.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadSettings(path); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	if _, err := LoadSettings("/does/not/exist.yaml"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

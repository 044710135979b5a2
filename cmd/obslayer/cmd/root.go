package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sorsimple/obslayer/internal/config"
	"github.com/sorsimple/obslayer/internal/logging"
)

var (
	configFile   string
	dbURL        string
	documentPath string
	logLevel     string
	logFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "obslayer",
	Short: "Observability layer event processor",
	Long:  `obslayer extracts entities from semi-structured events using declarative consumer rules and persists them through parameterized queries.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "settings file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&documentPath, "document", "", "consumer configuration document path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadSettings resolves runtime settings, letting set flags override the
// file and environment values.
func loadSettings() (*config.Settings, error) {
	settings, err := config.LoadSettings(configFile)
	if err != nil {
		return nil, err
	}
	if dbURL != "" {
		settings.DatabaseURL = dbURL
	}
	if documentPath != "" {
		settings.DocumentPath = documentPath
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}
	if logFormat != "" {
		settings.LogFormat = logFormat
	}
	return settings, nil
}

// setupLogging installs the process-wide logger and returns it.
func setupLogging(settings *config.Settings) *logging.Logger {
	log := logging.New(logging.ParseLevel(settings.LogLevel), settings.LogFormat)
	logging.SetDefault(log)
	return log
}

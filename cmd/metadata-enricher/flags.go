package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// globalFlags holds the flags shared by every command.
type globalFlags struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
	LogFormat  string
	Debug      bool
}

func (g *globalFlags) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()

	f.StringVarP(&g.ConfigPath, "config", "c",
		getEnv("ENRICHER_CONFIG", ""),
		"Path to the enricher profile, built-in OpenLibrary profile if empty (env: ENRICHER_CONFIG)")

	f.StringVar(&g.DBPath, "db",
		getEnv("ENRICHER_DB", defaultDBPath()),
		"Path to the metadata database (env: ENRICHER_DB)")

	f.StringVar(&g.LogLevel, "log-level",
		getEnv("ENRICHER_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: ENRICHER_LOG_LEVEL)")

	f.StringVar(&g.LogFormat, "log-format",
		getEnv("ENRICHER_LOG_FORMAT", "text"),
		"Log format: json, text (env: ENRICHER_LOG_FORMAT)")

	f.BoolVar(&g.Debug, "debug",
		getEnvBool("ENRICHER_DEBUG", false),
		"Log every stage and dump intermediate records (env: ENRICHER_DEBUG)")
}

func (g *globalFlags) validate() error {
	// Override log level if debug is set
	if g.Debug {
		g.LogLevel = "debug"
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, g.LogLevel) {
		return fmt.Errorf("invalid log level: %s", g.LogLevel)
	}

	if !slices.Contains([]string{"json", "text"}, g.LogFormat) {
		return fmt.Errorf("invalid log format: %s", g.LogFormat)
	}

	return nil
}

func defaultDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "metadata-enricher.db"
	}

	return filepath.Join(dir, "metadata-enricher", "metadata.db")
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}

	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}

	return defaultValue
}

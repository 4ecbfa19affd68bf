// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// BaseCurrency is the currency every snapshot is persisted in,
// independent of the display currency.
const BaseCurrency = "USD"

// Config holds the application configuration.
type Config struct {
	DatabasePath     string
	SessionPath      string
	WidgetPath       string
	LogPath          string
	TargetCurrency   string
	ModrinthToken    string
	ModrinthAPIURL   string
	ModrinthV3APIURL string
	RatesAPIURL      string
	SyncInterval     time.Duration
	RetentionDays    int
}

// Default values
const (
	defaultSyncInterval  = 1 * time.Hour
	minSyncInterval      = 15 * time.Minute
	maxSyncInterval      = 6 * time.Hour
	defaultRetentionDays = 365

	defaultModrinthAPIURL   = "https://api.modrinth.com/v2"
	defaultModrinthV3APIURL = "https://api.modrinth.com/v3"
	defaultRatesAPIURL      = "https://api.frankfurter.app"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		DatabasePath:     getEnvString("DATABASE_PATH", defaultConfigFile("revenue.db")),
		SessionPath:      getEnvString("SESSION_PATH", defaultConfigFile("session.json")),
		WidgetPath:       getEnvString("WIDGET_PATH", defaultConfigFile("widget.json")),
		LogPath:          getEnvString("LOG_PATH", defaultConfigFile("modpay.log")),
		TargetCurrency:   getEnvString("TARGET_CURRENCY", BaseCurrency),
		ModrinthToken:    getEnvString("MODRINTH_TOKEN", ""),
		ModrinthAPIURL:   getEnvString("MODRINTH_API_URL", defaultModrinthAPIURL),
		ModrinthV3APIURL: getEnvString("MODRINTH_V3_API_URL", defaultModrinthV3APIURL),
		RatesAPIURL:      getEnvString("RATES_API_URL", defaultRatesAPIURL),
		SyncInterval:     getEnvDuration("SYNC_INTERVAL", defaultSyncInterval),
		RetentionDays:    getEnvInt("RETENTION_DAYS", defaultRetentionDays),
	}

	// The background scheduler contract allows 15 minutes to 6 hours.
	if cfg.SyncInterval < minSyncInterval {
		cfg.SyncInterval = minSyncInterval
	}
	if cfg.SyncInterval > maxSyncInterval {
		cfg.SyncInterval = maxSyncInterval
	}

	if cfg.RetentionDays < 0 {
		cfg.RetentionDays = 0
	}

	for _, p := range []string{cfg.DatabasePath, cfg.SessionPath, cfg.WidgetPath, cfg.LogPath} {
		if err := ensureDir(filepath.Dir(p)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "modpay", ".env"),
			filepath.Join(home, ".modpay", ".env"),
		)
	}

	// Parent directory (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(cwd), ".env"))
	}

	return paths
}

// defaultConfigFile returns a file path under the default config directory.
func defaultConfigFile(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", "modpay", name)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30m", "1h", or plain seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}

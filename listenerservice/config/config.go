// --- File: listenerservice/config/config.go ---
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultListenAddr = ":8080"
	DefaultCollection = "notifications"
)

// Config defines the *single*, authoritative configuration.
type Config struct {
	ProjectID  string
	ListenAddr string

	// Collection is the watched collection path, e.g. "notifications".
	Collection string
	NumWorkers int
}

// UpdateConfigWithEnvOverrides applies environment variables and final validation.
func UpdateConfigWithEnvOverrides(cfg *Config, logger *slog.Logger) (*Config, error) {
	logger.Debug("Applying environment variable overrides...")

	// 1. Apply Environment Overrides
	if val := os.Getenv("PROJECT_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "PROJECT_ID", "source", "env")
		cfg.ProjectID = val
	}
	if val := os.Getenv("PORT"); val != "" {
		logger.Debug("Overriding config value", "key", "PORT", "source", "env")
		cfg.ListenAddr = ":" + val
	}
	if val := os.Getenv("NOTIFICATIONS_COLLECTION"); val != "" {
		logger.Debug("Overriding config value", "key", "NOTIFICATIONS_COLLECTION", "source", "env")
		cfg.Collection = strings.Trim(val, "/")
	}
	if val := os.Getenv("NUM_WORKERS"); val != "" {
		if workers, err := strconv.Atoi(val); err == nil && workers > 0 {
			logger.Debug("Overriding config value", "key", "NUM_WORKERS", "source", "env")
			cfg.NumWorkers = workers
		} else {
			logger.Warn("Ignoring invalid NUM_WORKERS", "value", val)
		}
	}

	// 2. Final Validation
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required (set via YAML or PROJECT_ID env var)")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if strings.Count(cfg.Collection, "/")%2 != 0 {
		return nil, fmt.Errorf("collection %q must be a collection path, not a document path", cfg.Collection)
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}

	logger.Debug("Configuration finalized and validated successfully")
	return cfg, nil
}

// --- File: listenerservice/config/yaml_config.go ---
package config

import (
	"log/slog"
	"strings"
)

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ProjectID  string `yaml:"project_id"`
	ListenAddr string `yaml:"listen_addr"`
	Collection string `yaml:"collection"`
	NumWorkers int    `yaml:"num_workers"`
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	cfg := &Config{
		ProjectID:  baseCfg.ProjectID,
		ListenAddr: baseCfg.ListenAddr,
		Collection: strings.Trim(baseCfg.Collection, "/"),
		NumWorkers: baseCfg.NumWorkers,
	}

	logger.Debug("YAML config mapping complete",
		"project_id", cfg.ProjectID,
		"listen_addr", cfg.ListenAddr,
		"collection", cfg.Collection,
	)

	return cfg, nil
}

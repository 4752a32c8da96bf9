package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Zero is a valid attempt budget, so absence is marked with a sentinel
	// instead of relying on the zero value.
	cfg.Retry.MaxAttempts = -1
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Retry.MaxAttempts < 0 {
		cfg.Retry.MaxAttempts = 5
	}
	if cfg.Retry.Backoff.InitialDelay == 0 {
		cfg.Retry.Backoff.InitialDelay = 1 * time.Second
	}
	if cfg.Retry.Backoff.MaxDelay == 0 {
		cfg.Retry.Backoff.MaxDelay = 60 * time.Second
	}
	if cfg.Retry.Backoff.Multiplier == 0 {
		cfg.Retry.Backoff.Multiplier = 2.0
	}
	if cfg.Backup.Dir == "" && cfg.Redis.URL == "" {
		cfg.Backup.Dir = "backups"
	}
	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = 30 * time.Second
	}

	return &cfg, nil
}

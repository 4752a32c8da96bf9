package config

import (
	"github.com/vietddude/courier/internal/delivery"
	"github.com/vietddude/courier/internal/infra/backup"
	"github.com/vietddude/courier/internal/infra/journal"
	"github.com/vietddude/courier/internal/infra/remote"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Remote   remote.Config      `yaml:"remote"`
	Retry    delivery.Config    `yaml:"retry"`
	Backup   backup.FSConfig    `yaml:"backup"`
	Redis    backup.RedisConfig `yaml:"redis"`
	Database journal.Config     `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

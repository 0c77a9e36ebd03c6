// Package config assembles the full application configuration: the reusable
// core sections plus database and SMTP settings owned by this bot.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/Famer-0/Tg-bot/core/config"
	"github.com/Famer-0/Tg-bot/core/database"
	"github.com/Famer-0/Tg-bot/notify"
)

// Config is the application configuration loaded at startup.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database database.Config `yaml:"database"`
	SMTP     notify.Config   `yaml:"smtp"`
}

// CoreConfig exposes the core sections for the runner and bootstrap.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads the YAML file, applies environment overrides, and validates
// the result.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if cfg.Database.Host == "" || cfg.Database.Name == "" {
		return nil, fmt.Errorf("database.host and database.name are required")
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConnections <= 0 {
		cfg.Database.MaxConnections = 10
	}
	return &cfg, nil
}

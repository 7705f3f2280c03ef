package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Feed      FeedConfig      `koanf:"feed"`
	Ingestion IngestionConfig `koanf:"ingestion"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type DatabaseConfig struct {
	Type         string `koanf:"type"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type FeedConfig struct {
	URL     string `koanf:"url"`
	Timeout string `koanf:"timeout"`
}

type IngestionConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Schedule   string `koanf:"schedule"` // robfig/cron spec, e.g. "@hourly"
	RunOnStart bool   `koanf:"run_on_start"`
}

func (c FeedConfig) EffectiveTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}
	if c.Database.Type != "" && c.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}

	if strings.TrimSpace(c.Feed.URL) == "" {
		return fmt.Errorf("feed.url is required")
	}
	if u, err := url.Parse(c.Feed.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid feed.url %q", c.Feed.URL)
	}
	if c.Feed.Timeout != "" {
		if _, err := time.ParseDuration(c.Feed.Timeout); err != nil {
			return fmt.Errorf("invalid feed.timeout %q: %w", c.Feed.Timeout, err)
		}
	}

	if c.Ingestion.Enabled && strings.TrimSpace(c.Ingestion.Schedule) == "" {
		return fmt.Errorf("ingestion.schedule is required when ingestion is enabled")
	}

	return nil
}

// Load parses config from file + env and validates it.
// Env vars use the CAPSULE_ prefix with __ as the nesting separator,
// e.g. CAPSULE_DATABASE__DSN overrides database.dsn.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             8080,
		"server.host":             "0.0.0.0",
		"server.mode":             "release",
		"database.type":           "postgres",
		"database.dsn":            "",
		"database.max_open_conns": 25,
		"database.max_idle_conns": 25,
		"database.auto_migrate":   true,
		"feed.url":                "https://api.tarkov.dev/graphql",
		"feed.timeout":            "30s",
		"ingestion.enabled":       true,
		"ingestion.schedule":      "@hourly",
		"ingestion.run_on_start":  false,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("CAPSULE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "CAPSULE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

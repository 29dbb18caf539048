package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	Plan   PlanConfig   `yaml:"plan"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// PlanConfig describes the scheduling day and the line catalog source.
type PlanConfig struct {
	StartHour   int    `yaml:"start_hour"`
	EndHour     int    `yaml:"end_hour"`
	LineCatalog string `yaml:"line_catalog"`
	OrderPrefix string `yaml:"order_prefix"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "plantops.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Plan: PlanConfig{
			StartHour:   6,
			EndHour:     22,
			LineCatalog: "lines.yaml",
			OrderPrefix: "OP",
		},
	}

	if path := os.Getenv("PLANTOPS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("PLANTOPS_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PLANTOPS_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PLANTOPS_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("PLANTOPS_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("PLANTOPS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if catalog := os.Getenv("PLANTOPS_LINE_CATALOG"); catalog != "" {
		cfg.Plan.LineCatalog = catalog
	}

	if cfg.Plan.StartHour < 0 || cfg.Plan.EndHour > 23 || cfg.Plan.StartHour > cfg.Plan.EndHour {
		return Config{}, fmt.Errorf("invalid plan hours: start=%d end=%d", cfg.Plan.StartHour, cfg.Plan.EndHour)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

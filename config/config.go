package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for ratesd.
type Config struct {
	Addr            string        // listen address for the HTTP server
	Driver          string        // "sqlite" or "postgres"
	DBPath          string        // sqlite database file
	DSN             string        // postgres connection string
	LogFormat       string        // "text" or "json"
	ShutdownTimeout time.Duration // grace period for in-flight requests
	SeedDemo        bool          // load the bundled demo dataset on startup
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Addr            string `yaml:"addr"`
	Driver          string `yaml:"driver"`
	DBPath          string `yaml:"db_path"`
	DSN             string `yaml:"dsn"`
	LogFormat       string `yaml:"log_format"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	SeedDemo        bool   `yaml:"seed_demo"`
}

// Default returns the configuration used when nothing else is specified:
// an embedded sqlite store and a local listen address.
func Default() Config {
	return Config{
		Addr:            ":8080",
		Driver:          "sqlite",
		DBPath:          "rates.db",
		LogFormat:       "text",
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadFromFile reads a YAML config file and merges its non-empty values
// into Config. Flags applied after the merge win.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if yc.Addr != "" {
		c.Addr = yc.Addr
	}
	if yc.Driver != "" {
		c.Driver = yc.Driver
	}
	if yc.DBPath != "" {
		c.DBPath = yc.DBPath
	}
	if yc.DSN != "" {
		c.DSN = yc.DSN
	}
	if yc.LogFormat != "" {
		c.LogFormat = yc.LogFormat
	}
	if yc.ShutdownTimeout != "" {
		d, err := time.ParseDuration(yc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("parse shutdown_timeout: %w", err)
		}
		c.ShutdownTimeout = d
	}
	if yc.SeedDemo {
		c.SeedDemo = true
	}
	return nil
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	switch c.Driver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("--db is required with the sqlite driver")
		}
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("--dsn or DATABASE_URL is required with the postgres driver")
		}
	default:
		return fmt.Errorf("unknown driver %q (want sqlite or postgres)", c.Driver)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	return nil
}

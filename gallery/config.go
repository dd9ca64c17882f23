// Package gallery wires the pinacoteca core together: configuration,
// the database handle, repositories, and the ingestion service.
package gallery

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultPageSize = 20

// Config is the application configuration loaded from YAML.
type Config struct {
	// Database is the SQLite file path. Required.
	Database string `yaml:"database"`

	// Library is the directory imported images are copied into.
	Library string `yaml:"library"`

	// PageSize is the default search page size.
	PageSize int `yaml:"page_size"`

	// LogLevel is one of zerolog's level names (debug, info, warn, ...).
	LogLevel string `yaml:"log_level"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.Database == "" {
		return fmt.Errorf("no database path specified")
	}
	if c.Library == "" {
		c.Library = "library"
	}
	if c.PageSize == 0 {
		c.PageSize = defaultPageSize
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

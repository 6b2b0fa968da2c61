package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the settings of an export run.
// Values come from an optional YAML file; environment variables always win.
type Config struct {
	// Namespace of every generated Avro schema.
	Namespace string `yaml:"namespace" env:"SPANNERAVRO_NAMESPACE" env-default:"spannerexport"`
	// FormatVersion is stamped on every schema as googleFormatVersion.
	FormatVersion string `yaml:"format_version" env:"SPANNERAVRO_FORMAT_VERSION" env-default:"1.0.0"`
	// LogicalTimestamps maps timestamps to timestamp-micros instead of strings.
	LogicalTimestamps bool `yaml:"logical_timestamps" env:"SPANNERAVRO_LOGICAL_TIMESTAMPS" env-default:"false"`
	// OutputDir selects one file per schema. Empty writes a single stream.
	OutputDir string `yaml:"output_dir" env:"SPANNERAVRO_OUTPUT_DIR" env-default:""`

	Catalog CatalogConfig `yaml:"catalog"`
}

// CatalogConfig points at the database recording export runs.
type CatalogConfig struct {
	Driver string `yaml:"driver" env:"SPANNERAVRO_CATALOG_DRIVER" env-default:"sqlite3"`
	// DSN disables the catalog when empty.
	DSN string `yaml:"dsn" env:"SPANNERAVRO_CATALOG_DSN" env-default:""`
}

// Enabled reports whether export runs should be recorded.
func (c CatalogConfig) Enabled() bool {
	return c.DSN != ""
}

// Load reads path, when given, and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values cleanenv cannot check on its own.
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	switch c.Catalog.Driver {
	case "sqlite3", "mysql":
	default:
		return fmt.Errorf("unsupported catalog driver %q", c.Catalog.Driver)
	}
	return nil
}

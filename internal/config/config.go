// Package config loads the ambient run configuration for a datagen
// invocation: where to write output, a default entity row count, a run
// timeout, and default validator tolerances. File-then-environment-override
// layering, getEnv/getEnvAsInt/getEnvAsDuration helpers, and a
// validateConfig pass, scoped to this run's own ambient concerns
// rather than server or database settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full ambient run configuration.
type Config struct {
	Output    OutputConfig    `yaml:"output"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Validator ValidatorConfig `yaml:"validator"`
}

// OutputConfig controls where and how generated tables are written.
type OutputConfig struct {
	Directory string `yaml:"directory" env:"DATAGEN_OUTPUT_DIR"`
	Format    string `yaml:"format" env:"DATAGEN_OUTPUT_FORMAT"`
}

// DefaultsConfig holds run-level defaults. They are loaded and
// validated here; the schema parser applies its own built-in defaults
// and does not read them.
type DefaultsConfig struct {
	EntityRowCount int           `yaml:"entity_row_count" env:"DATAGEN_DEFAULT_ENTITY_ROW_COUNT"`
	RunTimeout     time.Duration `yaml:"run_timeout" env:"DATAGEN_RUN_TIMEOUT"`
}

// ValidatorConfig holds default behavioral-check tolerances, equal to
// the 0.1/0.15 the schema parser fills in for a composite-effect target
// that leaves them unset. The validator reads the target's values, not
// these.
type ValidatorConfig struct {
	DefaultMAETol  float64 `yaml:"default_mae_tol" env:"DATAGEN_VALIDATOR_MAE_TOL"`
	DefaultMAPETol float64 `yaml:"default_mape_tol" env:"DATAGEN_VALIDATOR_MAPE_TOL"`
}

// defaultConfig is what Load returns before any file or environment
// override is applied.
func defaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Directory: "./out",
			Format:    "csv",
		},
		Defaults: DefaultsConfig{
			EntityRowCount: 1000,
			RunTimeout:     10 * time.Minute,
		},
		Validator: ValidatorConfig{
			DefaultMAETol:  0.1,
			DefaultMAPETol: 0.15,
		},
	}
}

// Load returns the configuration built entirely from environment
// variables over the built-in defaults, for callers with no config
// file on disk.
func Load() (*Config, error) {
	cfg := defaultConfig()
	loadFromEnv(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from a YAML file, then layers
// environment variable overrides on top, then validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	loadFromEnv(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	cfg.Output.Directory = getEnv("DATAGEN_OUTPUT_DIR", cfg.Output.Directory)
	cfg.Output.Format = getEnv("DATAGEN_OUTPUT_FORMAT", cfg.Output.Format)

	cfg.Defaults.EntityRowCount = getEnvAsInt("DATAGEN_DEFAULT_ENTITY_ROW_COUNT", cfg.Defaults.EntityRowCount)
	cfg.Defaults.RunTimeout = getEnvAsDuration("DATAGEN_RUN_TIMEOUT", cfg.Defaults.RunTimeout)

	cfg.Validator.DefaultMAETol = getEnvAsFloat("DATAGEN_VALIDATOR_MAE_TOL", cfg.Validator.DefaultMAETol)
	cfg.Validator.DefaultMAPETol = getEnvAsFloat("DATAGEN_VALIDATOR_MAPE_TOL", cfg.Validator.DefaultMAPETol)
}

func validateConfig(cfg *Config) error {
	if cfg.Output.Directory == "" {
		return fmt.Errorf("output directory is required")
	}
	if cfg.Output.Format != "csv" && cfg.Output.Format != "json" {
		return fmt.Errorf("output format must be csv or json, got %q", cfg.Output.Format)
	}
	if cfg.Defaults.EntityRowCount <= 0 {
		return fmt.Errorf("default entity row count must be greater than 0")
	}
	if cfg.Defaults.RunTimeout <= 0 {
		return fmt.Errorf("run timeout must be greater than 0")
	}
	if cfg.Validator.DefaultMAETol < 0 || cfg.Validator.DefaultMAPETol < 0 {
		return fmt.Errorf("validator tolerances must be non-negative")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a
// default value.
func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvAsFloat gets an environment variable as a float or returns a
// default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvAsDuration gets an environment variable as a duration or
// returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

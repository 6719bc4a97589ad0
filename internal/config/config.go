package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the pdbfetch CLI.
type Config struct {
	Bucket     string      `yaml:"bucket"`
	IDsDir     string      `yaml:"ids_dir"`
	ReportPath string      `yaml:"report_path"`
	Workers    int         `yaml:"workers"`
	Progress   bool        `yaml:"progress"`
	Fetch      FetchConfig `yaml:"fetch"`
	Retry      RetryConfig `yaml:"retry"`
}

// FetchConfig defines per-request behavior.
type FetchConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	Cooldown     time.Duration `yaml:"cooldown"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Workers: 20,
		Fetch: FetchConfig{
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			Cooldown:     5 * time.Minute,
			PollInterval: time.Minute,
		},
	}
}

// Overrides holds settings parsed from a config file or taken from
// explicitly-set flags. Nil fields were not provided and leave the base
// value untouched when merged, so an explicit zero (cooldown 0s,
// progress false) is distinguishable from an absent setting.
type Overrides struct {
	Bucket     *string
	IDsDir     *string
	ReportPath *string
	Workers    *int
	Progress   *bool
	Fetch      FetchOverrides
	Retry      RetryOverrides
}

// FetchOverrides holds optional per-request settings.
type FetchOverrides struct {
	Timeout           *time.Duration
	RequestsPerSecond *float64
	Burst             *int
}

// RetryOverrides holds optional retry settings.
type RetryOverrides struct {
	MaxAttempts  *int
	Cooldown     *time.Duration
	PollInterval *time.Duration
}

// yamlConfig is used for YAML unmarshaling with string durations.
// Pointer fields distinguish absent keys from explicit zero values.
type yamlConfig struct {
	Bucket     string          `yaml:"bucket"`
	IDsDir     string          `yaml:"ids_dir"`
	ReportPath string          `yaml:"report_path"`
	Workers    *int            `yaml:"workers"`
	Progress   *bool           `yaml:"progress"`
	Fetch      yamlFetchConfig `yaml:"fetch"`
	Retry      yamlRetryConfig `yaml:"retry"`
}

type yamlFetchConfig struct {
	Timeout           string   `yaml:"timeout"`
	RequestsPerSecond *float64 `yaml:"requests_per_second"`
	Burst             *int     `yaml:"burst"`
}

type yamlRetryConfig struct {
	MaxAttempts  *int   `yaml:"max_attempts"`
	Cooldown     string `yaml:"cooldown"`
	PollInterval string `yaml:"poll_interval"`
}

// ParseFile parses a YAML config file into Overrides: keys absent from
// the file stay nil so the result can be merged over command-specific
// defaults.
func ParseFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Overrides{}, fmt.Errorf("parse config file: %w", err)
	}

	o := Overrides{
		Workers:  yc.Workers,
		Progress: yc.Progress,
	}
	if yc.Bucket != "" {
		o.Bucket = &yc.Bucket
	}
	if yc.IDsDir != "" {
		o.IDsDir = &yc.IDsDir
	}
	if yc.ReportPath != "" {
		o.ReportPath = &yc.ReportPath
	}
	o.Fetch.RequestsPerSecond = yc.Fetch.RequestsPerSecond
	o.Fetch.Burst = yc.Fetch.Burst
	o.Retry.MaxAttempts = yc.Retry.MaxAttempts
	if yc.Fetch.Timeout != "" {
		d, err := time.ParseDuration(yc.Fetch.Timeout)
		if err != nil {
			return Overrides{}, fmt.Errorf("parse fetch.timeout: %w", err)
		}
		o.Fetch.Timeout = &d
	}
	if yc.Retry.Cooldown != "" {
		d, err := time.ParseDuration(yc.Retry.Cooldown)
		if err != nil {
			return Overrides{}, fmt.Errorf("parse retry.cooldown: %w", err)
		}
		o.Retry.Cooldown = &d
	}
	if yc.Retry.PollInterval != "" {
		d, err := time.ParseDuration(yc.Retry.PollInterval)
		if err != nil {
			return Overrides{}, fmt.Errorf("parse retry.poll_interval: %w", err)
		}
		o.Retry.PollInterval = &d
	}

	return o, nil
}

// LoadFromFile loads configuration from a YAML file on top of the
// package defaults.
func LoadFromFile(path string) (Config, error) {
	o, err := ParseFile(path)
	if err != nil {
		return Config{}, err
	}
	return Default().Merge(o), nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the PDBFETCH_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("PDBFETCH_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("PDBFETCH_IDS_DIR"); v != "" {
		c.IDsDir = v
	}
	if v := os.Getenv("PDBFETCH_REPORT_PATH"); v != "" {
		c.ReportPath = v
	}
	if v := os.Getenv("PDBFETCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PDBFETCH_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("PDBFETCH_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("PDBFETCH_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse PDBFETCH_FETCH_TIMEOUT: %w", err)
		}
		c.Fetch.Timeout = d
	}
	if v := os.Getenv("PDBFETCH_FETCH_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse PDBFETCH_FETCH_RATE: %w", err)
		}
		c.Fetch.RequestsPerSecond = f
	}
	if v := os.Getenv("PDBFETCH_RETRY_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PDBFETCH_RETRY_MAX_ATTEMPTS: %w", err)
		}
		c.Retry.MaxAttempts = n
	}
	if v := os.Getenv("PDBFETCH_RETRY_COOLDOWN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse PDBFETCH_RETRY_COOLDOWN: %w", err)
		}
		c.Retry.Cooldown = d
	}
	if v := os.Getenv("PDBFETCH_RETRY_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse PDBFETCH_RETRY_POLL_INTERVAL: %w", err)
		}
		c.Retry.PollInterval = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("config: bucket is required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.Fetch.Timeout <= 0 {
		return errors.New("config: fetch.timeout must be positive")
	}
	if c.Retry.MaxAttempts <= 0 {
		return errors.New("config: retry.max_attempts must be positive")
	}
	if c.Retry.Cooldown < 0 {
		return errors.New("config: retry.cooldown must not be negative")
	}
	if c.Retry.PollInterval <= 0 {
		return errors.New("config: retry.poll_interval must be positive")
	}
	return nil
}

// Merge applies the provided overrides to c, returning a new Config.
// Nil override fields leave the base value untouched.
func (c Config) Merge(o Overrides) Config {
	if o.Bucket != nil {
		c.Bucket = *o.Bucket
	}
	if o.IDsDir != nil {
		c.IDsDir = *o.IDsDir
	}
	if o.ReportPath != nil {
		c.ReportPath = *o.ReportPath
	}
	if o.Workers != nil {
		c.Workers = *o.Workers
	}
	if o.Progress != nil {
		c.Progress = *o.Progress
	}
	if o.Fetch.Timeout != nil {
		c.Fetch.Timeout = *o.Fetch.Timeout
	}
	if o.Fetch.RequestsPerSecond != nil {
		c.Fetch.RequestsPerSecond = *o.Fetch.RequestsPerSecond
	}
	if o.Fetch.Burst != nil {
		c.Fetch.Burst = *o.Fetch.Burst
	}
	if o.Retry.MaxAttempts != nil {
		c.Retry.MaxAttempts = *o.Retry.MaxAttempts
	}
	if o.Retry.Cooldown != nil {
		c.Retry.Cooldown = *o.Retry.Cooldown
	}
	if o.Retry.PollInterval != nil {
		c.Retry.PollInterval = *o.Retry.PollInterval
	}
	return c
}

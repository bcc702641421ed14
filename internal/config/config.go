// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > embedded > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Guliveer/w1logger/internal/collector"
	"github.com/Guliveer/w1logger/internal/models"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "10s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all logger configuration.
type Config struct {
	Sensors []models.Sensor `yaml:"sensors"`
	W1      W1Config        `yaml:"w1"`
	Store   StoreConfig     `yaml:"store"`
	Run     RunConfig       `yaml:"run"`
	Metrics MetricsConfig   `yaml:"metrics"`
	Logging LoggingConfig   `yaml:"logging"`
}

// W1Config locates the one-wire sysfs tree.
type W1Config struct {
	DevicesDir string `yaml:"devices_dir"`
}

// StoreConfig holds the SQLite targets, written in order.
type StoreConfig struct {
	Paths        []string `yaml:"paths"`
	BusyTimeout  Duration `yaml:"busy_timeout"`
	CreateSchema bool     `yaml:"create_schema"`
}

// RunConfig bounds a single run. A zero Timeout retries failing sensors forever.
type RunConfig struct {
	Timeout Duration `yaml:"timeout"`
}

// MetricsConfig holds the node_exporter textfile output. Empty disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration. It has no sensors; those
// come from the embedded or external config file.
func DefaultConfig() *Config {
	return &Config{
		W1: W1Config{
			DevicesDir: collector.DefaultDevicesDir,
		},
		Store: StoreConfig{
			Paths:       []string{"temp.sqlite3", "/tmp/fallback.sqlite3"},
			BusyTimeout: Duration{10 * time.Second},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// CLIOverrides holds values from command-line flags.
// Empty values are treated as "not set" and skipped.
type CLIOverrides struct {
	DevicesDir string
	StorePaths []string
	LogLevel   string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value → use that path ("" means no external file)
//
// Unlike discovered files, an explicit path that cannot be read is an error.
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	var filePath string
	explicit := len(configPath) > 0
	if explicit {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case explicit:
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cli.DevicesDir != "" {
		cfg.W1.DevicesDir = cli.DevicesDir
	}
	if len(cli.StorePaths) > 0 {
		cfg.Store.Paths = cli.StorePaths
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func applyEnvOverrides(cfg *Config) {
	if dir := os.Getenv("W1_DEVICES_DIR"); dir != "" {
		cfg.W1.DevicesDir = dir
	}
	if paths := SplitList(os.Getenv("W1_STORE_PATHS")); len(paths) > 0 {
		cfg.Store.Paths = paths
	}
	if level := os.Getenv("W1_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if textfile := os.Getenv("W1_METRICS_TEXTFILE"); textfile != "" {
		cfg.Metrics.Textfile = textfile
	}
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if _, err := collector.NewRegistry(c.Sensors); err != nil {
		return fmt.Errorf("sensors: %w", err)
	}
	if len(c.Store.Paths) == 0 {
		return fmt.Errorf("at least one store path is required")
	}
	for i, p := range c.Store.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("store path #%d is empty", i)
		}
	}
	if c.Store.BusyTimeout.Duration < 0 {
		return fmt.Errorf("store busy_timeout must not be negative (got %s)", c.Store.BusyTimeout.Duration)
	}
	if c.Run.Timeout.Duration < 0 {
		return fmt.Errorf("run timeout must not be negative (got %s)", c.Run.Timeout.Duration)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

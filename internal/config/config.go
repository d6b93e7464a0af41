// Package config loads questforge settings from YAML with environment
// overrides.
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/questforge/internal/harness"
	"github.com/samdwyer/questforge/internal/logger"
)

// Config holds all questforge settings.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   logger.Config   `yaml:"logging"`
	Suite     SuiteConfig     `yaml:"suite"`
	Store     StoreConfig     `yaml:"store"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// MaxSuiteRuns caps scenarios × runs for a suite requested over HTTP.
	MaxSuiteRuns int `yaml:"max_suite_runs"`
}

// SuiteConfig mirrors harness.Options for the CLI and server.
type SuiteConfig struct {
	RunsPerScenario     int    `yaml:"runs_per_scenario"`
	RandomScenarioCount int    `yaml:"random_scenario_count"`
	RandomScenarioSeed  string `yaml:"random_scenario_seed"`
	IncludePatches      bool   `yaml:"include_patches"`
	MaxFailureRecords   int    `yaml:"max_failure_records"`
}

// StoreConfig locates the suite archive.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// TelemetryConfig toggles tracing.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	opts := harness.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			MaxSuiteRuns: 500,
		},
		Logging: logger.DefaultConfig(),
		Suite: SuiteConfig{
			RunsPerScenario:     opts.RunsPerScenario,
			RandomScenarioCount: opts.RandomScenarioCount,
			RandomScenarioSeed:  opts.RandomScenarioSeed,
			IncludePatches:      opts.IncludePatches,
			MaxFailureRecords:   opts.MaxFailureRecords,
		},
		Store: StoreConfig{
			Path: "questforge.db",
		},
		Telemetry: TelemetryConfig{
			Enabled:     true,
			SampleRatio: 1,
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields
// the defaults; a file that cannot be parsed yields the defaults and the
// parse error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Use defaults if file doesn't exist
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// ApplyEnv overrides settings from QUESTFORGE_* environment variables.
// Unparseable values are ignored.
func (c *Config) ApplyEnv() {
	setString(&c.Server.Addr, "QUESTFORGE_ADDR")
	setInt(&c.Server.MaxSuiteRuns, "QUESTFORGE_MAX_SUITE_RUNS")

	setString(&c.Logging.Level, "QUESTFORGE_LOG_LEVEL")
	setString(&c.Logging.ConsoleFormat, "QUESTFORGE_LOG_FORMAT")
	setBool(&c.Logging.FileEnabled, "QUESTFORGE_LOG_FILE_ENABLED")
	setString(&c.Logging.FilePath, "QUESTFORGE_LOG_FILE_PATH")

	setInt(&c.Suite.RunsPerScenario, "QUESTFORGE_SUITE_RUNS")
	setInt(&c.Suite.RandomScenarioCount, "QUESTFORGE_SUITE_RANDOM_COUNT")
	setString(&c.Suite.RandomScenarioSeed, "QUESTFORGE_SUITE_RANDOM_SEED")
	setBool(&c.Suite.IncludePatches, "QUESTFORGE_SUITE_PATCHES")
	setInt(&c.Suite.MaxFailureRecords, "QUESTFORGE_SUITE_MAX_FAILURES")

	setString(&c.Store.Path, "QUESTFORGE_STORE_PATH")
	setBool(&c.Telemetry.Enabled, "QUESTFORGE_TELEMETRY")
}

// SuiteOptions converts the suite section into harness options.
func (c *Config) SuiteOptions() harness.Options {
	return harness.Options{
		RunsPerScenario:     c.Suite.RunsPerScenario,
		RandomScenarioCount: c.Suite.RandomScenarioCount,
		RandomScenarioSeed:  c.Suite.RandomScenarioSeed,
		IncludePatches:      c.Suite.IncludePatches,
		MaxFailureRecords:   c.Suite.MaxFailureRecords,
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = b
		}
	}
}

package quarry

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the Open options.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Execution ExecutionConfig `yaml:"execution"`
	Limits    LimitsConfig    `yaml:"limits"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ExecutionConfig selects kernels and merge strategies.
type ExecutionConfig struct {
	ForceScalar           bool `yaml:"forceScalar"`
	DisableSpecialization bool `yaml:"disableSpecialization"`
	InTermThreshold       int  `yaml:"inTermThreshold"`
}

// LimitsConfig bounds searcher admission and sort memory.
type LimitsConfig struct {
	MaxConcurrentSearchers int64   `yaml:"maxConcurrentSearchers"`
	SearchersPerSecond     float64 `yaml:"searchersPerSecond"`
	SortMemoryLimitBytes   int64   `yaml:"sortMemoryLimitBytes"`
}

// LoadConfig reads a YAML config file (if provided) and applies
// environment-variable overrides. Missing values keep their defaults.
func LoadConfig(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML config data and applies environment-variable
// overrides.
func ParseConfig(data []byte) (*Config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	if _, err := cfg.Logging.level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "none",
		},
		Execution: ExecutionConfig{
			InTermThreshold: 16,
		},
	}
}

// applyEnvOverrides reads QUARRY_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QUARRY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QUARRY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("QUARRY_FORCE_SCALAR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Execution.ForceScalar = b
		}
	}
	if v := os.Getenv("QUARRY_DISABLE_SPECIALIZATION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Execution.DisableSpecialization = b
		}
	}
	if v := os.Getenv("QUARRY_IN_TERM_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Execution.InTermThreshold = n
		}
	}
	if v := os.Getenv("QUARRY_MAX_CONCURRENT_SEARCHERS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.MaxConcurrentSearchers = n
		}
	}
	if v := os.Getenv("QUARRY_SEARCHERS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Limits.SearchersPerSecond = f
		}
	}
	if v := os.Getenv("QUARRY_SORT_MEMORY_LIMIT_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.SortMemoryLimitBytes = n
		}
	}
}

func (l LoggingConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("logging level %q: %w", l.Level, err)
	}
	return level, nil
}

// Options converts the config into Open options.
func (c *Config) Options() []Option {
	var opts []Option

	level, err := c.Logging.level()
	if err != nil {
		level = slog.LevelInfo
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json":
		opts = append(opts, WithLogger(NewJSONLogger(level)))
	case "text":
		opts = append(opts, WithLogger(NewTextLogger(level)))
	}

	if c.Execution.ForceScalar {
		opts = append(opts, WithForceScalar())
	}
	if c.Execution.DisableSpecialization {
		opts = append(opts, WithoutSpecialization())
	}
	if c.Execution.InTermThreshold > 0 {
		opts = append(opts, WithInTermThreshold(c.Execution.InTermThreshold))
	}
	if c.Limits.MaxConcurrentSearchers > 0 {
		opts = append(opts, WithMaxConcurrentSearchers(c.Limits.MaxConcurrentSearchers))
	}
	if c.Limits.SearchersPerSecond > 0 {
		opts = append(opts, WithSearcherRate(c.Limits.SearchersPerSecond))
	}
	if c.Limits.SortMemoryLimitBytes > 0 {
		opts = append(opts, WithSortMemoryLimit(c.Limits.SortMemoryLimitBytes))
	}
	return opts
}

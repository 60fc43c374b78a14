// Package config provides configuration loading for jsonform.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "JSONFORM_"

	maxConfigFileSize = 1024 * 1024 // 1MB

	defaultSizeLimit          = 10 * 1024 * 1024
	defaultChunkSize          = 32 * 1024
	defaultMaxConcurrentReads = 8
)

// Config is the complete jsonform configuration.
type Config struct {
	Log    LogConfig    `koanf:"log"`
	Limits LimitsConfig `koanf:"limits"`
	Files  FilesConfig  `koanf:"files"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// LimitsConfig holds the size guard defaults.
type LimitsConfig struct {
	// DefaultSizeLimit applies to forms without a valid size limit of
	// their own.
	DefaultSizeLimit int64 `koanf:"default_size_limit"`
}

// FilesConfig controls how file contents are read.
type FilesConfig struct {
	ChunkSize          int `koanf:"chunk_size"`
	MaxConcurrentReads int `koanf:"max_concurrent_reads"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from the YAML file at path, then overrides it
// with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (JSONFORM_LOG_LEVEL, JSONFORM_FILES_CHUNK_SIZE, etc.)
//  2. YAML config file
//  3. Hardcoded defaults
//
// An empty path skips the file. Environment variables drop the prefix and
// split on the first underscore:
//
//	JSONFORM_LOG_LEVEL -> log.level
//	JSONFORM_LIMITS_DEFAULT_SIZE_LIMIT -> limits.default_size_limit
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKey maps JSONFORM_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Limits.DefaultSizeLimit == 0 {
		cfg.Limits.DefaultSizeLimit = defaultSizeLimit
	}
	if cfg.Files.ChunkSize == 0 {
		cfg.Files.ChunkSize = defaultChunkSize
	}
	if cfg.Files.MaxConcurrentReads == 0 {
		cfg.Files.MaxConcurrentReads = defaultMaxConcurrentReads
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got %q", c.Log.Format)
	}
	if c.Limits.DefaultSizeLimit <= 0 {
		return fmt.Errorf("default size limit must be > 0, got %d", c.Limits.DefaultSizeLimit)
	}
	if c.Files.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be > 0, got %d", c.Files.ChunkSize)
	}
	if c.Files.MaxConcurrentReads <= 0 {
		return fmt.Errorf("max concurrent reads must be > 0, got %d", c.Files.MaxConcurrentReads)
	}
	return nil
}

// Package config provides configuration management for the application.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amaumene/gostremiomux/internal/constants"
	"github.com/amaumene/gostremiomux/internal/validation"
)

const (
	// Default configuration file name
	defaultConfigFile = "config.json"
)

// Config holds the instance configuration.
// It supports loading from environment variables and JSON files.
// A Config is not modified once Load returns.
type Config struct {
	Port      string `json:"PORT" validate:"required,numeric"`
	BaseURL   string `json:"BASE_URL" validate:"required,url"`
	LogLevel  string `json:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	LogFile   string `json:"LOG_FILE"`
	StaticDir string `json:"STATIC_DIR"`

	// Storage settings
	CacheBackend     string `json:"CACHE_BACKEND" validate:"oneof=memory freecache bolt redis"`
	CacheSize        int    `json:"CACHE_SIZE" validate:"gt=0"`
	CacheMemoryBytes int    `json:"CACHE_MEMORY_BYTES" validate:"gt=0"`
	DatabasePath     string `json:"DATABASE_PATH" validate:"required_if=CacheBackend bolt"`
	RedisURL         string `json:"REDIS_URL" validate:"required_if=CacheBackend redis"`

	// Aggregation
	DefaultAdapterTimeout Duration `json:"DEFAULT_ADAPTER_TIMEOUT" validate:"gt=0"`
	AggregationOverhead   Duration `json:"AGGREGATION_OVERHEAD" validate:"gte=0"`
	MaxAdapters           int      `json:"MAX_ADAPTERS" validate:"gt=0"`
	DisabledPresets       []string `json:"DISABLED_PRESETS"`

	// Cache lifetimes
	StreamTTL      Duration `json:"STREAM_TTL" validate:"gt=0"`
	ShortStreamTTL Duration `json:"SHORT_STREAM_TTL" validate:"gt=0"`
	MetaTTL        Duration `json:"META_TTL" validate:"gt=0"`
	ResolveTTL     Duration `json:"RESOLVE_TTL" validate:"gt=0"`

	// Upstream defaults
	TMDBAPIKey   string `json:"TMDB_API_KEY"`
	TorrentioURL string `json:"TORRENTIO_URL" validate:"omitempty,url"`

	disabledMap map[string]bool
	mapsOnce    sync.Once
}

// Default returns a Config populated with built-in defaults only.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	cfg.InitMaps()
	return cfg
}

// Load reads configuration from environment variables and optional JSON file.
// File values are applied after the environment.
// Returns an error if the configuration is invalid.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.loadFromEnv()

	configFile := getEnvOrDefault("CONFIG_FILE", defaultConfigFile)
	if err := cfg.loadFromFile(configFile); err != nil {
		// Ignore file not found errors
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.InitMaps()

	return cfg, nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() {
	c.Port = os.Getenv("PORT")
	c.BaseURL = strings.TrimSuffix(os.Getenv("BASE_URL"), "/")
	c.LogLevel = os.Getenv("LOG_LEVEL")
	c.LogFile = os.Getenv("LOG_FILE")
	c.StaticDir = os.Getenv("STATIC_DIR")

	c.CacheBackend = strings.ToLower(os.Getenv("CACHE_BACKEND"))
	c.CacheSize = getEnvInt("CACHE_SIZE")
	c.CacheMemoryBytes = getEnvInt("CACHE_MEMORY_BYTES")
	c.DatabasePath = os.Getenv("DATABASE_PATH")
	c.RedisURL = os.Getenv("REDIS_URL")

	c.DefaultAdapterTimeout = getEnvDuration("DEFAULT_ADAPTER_TIMEOUT")
	c.AggregationOverhead = getEnvDuration("AGGREGATION_OVERHEAD")
	c.MaxAdapters = getEnvInt("MAX_ADAPTERS")
	if disabled := os.Getenv("DISABLED_PRESETS"); disabled != "" {
		c.DisabledPresets = splitList(disabled)
	}

	c.StreamTTL = getEnvDuration("STREAM_TTL")
	c.ShortStreamTTL = getEnvDuration("SHORT_STREAM_TTL")
	c.MetaTTL = getEnvDuration("META_TTL")
	c.ResolveTTL = getEnvDuration("RESOLVE_TTL")

	c.TMDBAPIKey = os.Getenv("TMDB_API_KEY")
	c.TorrentioURL = os.Getenv("TORRENTIO_URL")
}

// loadFromFile loads configuration from a JSON file.
func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, c)
}

// Validate sets default values for missing optional fields and checks the
// result.
func (c *Config) Validate() error {
	c.setDefaults()
	return validation.New().Validate(c)
}

func (c *Config) setDefaults() {
	if c.Port == "" {
		c.Port = constants.DefaultPort
	}
	if c.BaseURL == "" {
		c.BaseURL = constants.DefaultBaseURL
	}
	if c.LogLevel == "" {
		c.LogLevel = constants.DefaultLogLevel
	}
	if c.CacheBackend == "" {
		c.CacheBackend = constants.DefaultCacheBackend
	}
	if c.CacheSize == 0 {
		c.CacheSize = constants.DefaultCacheSize
	}
	if c.CacheMemoryBytes == 0 {
		c.CacheMemoryBytes = constants.DefaultCacheMemoryBytes
	}
	if c.DatabasePath == "" {
		c.DatabasePath = constants.DefaultDatabasePath
	}
	if c.DefaultAdapterTimeout == 0 {
		c.DefaultAdapterTimeout = Duration(constants.DefaultAdapterTimeout)
	}
	if c.AggregationOverhead == 0 {
		c.AggregationOverhead = Duration(constants.AggregationOverhead)
	}
	if c.MaxAdapters == 0 {
		c.MaxAdapters = constants.MaxAdapters
	}
	if c.StreamTTL == 0 {
		c.StreamTTL = Duration(constants.DefaultStreamTTL)
	}
	if c.ShortStreamTTL == 0 {
		c.ShortStreamTTL = Duration(constants.DefaultShortStreamTTL)
	}
	if c.MetaTTL == 0 {
		c.MetaTTL = Duration(constants.DefaultMetaTTL)
	}
	if c.ResolveTTL == 0 {
		c.ResolveTTL = Duration(constants.DefaultResolveTTL)
	}
}

// InitMaps initializes internal lookup maps.
// This method is idempotent and thread-safe.
func (c *Config) InitMaps() {
	c.mapsOnce.Do(func() {
		c.disabledMap = make(map[string]bool, len(c.DisabledPresets))
		for _, preset := range c.DisabledPresets {
			c.disabledMap[strings.ToLower(strings.TrimSpace(preset))] = true
		}
	})
}

// IsPresetDisabled reports whether the instance owner disabled a preset.
func (c *Config) IsPresetDisabled(preset string) bool {
	c.InitMaps()
	return c.disabledMap[strings.ToLower(preset)]
}

// OuterDeadline returns the aggregation deadline for the given longest
// adapter timeout.
func (c *Config) OuterDeadline(longest time.Duration) time.Duration {
	return longest + c.AggregationOverhead.Std()
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}

func getEnvDuration(key string) Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return 0
	}
	return Duration(d)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	Service        string        `yaml:"service" validate:"required,url"`
	PLCDirectory   string        `yaml:"plcDirectory" validate:"required,url"`
	Layout         string        `yaml:"layout" validate:"oneof=list grid"`
	SortReversed   bool          `yaml:"sortReversed"`
	SearchDebounce time.Duration `yaml:"searchDebounce" validate:"gt=0"`
	HTTPTimeout    time.Duration `yaml:"httpTimeout" validate:"gt=0"`
	Log            LogConfig     `yaml:"log"`
	Storage        StoreConfig   `yaml:"storage"`
	Cache          CacheConfig   `yaml:"cache"`
	Serve          ServeConfig   `yaml:"serve"`
	Cull           CullConfig    `yaml:"cull"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"loglevel"`
	Pretty bool   `yaml:"pretty"`
	File   string `yaml:"file"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" validate:"omitempty,oneof=sqlite json"`
}

// CacheConfig configures the identity cache. An empty RedisAddr keeps
// the cache in memory.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB" validate:"min=0"`
	TTL           time.Duration `yaml:"ttl"`
}

type ServeConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

type CullConfig struct {
	Concurrency    int           `yaml:"concurrency" validate:"min=1,max=100"`
	Timeout        time.Duration `yaml:"timeout"`
	ExcludeDomains []string      `yaml:"excludeDomains" validate:"dive,required"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Service:        "https://bsky.social",
		PLCDirectory:   "https://plc.directory",
		Layout:         "list",
		SearchDebounce: 150 * time.Millisecond,
		HTTPTimeout:    15 * time.Second,
		Log: LogConfig{
			Level: "info",
		},
		Storage: StoreConfig{
			Backend: BackendSQLite,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8080",
		},
		Cull: CullConfig{
			Concurrency:    10,
			Timeout:        10 * time.Second,
			ExcludeDomains: []string{"github.com", "gitlab.com"},
		},
	}
}

// LoadConfig reads config from the YAML file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	// Fields absent from the file keep their defaults.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	defaults := DefaultConfig()
	if config.SearchDebounce <= 0 {
		config.SearchDebounce = defaults.SearchDebounce
	}
	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = defaults.HTTPTimeout
	}
	if config.Cull.Concurrency <= 0 {
		config.Cull.Concurrency = defaults.Cull.Concurrency
	}
	if config.Cache.TTL <= 0 {
		config.Cache.TTL = defaults.Cache.TTL
	}

	return &config, nil
}

// SaveConfig writes config to the YAML file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides config fields from BOOMARKS_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("BOOMARKS_SERVICE"); v != "" {
		c.Service = v
	}
	if v := getenv("BOOMARKS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("BOOMARKS_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := getenv("BOOMARKS_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Cache.RedisDB = db
		}
	}
	if v := getenv("BOOMARKS_SERVE_ADDR"); v != "" {
		c.Serve.Addr = v
	}
}

// DefaultConfigFilePath returns the default config path: ~/.config/boomarks/config.yaml
func DefaultConfigFilePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultLogFilePath returns ~/.config/boomarks/boomarks.log.
func DefaultLogFilePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "boomarks.log"), nil
}

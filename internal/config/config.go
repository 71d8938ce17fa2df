package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/chandu-machineni/iconify/internal/cache"
	"github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/iconify"
	"github.com/chandu-machineni/iconify/internal/provider"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ICONIFY_"

// Config represents the complete iconify configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Upstream  UpstreamConfig  `yaml:"upstream" json:"upstream"`
	Search    SearchConfig    `yaml:"search" json:"search"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	Providers []provider.Spec `yaml:"providers" json:"providers"`
	Server    ServerConfig    `yaml:"server" json:"server"`
}

// UpstreamConfig configures the icon API client.
// Env: ICONIFY_UPSTREAM_*.
type UpstreamConfig struct {
	BaseURL         string        `yaml:"base_url" json:"base_url" env:"BASE_URL"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout" env:"TIMEOUT"`
	UserAgent       string        `yaml:"user_agent" json:"user_agent" env:"USER_AGENT"`
	MaxRetries      int           `yaml:"max_retries" json:"max_retries" env:"MAX_RETRIES"`
	RetryDelay      time.Duration `yaml:"retry_delay" json:"retry_delay" env:"RETRY_DELAY"`
	BreakerFailures int           `yaml:"breaker_failures" json:"breaker_failures" env:"BREAKER_FAILURES"`
	BreakerReset    time.Duration `yaml:"breaker_reset" json:"breaker_reset" env:"BREAKER_RESET"`
}

// SearchConfig configures the aggregation engine.
// Env: ICONIFY_SEARCH_*.
type SearchConfig struct {
	// MaxResults caps each merged result list.
	MaxResults int `yaml:"max_results" json:"max_results" env:"MAX_RESULTS"`

	// PageSize is the number of icons per display page.
	PageSize int `yaml:"page_size" json:"page_size" env:"PAGE_SIZE"`
}

// CacheConfig sizes the result cache.
// Env: ICONIFY_CACHE_*.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries" json:"max_entries" env:"MAX_ENTRIES"`
	EvictBatch int `yaml:"evict_batch" json:"evict_batch" env:"EVICT_BATCH"`
}

// ServerConfig configures the HTTP API and logging.
// Env: ICONIFY_SERVER_*.
type ServerConfig struct {
	Addr     string `yaml:"addr" json:"addr" env:"ADDR"`
	LogLevel string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	retry := errors.DefaultRetryConfig()
	return &Config{
		Version: 1,
		Upstream: UpstreamConfig{
			BaseURL:         iconify.DefaultBaseURL,
			Timeout:         iconify.DefaultTimeout,
			UserAgent:       iconify.DefaultUserAgent,
			MaxRetries:      retry.MaxRetries,
			RetryDelay:      retry.InitialDelay,
			BreakerFailures: 5,
			BreakerReset:    30 * time.Second,
		},
		Search: SearchConfig{
			MaxResults: 1000,
			PageSize:   100,
		},
		Cache: CacheConfig{
			MaxEntries: cache.DefaultMaxEntries,
			EvictBatch: cache.DefaultEvictBatch,
		},
		Providers: provider.DefaultSpecs(),
		Server: ServerConfig{
			Addr:     "127.0.0.1:8080",
			LogLevel: "info",
		},
	}
}

// RetryConfig returns the client retry policy described by u.
func (u UpstreamConfig) RetryConfig() errors.RetryConfig {
	cfg := errors.DefaultRetryConfig()
	cfg.MaxRetries = u.MaxRetries
	if u.RetryDelay > 0 {
		cfg.InitialDelay = u.RetryDelay
	}
	return cfg
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/iconify/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/iconify/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "iconify", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "iconify", "config.yaml")
	}
	return filepath.Join(home, ".config", "iconify", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration for the given working directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/iconify/config.yaml)
//  3. Project config (.iconify.yaml in dir)
//  4. Environment variables (ICONIFY_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := LoadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile attempts to load configuration from .iconify.yaml or .iconify.yml.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".iconify.yaml", ".iconify.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

// loadYAML parses path and merges its non-zero values into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(errors.ErrCodeConfigNotFound, "failed to read config file "+path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return errors.ConfigError("failed to parse config file "+path, err).
			WithSuggestion("check the YAML syntax, durations are written like 10s or 500ms")
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Upstream
	if other.Upstream.BaseURL != "" {
		c.Upstream.BaseURL = other.Upstream.BaseURL
	}
	if other.Upstream.Timeout != 0 {
		c.Upstream.Timeout = other.Upstream.Timeout
	}
	if other.Upstream.UserAgent != "" {
		c.Upstream.UserAgent = other.Upstream.UserAgent
	}
	// A zero in a file reads as unset; ICONIFY_UPSTREAM_MAX_RETRIES=0 disables retries
	if other.Upstream.MaxRetries != 0 {
		c.Upstream.MaxRetries = other.Upstream.MaxRetries
	}
	if other.Upstream.RetryDelay != 0 {
		c.Upstream.RetryDelay = other.Upstream.RetryDelay
	}
	if other.Upstream.BreakerFailures != 0 {
		c.Upstream.BreakerFailures = other.Upstream.BreakerFailures
	}
	if other.Upstream.BreakerReset != 0 {
		c.Upstream.BreakerReset = other.Upstream.BreakerReset
	}

	// Search
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.PageSize != 0 {
		c.Search.PageSize = other.Search.PageSize
	}

	// Cache
	if other.Cache.MaxEntries != 0 {
		c.Cache.MaxEntries = other.Cache.MaxEntries
	}
	if other.Cache.EvictBatch != 0 {
		c.Cache.EvictBatch = other.Cache.EvictBatch
	}

	// Providers replace the whole list; order is significant
	if len(other.Providers) > 0 {
		c.Providers = other.Providers
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies ICONIFY_* environment variable overrides.
// Only variables that are set change anything.
func (c *Config) applyEnvOverrides() error {
	sections := []struct {
		prefix string
		target any
	}{
		{"UPSTREAM_", &c.Upstream},
		{"SEARCH_", &c.Search},
		{"CACHE_", &c.Cache},
		{"SERVER_", &c.Server},
	}
	for _, s := range sections {
		if err := env.ParseWithOptions(s.target, env.Options{Prefix: EnvPrefix + s.prefix}); err != nil {
			return errors.ConfigError("invalid environment override", err)
		}
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("upstream.base_url must be an absolute http(s) URL, got %q", c.Upstream.BaseURL)
	}
	if c.Upstream.Timeout <= 0 {
		return invalid("upstream.timeout must be positive, got %s", c.Upstream.Timeout)
	}
	if c.Upstream.MaxRetries < 0 {
		return invalid("upstream.max_retries must be non-negative, got %d", c.Upstream.MaxRetries)
	}
	if c.Upstream.BreakerFailures < 1 {
		return invalid("upstream.breaker_failures must be at least 1, got %d", c.Upstream.BreakerFailures)
	}

	if c.Search.MaxResults < 1 {
		return invalid("search.max_results must be at least 1, got %d", c.Search.MaxResults)
	}
	if c.Search.PageSize < 1 {
		return invalid("search.page_size must be at least 1, got %d", c.Search.PageSize)
	}

	if c.Cache.MaxEntries < 1 {
		return invalid("cache.max_entries must be at least 1, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.EvictBatch < 1 || c.Cache.EvictBatch > c.Cache.MaxEntries {
		return invalid("cache.evict_batch must be between 1 and max_entries (%d), got %d", c.Cache.MaxEntries, c.Cache.EvictBatch)
	}

	if len(c.Providers) == 0 {
		return invalid("at least one provider is required")
	}
	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if strings.TrimSpace(p.ID) == "" {
			return invalid("providers[%d].id must not be empty", i)
		}
		if seen[p.ID] {
			return invalid("duplicate provider id %q", p.ID)
		}
		seen[p.ID] = true
		if p.PageSize < 0 || p.PopularLimit < 0 {
			return invalid("provider %q: page_size and popular_limit must be non-negative", p.ID)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return invalid("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf(format, args...), nil)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

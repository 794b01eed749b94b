package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Section is the top level key holding the application settings, next to
// prefab's own "server" section.
const Section = "transito"

// EnvPrefix is the environment prefix read by the CLI.
const EnvPrefix = "TRANSITO_"

// Provider kinds.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config represents the complete application configuration
type Config struct {
	Provider ProviderConfig `koanf:"provider"`
	Cache    CacheConfig    `koanf:"cache"`
	History  HistoryConfig  `koanf:"history"`
	Store    StoreConfig    `koanf:"store"`
	Monitor  MonitorConfig  `koanf:"monitor"`
	Search   SearchConfig   `koanf:"search"`
}

// ProviderConfig selects and configures the model backend
type ProviderConfig struct {
	Kind        string        `koanf:"kind"`
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	BaseURL     string        `koanf:"base_url"`
	Timeout     time.Duration `koanf:"timeout"`
	Temperature float32       `koanf:"temperature"`
}

// CacheConfig holds answer cache settings
type CacheConfig struct {
	Enabled         bool          `koanf:"enabled"`
	TTL             time.Duration `koanf:"ttl"`
	Capacity        int           `koanf:"capacity"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// HistoryConfig bounds the recent results list
type HistoryConfig struct {
	Size int `koanf:"size"`
}

// StoreConfig locates the saved search database
type StoreConfig struct {
	Path string `koanf:"path"`
}

// MonitorConfig controls background re-runs of saved searches
type MonitorConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// SearchConfig holds query defaults
type SearchConfig struct {
	DefaultQuery string `koanf:"default_query"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Kind:    ProviderGemini,
			Model:   "gemini-3-pro-preview",
			Timeout: 60 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             2 * time.Minute,
			Capacity:        256,
			CleanupInterval: 5 * time.Minute,
		},
		History: HistoryConfig{
			Size: 3,
		},
		Store: StoreConfig{
			Path: "~/.local/share/transito/transito.db",
		},
		Monitor: MonitorConfig{
			Enabled:  false,
			Interval: 10 * time.Minute,
		},
		Search: SearchConfig{
			DefaultQuery: "Trasporti e traffico vicino a me",
		},
	}
}

// Unmarshaler is satisfied by *koanf.Koanf, including prefab.Config.
type Unmarshaler interface {
	Unmarshal(path string, o interface{}) error
}

// Load unmarshals the transito section of k over the defaults and validates
// the result.
func Load(k Unmarshaler) (*Config, error) {
	cfg := DefaultConfig()
	if k != nil {
		if err := k.Unmarshal(Section, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s section: %w", Section, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewKoanf builds a koanf instance from an optional YAML file and TRANSITO_
// environment variables, env taking precedence. Nested keys use a double
// underscore: TRANSITO_PROVIDER__API_KEY sets transito.provider.api_key.
// TRANSITO_API_KEY is accepted as a shorthand for the same key.
func NewKoanf(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	return k, nil
}

func envKey(s string) string {
	name := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if name == "api_key" {
		return Section + ".provider.api_key"
	}
	return Section + "." + strings.ReplaceAll(name, "__", ".")
}

// Validate checks values that would otherwise fail later at request time.
func (c *Config) Validate() error {
	var errs []error

	switch c.Provider.Kind {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("provider.kind must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.Provider.Kind))
	}
	if c.Provider.Timeout <= 0 {
		errs = append(errs, errors.New("provider.timeout must be greater than 0"))
	}
	if c.History.Size <= 0 {
		errs = append(errs, errors.New("history.size must be greater than 0"))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be greater than 0"))
	}
	if c.Cache.Enabled && c.Cache.CleanupInterval <= 0 {
		errs = append(errs, errors.New("cache.cleanup_interval must be greater than 0"))
	}
	if c.Monitor.Enabled && c.Monitor.Interval <= 0 {
		errs = append(errs, errors.New("monitor.interval must be greater than 0"))
	}

	return errors.Join(errs...)
}

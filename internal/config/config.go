// Package config loads lyricfinder settings: defaults, then an optional
// YAML or TOML file, then environment variables. Command-line flags are
// applied on top by each binary.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/lyricfinder/pkg/lyrics/genai"
	"github.com/himanishpuri/lyricfinder/pkg/lyrics/ratelimit"
)

type Config struct {
	Port      string          `yaml:"port" toml:"port"`
	DBPath    string          `yaml:"db_path" toml:"db_path"`
	LogLevel  string          `yaml:"log_level" toml:"log_level"`
	CacheSize int             `yaml:"cache_size" toml:"cache_size"`
	AI        AIConfig        `yaml:"ai" toml:"ai"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	Scraper   ScraperConfig   `yaml:"scraper" toml:"scraper"`
}

type AIConfig struct {
	Provider       string `yaml:"provider" toml:"provider"`
	APIKey         string `yaml:"api_key" toml:"api_key"`
	BaseURL        string `yaml:"base_url" toml:"base_url"`
	Model          string `yaml:"model" toml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

type RateLimitConfig struct {
	CooldownSeconds int `yaml:"cooldown_seconds" toml:"cooldown_seconds"`
	WindowSeconds   int `yaml:"window_seconds" toml:"window_seconds"`
	MaxCalls        int `yaml:"max_calls" toml:"max_calls"`
}

type ScraperConfig struct {
	BaseURL           string  `yaml:"base_url" toml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int     `yaml:"burst" toml:"burst"`
}

var ErrUnknownFormat = errors.New("unknown config file format")

// Default returns the built-in configuration.
func Default() *Config {
	policy := ratelimit.DefaultPolicy()
	return &Config{
		Port:      "8080",
		DBPath:    "lyricfinder.sqlite3",
		LogLevel:  "info",
		CacheSize: 128,
		AI: AIConfig{
			Provider:       genai.ProviderGemini,
			TimeoutSeconds: int(genai.DefaultTimeout / time.Second),
		},
		RateLimit: RateLimitConfig{
			CooldownSeconds: int(policy.Cooldown / time.Second),
			WindowSeconds:   int(policy.Window / time.Second),
			MaxCalls:        policy.MaxCalls,
		},
		Scraper: ScraperConfig{
			RequestsPerSecond: 1,
			Burst:             3,
		},
	}
}

// Load reads path over the defaults. The format follows the extension
// (.yaml, .yml or .toml). An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LoadWithEnv is Load followed by ApplyEnv(os.Getenv).
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. Unset variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&c.AI.APIKey, "API_KEY")
	set(&c.AI.Provider, "LYRICS_AI_PROVIDER")
	set(&c.AI.Model, "LYRICS_AI_MODEL")
	set(&c.AI.BaseURL, "LYRICS_AI_BASE_URL")
	set(&c.DBPath, "LYRICS_DB_PATH")
	set(&c.Port, "PORT")
	set(&c.LogLevel, "LOG_LEVEL")

	if v := strings.TrimSpace(getenv("LYRICS_CACHE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LYRICS_CACHE_SIZE: %w", err)
		}
		c.CacheSize = n
	}
	return nil
}

// Validate rejects settings the service cannot run with. A missing API key
// is allowed: cached results can still be served.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if c.CacheSize < 0 {
		return errors.New("cache_size must not be negative")
	}
	if c.RateLimit.CooldownSeconds < 0 || c.RateLimit.WindowSeconds <= 0 || c.RateLimit.MaxCalls <= 0 {
		return errors.New("rate_limit: cooldown must be >= 0, window and max_calls > 0")
	}
	return nil
}

// ValidatePort checks the HTTP listen port. Only the server listens, so it
// is not part of Validate.
func (c *Config) ValidatePort() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	return nil
}

func (c *Config) Policy() ratelimit.Policy {
	return ratelimit.Policy{
		Cooldown: time.Duration(c.RateLimit.CooldownSeconds) * time.Second,
		Window:   time.Duration(c.RateLimit.WindowSeconds) * time.Second,
		MaxCalls: c.RateLimit.MaxCalls,
	}
}

func (c *Config) GenAI() genai.Config {
	return genai.Config{
		Provider: c.AI.Provider,
		APIKey:   c.AI.APIKey,
		BaseURL:  c.AI.BaseURL,
		Model:    c.AI.Model,
		Timeout:  time.Duration(c.AI.TimeoutSeconds) * time.Second,
	}
}

// ScraperLimit converts the scraper pacing settings for rate.NewLimiter.
func (c *Config) ScraperLimit() (rate.Limit, int) {
	if c.Scraper.RequestsPerSecond <= 0 {
		return rate.Inf, 1
	}
	burst := c.Scraper.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.Limit(c.Scraper.RequestsPerSecond), burst
}

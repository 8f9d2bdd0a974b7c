package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/himanishpuri/lyricfinder/pkg/lyrics/ratelimit"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ratelimit.DefaultPolicy(), cfg.Policy())
	assert.Equal(t, "gemini", cfg.GenAI().Provider)
	assert.Equal(t, 60*time.Second, cfg.GenAI().Timeout)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "lyricfinder.yaml", `
port: "9090"
db_path: /tmp/lyrics.db
ai:
  provider: openai
  model: gpt-test
rate_limit:
  max_calls: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/lyrics.db", cfg.DBPath)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-test", cfg.AI.Model)
	assert.Equal(t, 10, cfg.RateLimit.MaxCalls)
	// Unset keys keep their defaults.
	assert.Equal(t, 30, cfg.RateLimit.CooldownSeconds)
	assert.Equal(t, 128, cfg.CacheSize)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "lyricfinder.toml", `
log_level = "debug"
cache_size = 0

[ai]
api_key = "from-file"

[scraper]
requests_per_second = 0.5
burst = 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.Equal(t, "from-file", cfg.AI.APIKey)
	limit, burst := cfg.ScraperLimit()
	assert.Equal(t, rate.Limit(0.5), limit)
	assert.Equal(t, 2, burst)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "config.json", `{}`))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.toml", `port = [`))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"API_KEY":            "env-key",
		"LYRICS_DB_PATH":     "/data/lyrics.db",
		"LYRICS_AI_PROVIDER": "openai",
		"LYRICS_AI_MODEL":    "  gpt-env ",
		"PORT":               "3000",
		"LOG_LEVEL":          "warn",
		"LYRICS_CACHE_SIZE":  "16",
	}
	cfg := Default()
	cfg.AI.APIKey = "from-file"

	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "env-key", cfg.AI.APIKey)
	assert.Equal(t, "/data/lyrics.db", cfg.DBPath)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-env", cfg.AI.Model)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 16, cfg.CacheSize)

	bad := Default()
	assert.Error(t, bad.ApplyEnv(func(k string) string {
		if k == "LYRICS_CACHE_SIZE" {
			return "lots"
		}
		return ""
	}))
}

func TestApplyEnvKeepsValuesWhenUnset(t *testing.T) {
	cfg := Default()
	cfg.AI.APIKey = "from-file"
	require.NoError(t, cfg.ApplyEnv(func(string) string { return "" }))
	assert.Equal(t, "from-file", cfg.AI.APIKey)
	assert.Equal(t, "8080", cfg.Port)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty db path":  func(c *Config) { c.DBPath = "" },
		"zero max calls": func(c *Config) { c.RateLimit.MaxCalls = 0 },
		"negative cache": func(c *Config) { c.CacheSize = -1 },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestValidateIgnoresPort(t *testing.T) {
	cfg := Default()
	cfg.Port = "http"
	assert.NoError(t, cfg.Validate())
}

func TestValidatePort(t *testing.T) {
	for _, p := range []string{"8080", "1", "65535"} {
		cfg := Default()
		cfg.Port = p
		assert.NoError(t, cfg.ValidatePort(), p)
	}
	for _, p := range []string{"http", "", "0", "65536", "-1"} {
		cfg := Default()
		cfg.Port = p
		assert.Error(t, cfg.ValidatePort(), p)
	}
}

func TestScraperLimitUnpaced(t *testing.T) {
	cfg := Default()
	cfg.Scraper.RequestsPerSecond = 0
	limit, burst := cfg.ScraperLimit()
	assert.Equal(t, rate.Inf, limit)
	assert.Equal(t, 1, burst)
}

package lyrics

import (
	"time"

	"github.com/himanishpuri/lyricfinder/pkg/lyrics/ratelimit"
)

type Config struct {
	DBPath       string
	CacheSize    int
	Policy       ratelimit.Policy
	Logger       Logger
	Store        Store
	Generator    Generator
	GeneratorErr error
	Clock        func() time.Time
	Observer     StateObserver
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithCacheSize sets how many results are kept in memory. 0 disables it.
func WithCacheSize(n int) Option {
	return func(c *Config) {
		c.CacheSize = n
	}
}

func WithPolicy(p ratelimit.Policy) Option {
	return func(c *Config) {
		c.Policy = p
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStore(store Store) Option {
	return func(c *Config) {
		c.Store = store
	}
}

func WithGenerator(gen Generator) Option {
	return func(c *Config) {
		c.Generator = gen
	}
}

// WithGeneratorError records why no generator could be built. Searches
// that need the AI then fail with KindConfiguration; cached lookups still work.
func WithGeneratorError(err error) Option {
	return func(c *Config) {
		c.GeneratorErr = err
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Clock = now
	}
}

func WithStateObserver(obs StateObserver) Option {
	return func(c *Config) {
		c.Observer = obs
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:    "lyricfinder.sqlite3",
		CacheSize: 128,
		Policy:    ratelimit.DefaultPolicy(),
		Clock:     time.Now,
	}
}

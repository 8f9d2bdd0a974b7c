// Package app wires configuration into a lyrics.Service and scraper for the
// server and CLI binaries.
package app

import (
	"fmt"

	"github.com/himanishpuri/lyricfinder/internal/config"
	"github.com/himanishpuri/lyricfinder/pkg/logger"
	"github.com/himanishpuri/lyricfinder/pkg/lyrics"
	"github.com/himanishpuri/lyricfinder/pkg/lyrics/genai"
	"github.com/himanishpuri/lyricfinder/pkg/lyrics/scraper"
)

// ConfigureLogger applies cfg.LogLevel to the process-wide logger.
func ConfigureLogger(cfg *config.Config) (*logger.Logger, error) {
	log := logger.GetLogger()
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return log, err
	}
	log.SetLevel(level)
	return log, nil
}

// NewService builds the search service. A generator that cannot be built
// (no API key, unknown provider) is not fatal: the service reports it on
// the first search that needs the AI.
func NewService(cfg *config.Config, log *logger.Logger) (lyrics.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	opts := []lyrics.Option{
		lyrics.WithDBPath(cfg.DBPath),
		lyrics.WithCacheSize(cfg.CacheSize),
		lyrics.WithPolicy(cfg.Policy()),
		lyrics.WithLogger(log.With("[lyrics]")),
	}

	gen, err := genai.New(cfg.GenAI())
	if err != nil {
		log.Warnf("AI client unavailable: %v", err)
		opts = append(opts, lyrics.WithGeneratorError(err))
	} else {
		log.Debugf("Using %s provider", gen.Name())
		opts = append(opts, lyrics.WithGenerator(gen))
	}

	return lyrics.NewService(opts...)
}

// NewScraper builds the page scraper with the configured pacing.
func NewScraper(cfg *config.Config) *scraper.Client {
	limit, burst := cfg.ScraperLimit()
	opts := []scraper.Option{scraper.WithRateLimit(limit, burst)}
	if cfg.Scraper.BaseURL != "" {
		opts = append(opts, scraper.WithBaseURL(cfg.Scraper.BaseURL))
	}
	return scraper.New(opts...)
}

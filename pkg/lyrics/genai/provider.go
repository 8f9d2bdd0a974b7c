// Package genai holds the generative-AI backends used for lyric lookups.
// Every provider returns a models.GenerateResponse so the parser never sees
// vendor types.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/himanishpuri/lyricfinder/pkg/models"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultOpenAIModel   = "gpt-4o-mini"

	DefaultTimeout = 60 * time.Second
)

var (
	ErrMissingAPIKey       = errors.New("API key is not configured")
	ErrUnsupportedProvider = errors.New("unsupported AI provider")
)

// Generator is satisfied by every provider in this package.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*models.GenerateResponse, error)
	Name() string
}

// Config selects and configures a provider. Empty fields take the
// provider's defaults.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// New builds the provider named by cfg.Provider (gemini when empty).
func New(cfg Config) (Generator, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		return NewGeminiProvider(cfg)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

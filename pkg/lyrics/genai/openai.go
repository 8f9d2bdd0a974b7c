package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/himanishpuri/lyricfinder/pkg/models"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
// There is no web grounding, so responses never carry citations.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for openai", ErrMissingAPIKey)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.HTTPClient = &http.Client{Timeout: timeout}
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (*models.GenerateResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	out := &models.GenerateResponse{Citations: []models.Citation{}}
	if len(resp.Choices) == 0 {
		return out, nil
	}

	choice := resp.Choices[0]
	// Finish reasons are upper-case across providers ("STOP").
	out.FinishReason = strings.ToUpper(string(choice.FinishReason))
	if choice.Message.Content != "" {
		text := choice.Message.Content
		out.Text = &text
	}
	return out, nil
}

package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/himanishpuri/lyricfinder/pkg/models"
)

// GeminiProvider calls the Gemini generateContent REST endpoint with the
// google_search tool enabled, so answers come back with grounding sources.
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// APIError is a non-200 answer from the Gemini API. Its text keeps the
// numeric code and the status name so callers can match on either.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini api error %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini api error %d: %s", e.StatusCode, e.Message)
}

func NewGeminiProvider(cfg Config) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for gemini", ErrMissingAPIKey)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &GeminiProvider{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (g *GeminiProvider) Name() string {
	return ProviderGemini
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools,omitempty"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content           geminiContent `json:"content"`
		FinishReason      string        `json:"finishReason"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends prompt as a single user turn.
func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (*models.GenerateResponse, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		Tools:    []geminiTool{{GoogleSearch: &struct{}{}}},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeGeminiError(resp)
	}

	var apiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return apiResp.toModel(), nil
}

func decodeGeminiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body geminiErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		code := body.Error.Code
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{StatusCode: code, Status: body.Error.Status, Message: body.Error.Message}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
}

// toModel keeps the first candidate. Text stays nil when it has no text parts.
func (r *geminiResponse) toModel() *models.GenerateResponse {
	out := &models.GenerateResponse{Citations: []models.Citation{}}

	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil {
			out.FinishReason = r.PromptFeedback.BlockReason
		}
		return out
	}

	cand := r.Candidates[0]
	out.FinishReason = cand.FinishReason

	var b strings.Builder
	hasText := false
	for _, p := range cand.Content.Parts {
		if p.Text == "" {
			continue
		}
		hasText = true
		b.WriteString(p.Text)
	}
	if hasText {
		text := b.String()
		out.Text = &text
	}

	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			out.Citations = append(out.Citations, models.Citation{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	return out
}

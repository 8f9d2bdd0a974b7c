package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/lyricfinder/pkg/models"
)

func TestNewSelectsProvider(t *testing.T) {
	g, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, g.Name())

	g, err = New(Config{Provider: "OpenAI", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, g.Name())

	_, err = New(Config{Provider: "watson", APIKey: "k"})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	_, err = New(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = New(Config{Provider: ProviderOpenAI})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func newGeminiServer(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(Config{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "test-model"})
	require.NoError(t, err)
	return p
}

func TestGeminiGenerate(t *testing.T) {
	var gotBody geminiRequest
	p := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Song Title: "}, {"text": "Spring Day"}]},
				"finishReason": "STOP",
				"groundingMetadata": {"groundingChunks": [
					{"web": {"uri": "https://a.example", "title": "A"}},
					{"retrievedContext": {}},
					{"web": {"uri": "https://b.example"}}
				]}
			}]
		}`)
	})

	resp, err := p.Generate(context.Background(), "the prompt")
	require.NoError(t, err)

	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "the prompt", gotBody.Contents[0].Parts[0].Text)
	require.Len(t, gotBody.Tools, 1)
	assert.NotNil(t, gotBody.Tools[0].GoogleSearch)

	require.NotNil(t, resp.Text)
	assert.Equal(t, "Song Title: Spring Day", *resp.Text)
	assert.Equal(t, "STOP", resp.FinishReason)
	assert.Equal(t, []models.Citation{
		{URI: "https://a.example", Title: "A"},
		{URI: "https://b.example"},
	}, resp.Citations)
}

func TestGeminiGenerateWithoutText(t *testing.T) {
	p := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates": [{"content": {"parts": []}, "finishReason": "RECITATION"}]}`)
	})

	resp, err := p.Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, resp.Text)
	assert.Equal(t, "RECITATION", resp.FinishReason)
	assert.Empty(t, resp.Citations)
}

func TestGeminiGenerateBlockedPrompt(t *testing.T) {
	p := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"promptFeedback": {"blockReason": "SAFETY"}}`)
	})

	resp, err := p.Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, resp.Text)
	assert.Equal(t, "SAFETY", resp.FinishReason)
}

func TestGeminiAPIError(t *testing.T) {
	p := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error": {"code": 429, "message": "Quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`)
	})

	_, err := p.Generate(context.Background(), "x")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 429, apiErr.StatusCode)
	assert.Equal(t, "RESOURCE_EXHAUSTED", apiErr.Status)
	assert.Equal(t, "gemini api error 429 RESOURCE_EXHAUSTED: Quota exceeded", err.Error())
}

func TestGeminiNonJSONError(t *testing.T) {
	p := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := p.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, "gemini api error 502: bad gateway", err.Error())
}

func newOpenAIServer(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "test-model"})
	require.NoError(t, err)
	return p
}

func TestOpenAIGenerate(t *testing.T) {
	p := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.True(t, strings.HasPrefix(req.Messages[0].Content, "find"))
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "c1", "object": "chat.completion", "model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Song Title: Hello"}, "finish_reason": "stop"}]}`)
	})

	resp, err := p.Generate(context.Background(), "find hello")
	require.NoError(t, err)
	require.NotNil(t, resp.Text)
	assert.Equal(t, "Song Title: Hello", *resp.Text)
	assert.Equal(t, "STOP", resp.FinishReason)
	assert.NotNil(t, resp.Citations)
	assert.Empty(t, resp.Citations)
}

func TestOpenAIErrorKeepsStatusCode(t *testing.T) {
	p := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error": {"message": "Rate limit reached", "type": "requests", "code": "rate_limit_exceeded"}}`)
	})

	_, err := p.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

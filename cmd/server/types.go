package main

import (
	"fmt"
	"strings"

	"github.com/himanishpuri/lyricfinder/pkg/lyrics"
	"github.com/himanishpuri/lyricfinder/pkg/models"
)

// MaxQueryLength bounds search and rename input.
const MaxQueryLength = 200

// SearchRequest is the request body for POST /api/search
type SearchRequest struct {
	Query string `json:"query"`

	// FromHistory re-opens a history entry: the cached result is used when present.
	FromHistory bool `json:"fromHistory,omitempty"`
}

// Validate checks if the request is valid
func (r *SearchRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return fmt.Errorf("query is required")
	}
	if len(r.Query) > MaxQueryLength {
		return fmt.Errorf("query is too long (maximum: %d characters)", MaxQueryLength)
	}
	return nil
}

func (r *SearchRequest) Mode() lyrics.SearchMode {
	if r.FromHistory {
		return lyrics.ModeHistory
	}
	return lyrics.ModeTyped
}

// SearchResponse is the response for a completed search
type SearchResponse struct {
	Query     string                      `json:"query"`
	Result    *models.LyricSearchResult   `json:"result"`
	FromCache bool                        `json:"fromCache"`
	Warning   string                      `json:"warning,omitempty"`
	History   []models.SearchHistoryEntry `json:"history,omitempty"`
}

// RenameRequest is the request body for PUT /api/history/{id}
type RenameRequest struct {
	Query string `json:"query"`
}

func (r *RenameRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return fmt.Errorf("query is required")
	}
	if len(r.Query) > MaxQueryLength {
		return fmt.Errorf("query is too long (maximum: %d characters)", MaxQueryLength)
	}
	return nil
}

// HistoryResponse is the response for GET /api/history
type HistoryResponse struct {
	Entries []models.SearchHistoryEntry `json:"entries"`
	Count   int                         `json:"count"`
}

// CachedResultResponse is the response for GET /api/history/{id}
type CachedResultResponse struct {
	ID     string                    `json:"id"`
	Result *models.LyricSearchResult `json:"result"`
}

// MessageResponse acknowledges a mutation
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message,omitempty"`
	Code              int    `json:"code,omitempty"`
	Kind              string `json:"kind,omitempty"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

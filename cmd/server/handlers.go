package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/lyricfinder/pkg/logger"
	"github.com/himanishpuri/lyricfinder/pkg/lyrics"
	"github.com/himanishpuri/lyricfinder/pkg/lyrics/scraper"
	"github.com/himanishpuri/lyricfinder/pkg/models"
)

// searchTimeout bounds one AI search, including persistence.
const searchTimeout = 90 * time.Second

// Scraper is the legacy page lookup used by GET /lyrics.
type Scraper interface {
	Lookup(ctx context.Context, query string) (*models.ScrapedLyrics, error)
}

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service lyrics.Service
	scraper Scraper
	config  *ServerConfig
	log     lyrics.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	DBPath         string
	AIProvider     string
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service lyrics.Service, scr Scraper, config *ServerConfig) *Server {
	return &Server{
		service: service,
		scraper: scr,
		config:  config,
		log:     logger.GetLogger().With("[http]"),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// respondServiceError maps a *lyrics.SearchError to a status code. Only the
// user-facing message is sent.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	var se *lyrics.SearchError
	if !errors.As(err, &se) {
		s.respondError(w, http.StatusInternalServerError, "An unknown error occurred.")
		return
	}

	status := http.StatusInternalServerError
	switch se.Kind {
	case lyrics.KindInvalidInput:
		status = http.StatusBadRequest
	case lyrics.KindConfiguration:
		status = http.StatusServiceUnavailable
	case lyrics.KindUpstream, lyrics.KindMalformedResponse:
		status = http.StatusBadGateway
	case lyrics.KindContentRestricted:
		status = http.StatusUnprocessableEntity
	}

	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: se.Message,
		Code:    status,
		Kind:    se.Kind.String(),
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "lyricfinder API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":        "GET /health",
			"search":        "GET /api/search?q={query}&history={bool} | POST /api/search",
			"history":       "GET /api/history?q={filter}",
			"clearHistory":  "DELETE /api/history",
			"cachedResult":  "GET /api/history/{id}",
			"renameHistory": "PUT /api/history/{id}",
			"deleteHistory": "DELETE /api/history/{id}",
			"limits":        "GET /api/limits",
			"scrape":        "GET /lyrics?title={artist title}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":     "healthy",
		"service":    "lyricfinder",
		"aiProvider": s.config.AIProvider,
	})
}

// handleSearch handles GET and POST /api/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	switch r.Method {
	case http.MethodGet:
		req.Query = r.URL.Query().Get("q")
		req.FromHistory, _ = strconv.ParseBool(r.URL.Query().Get("history"))
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.log.Errorf("Failed to decode request: %v", err)
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), searchTimeout)
	defer cancel()

	out, err := s.service.Search(ctx, req.Query, req.Mode())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	switch out.State {
	case lyrics.StateBlocked:
		w.Header().Set("Retry-After", strconv.Itoa(out.RemainingSeconds))
		s.respondJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error:             http.StatusText(http.StatusTooManyRequests),
			Message:           out.Message,
			Code:              http.StatusTooManyRequests,
			RetryAfterSeconds: out.RemainingSeconds,
		})
	case lyrics.StateSuperseded:
		s.respondError(w, http.StatusConflict, "Search was superseded by a newer search.")
	default:
		s.respondJSON(w, http.StatusOK, SearchResponse{
			Query:     out.Query,
			Result:    out.Result,
			FromCache: out.FromCache,
			Warning:   out.Warning,
			History:   out.History,
		})
	}
}

// handleHistory routes requests to /api/history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListHistory(w, r)
	case http.MethodDelete:
		s.handleClearHistory(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleHistoryItem routes requests to /api/history/{id}
func (s *Server) handleHistoryItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/history/"))
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "History ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetCachedResult(w, r, id)
	case http.MethodPut:
		s.handleRenameHistory(w, r, id)
	case http.MethodDelete:
		s.handleDeleteHistory(w, r, id)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleListHistory handles GET /api/history. A non-blank q keeps only the
// entries whose query contains it, ignoring case.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.SearchHistory(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.SearchHistoryEntry{}
	}
	s.respondJSON(w, http.StatusOK, HistoryResponse{Entries: entries, Count: len(entries)})
}

// handleClearHistory handles DELETE /api/history
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearHistory(r.Context()); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, MessageResponse{Message: "Search history cleared"})
}

// handleGetCachedResult handles GET /api/history/{id}
func (s *Server) handleGetCachedResult(w http.ResponseWriter, r *http.Request, id string) {
	res, ok, err := s.service.CachedResult(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if !ok {
		s.respondError(w, http.StatusNotFound, "No cached result for "+strconv.Quote(id))
		return
	}
	s.respondJSON(w, http.StatusOK, CachedResultResponse{ID: models.NormalizeQuery(id), Result: res})
}

// handleRenameHistory handles PUT /api/history/{id}
func (s *Server) handleRenameHistory(w http.ResponseWriter, r *http.Request, id string) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.RenameHistoryItem(r.Context(), id, req.Query); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.handleListHistory(w, r)
}

// handleDeleteHistory handles DELETE /api/history/{id}
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.DeleteHistoryItem(r.Context(), id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, MessageResponse{Message: "History item deleted", ID: models.NormalizeQuery(id)})
}

// handleLimits handles GET /api/limits
func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	status, err := s.service.RateLimitStatus(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

// handleScrape handles GET /lyrics?title=artist+title
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query().Get("title")
	if len(strings.Fields(query)) < 2 {
		s.respondError(w, http.StatusBadRequest, scraper.ErrBadQuery.Error())
		return
	}

	res, err := s.scraper.Lookup(r.Context(), query)
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusOK, res)
	case errors.Is(err, scraper.ErrNoRomaji):
		s.respondError(w, http.StatusNotFound, scraper.ErrNoRomaji.Error())
	case errors.Is(err, scraper.ErrNotFound):
		s.log.Warnf("Scrape for %q failed: %v", query, err)
		s.respondError(w, http.StatusNotFound, scraper.ErrNotFound.Error())
	case errors.Is(err, scraper.ErrBadQuery):
		s.respondError(w, http.StatusBadRequest, scraper.ErrBadQuery.Error())
	default:
		s.log.Errorf("Scrape for %q failed: %v", query, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process request")
	}
}

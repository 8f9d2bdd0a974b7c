package lyrics

import (
	"context"

	"github.com/himanishpuri/lyricfinder/pkg/models"
)

type Service interface {
	Search(ctx context.Context, query string, mode SearchMode) (*SearchOutcome, error)
	ListHistory(ctx context.Context) ([]models.SearchHistoryEntry, error)
	SearchHistory(ctx context.Context, term string) ([]models.SearchHistoryEntry, error)
	CachedResult(ctx context.Context, query string) (*models.LyricSearchResult, bool, error)
	DeleteHistoryItem(ctx context.Context, id string) error
	RenameHistoryItem(ctx context.Context, oldQuery, newQuery string) error
	ClearHistory(ctx context.Context) error
	RateLimitStatus(ctx context.Context) (LimitStatus, error)
	Close() error
}

// Store is the local persistence the service needs. Queries are normalized
// by the store.
type Store interface {
	AddOrUpdateHistory(ctx context.Context, query string, nowMs int64) error
	ListHistory(ctx context.Context) ([]models.SearchHistoryEntry, error)
	SearchHistory(ctx context.Context, term string) ([]models.SearchHistoryEntry, error)
	SaveResult(ctx context.Context, query string, result models.LyricSearchResult) error
	GetCachedResult(ctx context.Context, query string) (*models.LyricSearchResult, bool, error)
	CachedResultVersion(ctx context.Context, query string) (int64, bool, error)
	DeleteHistoryItem(ctx context.Context, id string) error
	RenameHistoryItem(ctx context.Context, oldQuery, newQuery string) (bool, error)
	ClearAll(ctx context.Context) error
	LoadRateLimitState(ctx context.Context) (models.RateLimitState, error)
	SaveRateLimitState(ctx context.Context, state models.RateLimitState) error
	Close() error
}

// Generator sends one prompt to a generative model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*models.GenerateResponse, error)
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

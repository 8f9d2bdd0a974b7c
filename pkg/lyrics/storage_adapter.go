package lyrics

import (
	"context"
	"fmt"

	"github.com/himanishpuri/lyricfinder/pkg/lyrics/storage"
	"github.com/himanishpuri/lyricfinder/pkg/models"
)

// storageAdapter adapts storage.DBClient to the Store interface and tags
// every failure with ErrStorage.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStore opens (creating if needed) the SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (Store, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, wrapStorage(err)
	}
	return &storageAdapter{db: db}, nil
}

func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func (s *storageAdapter) AddOrUpdateHistory(ctx context.Context, query string, nowMs int64) error {
	return wrapStorage(s.db.AddOrUpdateHistory(ctx, query, nowMs))
}

func (s *storageAdapter) ListHistory(ctx context.Context) ([]models.SearchHistoryEntry, error) {
	entries, err := s.db.ListHistory(ctx)
	return entries, wrapStorage(err)
}

func (s *storageAdapter) SearchHistory(ctx context.Context, term string) ([]models.SearchHistoryEntry, error) {
	entries, err := s.db.SearchHistory(ctx, term)
	return entries, wrapStorage(err)
}

func (s *storageAdapter) SaveResult(ctx context.Context, query string, result models.LyricSearchResult) error {
	return wrapStorage(s.db.SaveResult(ctx, query, result))
}

func (s *storageAdapter) GetCachedResult(ctx context.Context, query string) (*models.LyricSearchResult, bool, error) {
	res, ok, err := s.db.GetCachedResult(ctx, query)
	return res, ok, wrapStorage(err)
}

func (s *storageAdapter) CachedResultVersion(ctx context.Context, query string) (int64, bool, error) {
	v, ok, err := s.db.CachedResultVersion(ctx, query)
	return v, ok, wrapStorage(err)
}

func (s *storageAdapter) DeleteHistoryItem(ctx context.Context, id string) error {
	return wrapStorage(s.db.DeleteHistoryItem(ctx, id))
}

func (s *storageAdapter) RenameHistoryItem(ctx context.Context, oldQuery, newQuery string) (bool, error) {
	found, err := s.db.RenameHistoryItem(ctx, oldQuery, newQuery)
	return found, wrapStorage(err)
}

func (s *storageAdapter) ClearAll(ctx context.Context) error {
	return wrapStorage(s.db.ClearAll(ctx))
}

func (s *storageAdapter) LoadRateLimitState(ctx context.Context) (models.RateLimitState, error) {
	st, err := s.db.LoadRateLimitState(ctx)
	return st, wrapStorage(err)
}

func (s *storageAdapter) SaveRateLimitState(ctx context.Context, state models.RateLimitState) error {
	return wrapStorage(s.db.SaveRateLimitState(ctx, state))
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

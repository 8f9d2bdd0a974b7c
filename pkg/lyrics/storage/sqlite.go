package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/lyricfinder/pkg/models"
	"github.com/himanishpuri/lyricfinder/pkg/utils"
)

const DefaultDBFile = "lyricfinder.sqlite3"
const errDBClientNil = "db client is nil"

// rateLimitRowID is the primary key of the single limiter row.
const rateLimitRowID = 1

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// HistoryRecord is one row of search_history. ID is the normalized query.
type HistoryRecord struct {
	ID        string `gorm:"primaryKey"`
	Query     string
	Timestamp int64 `gorm:"index:idx_history_timestamp"`
}

func (HistoryRecord) TableName() string { return "search_history" }

// ResultRecord is one row of results_cache, keyed like HistoryRecord.
// Version changes on every write of the row.
type ResultRecord struct {
	ID        string                   `gorm:"primaryKey"`
	Result    models.LyricSearchResult `gorm:"type:text;serializer:json"`
	Version   int64                    `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (ResultRecord) TableName() string { return "results_cache" }

type RateLimitRecord struct {
	ID                      uint `gorm:"primaryKey;autoIncrement:false"`
	LastAPICallTimeMs       *int64
	APICallTimestampsInHour []int64 `gorm:"type:text;serializer:json"`
}

func (RateLimitRecord) TableName() string { return "rate_limit_state" }

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("LYRICS_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := utils.EnsureParentDir(dbPath); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=busy_timeout(5000)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// SQLite serializes writers anyway; one connection keeps transactions simple.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&HistoryRecord{}, &ResultRecord{}, &RateLimitRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *DBClient) conn(ctx context.Context) (*gorm.DB, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	return c.DB.WithContext(ctx), nil
}

// AddOrUpdateHistory upserts the entry for query, stamping it with nowMs.
func (c *DBClient) AddOrUpdateHistory(ctx context.Context, query string, nowMs int64) error {
	db, err := c.conn(ctx)
	if err != nil {
		return err
	}
	rec := HistoryRecord{ID: models.NormalizeQuery(query), Query: query, Timestamp: nowMs}
	if err := upsert(db, &rec); err != nil {
		return fmt.Errorf("upserting history %q: %w", rec.ID, err)
	}
	return nil
}

// ListHistory returns every entry, most recent first.
func (c *DBClient) ListHistory(ctx context.Context) ([]models.SearchHistoryEntry, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []HistoryRecord
	if err := db.Order("timestamp DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	out := make([]models.SearchHistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.SearchHistoryEntry{ID: r.ID, Query: r.Query, Timestamp: r.Timestamp})
	}
	return out, nil
}

// SearchHistory returns the entries whose query contains term, ignoring
// case, most recent first. A blank term returns every entry.
func (c *DBClient) SearchHistory(ctx context.Context, term string) ([]models.SearchHistoryEntry, error) {
	entries, err := c.ListHistory(ctx)
	if err != nil || strings.TrimSpace(term) == "" {
		return entries, err
	}

	// Filtered here rather than with LIKE: SQLite only folds ASCII case.
	term = strings.ToLower(term)
	out := entries[:0]
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Query), term) {
			out = append(out, e)
		}
	}
	return out, nil
}

// SaveResult overwrites the cached result for query.
func (c *DBClient) SaveResult(ctx context.Context, query string, result models.LyricSearchResult) error {
	db, err := c.conn(ctx)
	if err != nil {
		return err
	}
	rec := ResultRecord{ID: models.NormalizeQuery(query), Result: result, Version: nextVersion()}
	if err := upsert(db, &rec); err != nil {
		return fmt.Errorf("saving result %q: %w", rec.ID, err)
	}
	return nil
}

// CachedResultVersion returns the version of the cached result for query
// without decoding it. ok is false when there is no cached result.
func (c *DBClient) CachedResultVersion(ctx context.Context, query string) (version int64, ok bool, err error) {
	db, err := c.conn(ctx)
	if err != nil {
		return 0, false, err
	}
	var versions []int64
	err = db.Model(&ResultRecord{}).
		Where("id = ?", models.NormalizeQuery(query)).
		Limit(1).
		Pluck("version", &versions).Error
	if err != nil {
		return 0, false, fmt.Errorf("reading result version: %w", err)
	}
	if len(versions) == 0 {
		return 0, false, nil
	}
	return versions[0], true, nil
}

// GetCachedResult returns the cached result for query. A miss is (nil, false, nil).
func (c *DBClient) GetCachedResult(ctx context.Context, query string) (*models.LyricSearchResult, bool, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, false, err
	}
	var rec ResultRecord
	err = db.Where("id = ?", models.NormalizeQuery(query)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached result: %w", err)
	}
	return &rec.Result, true, nil
}

// DeleteHistoryItem removes the history entry and its cached result together.
// Deleting an unknown id is not an error.
func (c *DBClient) DeleteHistoryItem(ctx context.Context, id string) error {
	db, err := c.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(&HistoryRecord{}).Error; err != nil {
			return fmt.Errorf("deleting history %q: %w", id, err)
		}
		if err := tx.Where("id = ?", id).Delete(&ResultRecord{}).Error; err != nil {
			return fmt.Errorf("deleting cached result %q: %w", id, err)
		}
		return nil
	})
}

// RenameHistoryItem moves the entry for oldQuery to newQuery, keeping its
// timestamp and cached result. found is false when oldQuery has no entry;
// nothing is changed in that case.
func (c *DBClient) RenameHistoryItem(ctx context.Context, oldQuery, newQuery string) (found bool, err error) {
	db, err := c.conn(ctx)
	if err != nil {
		return false, err
	}

	oldID := models.NormalizeQuery(oldQuery)
	newID := models.NormalizeQuery(newQuery)

	err = db.Transaction(func(tx *gorm.DB) error {
		var entry HistoryRecord
		err := tx.Where("id = ?", oldID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading history %q: %w", oldID, err)
		}
		found = true

		if oldID == newID {
			return tx.Model(&HistoryRecord{}).Where("id = ?", oldID).Update("query", newQuery).Error
		}

		var cached ResultRecord
		hasCached := true
		if err := tx.Where("id = ?", oldID).First(&cached).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("reading cached result %q: %w", oldID, err)
			}
			hasCached = false
		}

		if err := tx.Where("id = ?", oldID).Delete(&HistoryRecord{}).Error; err != nil {
			return fmt.Errorf("deleting history %q: %w", oldID, err)
		}
		if err := tx.Where("id = ?", oldID).Delete(&ResultRecord{}).Error; err != nil {
			return fmt.Errorf("deleting cached result %q: %w", oldID, err)
		}

		moved := HistoryRecord{ID: newID, Query: newQuery, Timestamp: entry.Timestamp}
		if err := upsert(tx, &moved); err != nil {
			return fmt.Errorf("writing history %q: %w", newID, err)
		}
		if hasCached {
			carried := ResultRecord{ID: newID, Result: cached.Result, Version: nextVersion()}
			if err := upsert(tx, &carried); err != nil {
				return fmt.Errorf("writing cached result %q: %w", newID, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// ClearAll empties history and the result cache. Limiter state is kept.
func (c *DBClient) ClearAll(ctx context.Context) error {
	db, err := c.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&HistoryRecord{}).Error; err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ResultRecord{}).Error; err != nil {
			return fmt.Errorf("clearing result cache: %w", err)
		}
		return nil
	})
}

// LoadRateLimitState returns the persisted limiter state, or the zero state
// if none was saved yet.
func (c *DBClient) LoadRateLimitState(ctx context.Context) (models.RateLimitState, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return models.RateLimitState{}, err
	}
	var rec RateLimitRecord
	err = db.Where("id = ?", rateLimitRowID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RateLimitState{APICallTimestampsInHour: []int64{}}, nil
	}
	if err != nil {
		return models.RateLimitState{}, fmt.Errorf("reading rate limit state: %w", err)
	}
	ts := rec.APICallTimestampsInHour
	if ts == nil {
		ts = []int64{}
	}
	return models.RateLimitState{LastAPICallTimeMs: rec.LastAPICallTimeMs, APICallTimestampsInHour: ts}, nil
}

func (c *DBClient) SaveRateLimitState(ctx context.Context, state models.RateLimitState) error {
	db, err := c.conn(ctx)
	if err != nil {
		return err
	}
	rec := RateLimitRecord{
		ID:                      rateLimitRowID,
		LastAPICallTimeMs:       state.LastAPICallTimeMs,
		APICallTimestampsInHour: state.APICallTimestampsInHour,
	}
	if rec.APICallTimestampsInHour == nil {
		rec.APICallTimestampsInHour = []int64{}
	}
	if err := upsert(db, &rec); err != nil {
		return fmt.Errorf("saving rate limit state: %w", err)
	}
	return nil
}

func upsert(db *gorm.DB, value any) error {
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error
}

var lastVersion atomic.Int64

// nextVersion returns a result version that is strictly increasing within
// the process and time-ordered across processes.
func nextVersion() int64 {
	for {
		prev := lastVersion.Load()
		v := time.Now().UnixNano()
		if v <= prev {
			v = prev + 1
		}
		if lastVersion.CompareAndSwap(prev, v) {
			return v
		}
	}
}

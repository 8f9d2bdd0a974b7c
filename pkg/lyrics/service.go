package lyrics

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/himanishpuri/lyricfinder/pkg/logger"
	"github.com/himanishpuri/lyricfinder/pkg/lyrics/parser"
	"github.com/himanishpuri/lyricfinder/pkg/lyrics/ratelimit"
	"github.com/himanishpuri/lyricfinder/pkg/models"
)

// cachedResult is an in-memory copy of a results_cache row. It is only
// served while the store still reports the same version.
type cachedResult struct {
	result  models.LyricSearchResult
	version int64
}

// lyricsService is the default implementation of the Service interface.
type lyricsService struct {
	store    Store
	gen      Generator
	genErr   error
	log      Logger
	policy   ratelimit.Policy
	clock    func() time.Time
	observer StateObserver

	// results fronts store.GetCachedResult; nil when disabled.
	results *lru.Cache[string, cachedResult]

	seq     atomic.Uint64
	limitMu sync.Mutex
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	var results *lru.Cache[string, cachedResult]
	if cfg.CacheSize > 0 {
		var err error
		results, err = lru.New[string, cachedResult](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
	}

	store := cfg.Store
	if store == nil {
		var err error
		store, err = NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	genErr := cfg.GeneratorErr
	if cfg.Generator != nil {
		genErr = nil
	} else if genErr == nil {
		genErr = ErrNoGenerator
	}
	if genErr != nil {
		cfg.Logger.Warnf("AI generator unavailable, only cached results can be served: %v", genErr)
	}

	return &lyricsService{
		store:    store,
		gen:      cfg.Generator,
		genErr:   genErr,
		log:      cfg.Logger,
		policy:   cfg.Policy,
		clock:    cfg.Clock,
		observer: cfg.Observer,
		results:  results,
	}, nil
}

// Search runs one lookup through the rate limiter, the cache (history mode
// only) and the AI. A blocked or superseded search is an outcome, not an
// error; every error returned is a *SearchError.
func (s *lyricsService) Search(ctx context.Context, query string, mode SearchMode) (*SearchOutcome, error) {
	query = strings.TrimSpace(query)

	// Invalid and blocked searches never take a sequence number, so they
	// cannot supersede a search that is still in flight.
	if query == "" {
		s.emit(0, query, StateError)
		return nil, newSearchError(KindInvalidInput, MsgEmptyQuery, nil)
	}
	s.log.Infof("Searching %q (%s)", query, mode)

	// 1. Rate limit
	s.emit(0, query, StateCheckingRateLimit)
	decision := s.checkLimit(ctx)
	if decision.Limited {
		s.log.Infof("Search %q blocked: %s", query, decision.Message)
		s.emit(0, query, StateBlocked)
		return &SearchOutcome{
			Query:            query,
			State:            StateBlocked,
			Message:          decision.Message,
			RemainingSeconds: decision.RemainingSeconds,
		}, nil
	}

	seq := s.seq.Add(1)

	// 2. Cache, for history selections only
	if mode == ModeHistory {
		s.emit(seq, query, StateCheckingCache)
		if res, ok := s.lookup(ctx, query); ok {
			if !s.isLatest(seq) {
				return s.supersede(seq, query), nil
			}
			s.emit(seq, query, StateDone)
			return &SearchOutcome{Query: query, State: StateDone, Result: res, FromCache: true}, nil
		}
	}

	// 3. AI call
	s.emit(seq, query, StateCallingAPI)
	if s.gen == nil {
		s.log.Errorf("Search %q needs the AI but none is configured: %v", query, s.genErr)
		return s.fail(seq, query, newSearchError(KindConfiguration, MsgNotConfigured, s.genErr))
	}
	resp, err := s.gen.Generate(ctx, parser.BuildPrompt(query))
	if err != nil {
		s.log.Errorf("AI call for %q failed: %v", query, err)
		return s.fail(seq, query, classifyUpstream(err, KindUpstream))
	}
	s.recordCall(ctx)

	// 4. Parse
	s.emit(seq, query, StateParsing)
	result, err := parser.Parse(resp)
	if err != nil {
		s.log.Errorf("Parsing AI response for %q failed: %v", query, err)
		return s.fail(seq, query, classifyUpstream(err, KindMalformedResponse))
	}

	if !s.isLatest(seq) {
		return s.supersede(seq, query), nil
	}

	// 5. Persist
	s.emit(seq, query, StatePersisting)
	out := &SearchOutcome{Query: query, State: StateDone, Result: result}
	s.persist(ctx, query, result, out)

	s.emit(seq, query, StateDone)
	return out, nil
}

func (s *lyricsService) persist(ctx context.Context, query string, result *models.LyricSearchResult, out *SearchOutcome) {
	err := s.store.SaveResult(ctx, query, *result)
	s.forget(query)
	if err != nil {
		s.log.Errorf("Failed to cache result for %q: %v", query, err)
		out.Warning = MsgSaveResult
	}

	if err := s.store.AddOrUpdateHistory(ctx, query, s.clock().UnixMilli()); err != nil {
		s.log.Errorf("Failed to add %q to history: %v", query, err)
		out.Warning = MsgSaveResult
	}

	history, err := s.store.ListHistory(ctx)
	if err != nil {
		s.log.Errorf("Failed to reload history: %v", err)
		if out.Warning == "" {
			out.Warning = MsgLoadHistory
		}
		return
	}
	out.History = history
}

func (s *lyricsService) fail(seq uint64, query string, err *SearchError) (*SearchOutcome, error) {
	if !s.isLatest(seq) {
		s.log.Debugf("Dropping error of superseded search %q: %v", query, err)
		return s.supersede(seq, query), nil
	}
	s.emit(seq, query, StateError)
	return nil, err
}

func (s *lyricsService) supersede(seq uint64, query string) *SearchOutcome {
	s.log.Infof("Search %q superseded by a newer one, discarding", query)
	s.emit(seq, query, StateSuperseded)
	return &SearchOutcome{Query: query, State: StateSuperseded}
}

func (s *lyricsService) isLatest(seq uint64) bool {
	return s.seq.Load() == seq
}

func (s *lyricsService) emit(seq uint64, query string, state State) {
	s.log.Debugf("search #%d %q: %s", seq, query, state)
	if s.observer != nil {
		s.observer(seq, query, state)
	}
}

// checkLimit never blocks on a storage failure; the limiter is advisory.
func (s *lyricsService) checkLimit(ctx context.Context) ratelimit.Decision {
	s.limitMu.Lock()
	defer s.limitMu.Unlock()

	state, err := s.store.LoadRateLimitState(ctx)
	if err != nil {
		s.log.Warnf("Could not read rate limit state, allowing call: %v", err)
		return ratelimit.Decision{}
	}

	decision, pruned := s.policy.Check(s.clock().UnixMilli(), state)
	if len(pruned.APICallTimestampsInHour) != len(state.APICallTimestampsInHour) {
		if err := s.store.SaveRateLimitState(ctx, pruned); err != nil {
			s.log.Warnf("Could not save pruned rate limit state: %v", err)
		}
	}
	return decision
}

func (s *lyricsService) recordCall(ctx context.Context) {
	s.limitMu.Lock()
	defer s.limitMu.Unlock()

	state, err := s.store.LoadRateLimitState(ctx)
	if err != nil {
		s.log.Warnf("Could not read rate limit state, call not recorded: %v", err)
		return
	}
	if err := s.store.SaveRateLimitState(ctx, s.policy.Record(s.clock().UnixMilli(), state)); err != nil {
		s.log.Warnf("Could not record AI call: %v", err)
	}
}

// lookup is cached for the search path: storage failures count as a miss.
func (s *lyricsService) lookup(ctx context.Context, query string) (*models.LyricSearchResult, bool) {
	res, ok, err := s.cached(ctx, models.NormalizeQuery(query))
	if err != nil {
		s.log.Warnf("Cache read for %q failed, calling the AI instead: %v", query, err)
		return nil, false
	}
	return res, ok
}

// cached returns the stored result for key. The store stays the source of
// truth: an in-memory copy is used only when its version matches the row,
// so deletes and renames by other processes sharing the database are seen.
func (s *lyricsService) cached(ctx context.Context, key string) (*models.LyricSearchResult, bool, error) {
	if s.results == nil {
		return s.store.GetCachedResult(ctx, key)
	}

	version, ok, err := s.store.CachedResultVersion(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.results.Remove(key)
		return nil, false, nil
	}
	if e, hit := s.results.Get(key); hit && e.version == version {
		res := e.result.Clone()
		return &res, true, nil
	}

	// The row is read after its version, so the copy is never newer than
	// the version it is stored under.
	res, ok, err := s.store.GetCachedResult(ctx, key)
	if err != nil || !ok {
		s.results.Remove(key)
		return nil, false, err
	}
	s.results.Add(key, cachedResult{result: res.Clone(), version: version})
	return res, true, nil
}

func (s *lyricsService) forget(queries ...string) {
	if s.results == nil {
		return
	}
	for _, q := range queries {
		s.results.Remove(models.NormalizeQuery(q))
	}
}

func (s *lyricsService) ListHistory(ctx context.Context) ([]models.SearchHistoryEntry, error) {
	history, err := s.store.ListHistory(ctx)
	if err != nil {
		s.log.Errorf("Failed to load search history: %v", err)
		return nil, storageError(MsgLoadHistory, err)
	}
	return history, nil
}

// SearchHistory lists the entries whose query contains term, ignoring case.
// A blank term lists everything.
func (s *lyricsService) SearchHistory(ctx context.Context, term string) ([]models.SearchHistoryEntry, error) {
	history, err := s.store.SearchHistory(ctx, term)
	if err != nil {
		s.log.Errorf("Failed to search history for %q: %v", term, err)
		return nil, storageError(MsgLoadHistory, err)
	}
	return history, nil
}

// CachedResult returns the stored result for query without touching the AI
// or the rate limiter.
func (s *lyricsService) CachedResult(ctx context.Context, query string) (*models.LyricSearchResult, bool, error) {
	key := models.NormalizeQuery(strings.TrimSpace(query))
	res, ok, err := s.cached(ctx, key)
	if err != nil {
		s.log.Errorf("Failed to load cached result for %q: %v", key, err)
		return nil, false, storageError(MsgLoadResult, err)
	}
	return res, ok, nil
}

func (s *lyricsService) DeleteHistoryItem(ctx context.Context, id string) error {
	id = models.NormalizeQuery(id)
	err := s.store.DeleteHistoryItem(ctx, id)
	s.forget(id)
	if err != nil {
		s.log.Errorf("Failed to delete history item %q: %v", id, err)
		return storageError(MsgDeleteHistoryItem, err)
	}
	s.log.Infof("Deleted history item %q", id)
	return nil
}

// RenameHistoryItem changes the query of a history entry. A blank or
// unchanged title is ignored, as is renaming an entry that does not exist.
func (s *lyricsService) RenameHistoryItem(ctx context.Context, oldQuery, newQuery string) error {
	newQuery = strings.TrimSpace(newQuery)
	if newQuery == "" || newQuery == oldQuery {
		return nil
	}

	found, err := s.store.RenameHistoryItem(ctx, oldQuery, newQuery)
	s.forget(oldQuery, newQuery)
	if err != nil {
		s.log.Errorf("Failed to rename %q to %q: %v", oldQuery, newQuery, err)
		return storageError(MsgRenameHistoryItem, err)
	}
	if !found {
		s.log.Warnf("History item %q to update not found", oldQuery)
		return nil
	}
	s.log.Infof("Renamed history item %q to %q", oldQuery, newQuery)
	return nil
}

func (s *lyricsService) ClearHistory(ctx context.Context) error {
	err := s.store.ClearAll(ctx)
	if s.results != nil {
		s.results.Purge()
	}
	if err != nil {
		s.log.Errorf("Failed to clear history: %v", err)
		return storageError(MsgClearHistory, err)
	}
	s.log.Infof("Cleared search history")
	return nil
}

// RateLimitStatus reports what a search would hit right now, without
// recording anything.
func (s *lyricsService) RateLimitStatus(ctx context.Context) (LimitStatus, error) {
	s.limitMu.Lock()
	state, err := s.store.LoadRateLimitState(ctx)
	s.limitMu.Unlock()
	if err != nil {
		s.log.Errorf("Failed to load rate limit state: %v", err)
		return LimitStatus{}, storageError(MsgLoadLimits, err)
	}

	decision, pruned := s.policy.Check(s.clock().UnixMilli(), state)
	return LimitStatus{
		Limited:          decision.Limited,
		Message:          decision.Message,
		RemainingSeconds: decision.RemainingSeconds,
		CallsInWindow:    len(pruned.APICallTimestampsInHour),
		MaxCalls:         s.policy.MaxCalls,
	}, nil
}

func (s *lyricsService) Close() error {
	return s.store.Close()
}

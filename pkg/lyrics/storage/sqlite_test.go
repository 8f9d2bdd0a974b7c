package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/lyricfinder/pkg/models"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) *DBClient {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_lyrics.sqlite3")
	client, err := NewDBClientWithPath(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

func sampleResult(title string) models.LyricSearchResult {
	return models.LyricSearchResult{
		SongTitle:        title,
		ArtistMetadata:   &models.ArtistMetadata{Name: "ABBA", Bio: "Swedish pop group."},
		OriginalLanguage: "English",
		OriginalLyrics:   "You can dance",
		EnglishLyrics:    "You can dance",
		SongDescription:  "A song about dancing.",
		Sources:          []models.Source{{URI: "https://example.com", Title: "Example"}},
	}
}

func TestNewDBClientWithPathCreatesDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "lyrics.db")

	client, err := NewDBClientWithPath(dbPath)
	require.NoError(t, err)
	defer client.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestNilClient(t *testing.T) {
	var c *DBClient
	_, err := c.ListHistory(context.Background())
	assert.EqualError(t, err, errDBClientNil)
	assert.NoError(t, c.Close())
}

func TestHistoryUpsertAndOrder(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	require.NoError(t, c.AddOrUpdateHistory(ctx, "Dancing Queen", 100))
	require.NoError(t, c.AddOrUpdateHistory(ctx, "Spring Day", 200))
	require.NoError(t, c.AddOrUpdateHistory(ctx, "dancing queen", 300))

	got, err := c.ListHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SearchHistoryEntry{
		{ID: "dancing queen", Query: "dancing queen", Timestamp: 300},
		{ID: "spring day", Query: "Spring Day", Timestamp: 200},
	}, got)
}

func TestListHistoryEmpty(t *testing.T) {
	got, err := setupTestDB(t).ListHistory(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSaveAndGetResultRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	_, ok, err := c.GetCachedResult(ctx, "dancing queen")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleResult("Dancing Queen")
	require.NoError(t, c.SaveResult(ctx, "Dancing Queen", want))

	got, ok, err := c.GetCachedResult(ctx, "DANCING QUEEN")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, *got)

	// Minimal result keeps its nil artist and empty sources.
	minimal := models.LyricSearchResult{SongTitle: "x", EnglishLyrics: models.EnglishLyricsUnavailable, Sources: []models.Source{}}
	require.NoError(t, c.SaveResult(ctx, "dancing queen", minimal))
	got, ok, err = c.GetCachedResult(ctx, "dancing queen")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, minimal, *got)
}

func TestCachedResultVersion(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	_, ok, err := c.CachedResultVersion(ctx, "abba")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.AddOrUpdateHistory(ctx, "abba", 1))
	require.NoError(t, c.SaveResult(ctx, "abba", sampleResult("v1")))
	v1, ok, err := c.CachedResultVersion(ctx, "ABBA")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.SaveResult(ctx, "abba", sampleResult("v2")))
	v2, ok, err := c.CachedResultVersion(ctx, "abba")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, v2, v1)

	// A moved result gets a new version under its new key.
	_, err = c.RenameHistoryItem(ctx, "abba", "queen")
	require.NoError(t, err)
	_, ok, err = c.CachedResultVersion(ctx, "abba")
	require.NoError(t, err)
	assert.False(t, ok)
	v3, ok, err := c.CachedResultVersion(ctx, "queen")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, v3, v2)

	require.NoError(t, c.DeleteHistoryItem(ctx, "queen"))
	_, ok, err = c.CachedResultVersion(ctx, "queen")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchHistory(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	require.NoError(t, c.AddOrUpdateHistory(ctx, "ABBA Dancing Queen", 100))
	require.NoError(t, c.AddOrUpdateHistory(ctx, "BTS Spring Day", 200))
	require.NoError(t, c.AddOrUpdateHistory(ctx, "Édith Piaf La Vie en rose", 300))
	require.NoError(t, c.AddOrUpdateHistory(ctx, "Queen Bohemian Rhapsody", 400))

	got, err := c.SearchHistory(ctx, "queen")
	require.NoError(t, err)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "Queen Bohemian Rhapsody", got[0].Query)
		assert.Equal(t, "ABBA Dancing Queen", got[1].Query)
	}

	got, err = c.SearchHistory(ctx, "ÉDITH")
	require.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "édith piaf la vie en rose", got[0].ID)
	}

	got, err = c.SearchHistory(ctx, "   ")
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = c.SearchHistory(ctx, "metallica")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteHistoryItemRemovesPair(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	require.NoError(t, c.AddOrUpdateHistory(ctx, "abba", 1))
	require.NoError(t, c.SaveResult(ctx, "abba", sampleResult("abba")))
	require.NoError(t, c.AddOrUpdateHistory(ctx, "queen", 2))

	require.NoError(t, c.DeleteHistoryItem(ctx, "abba"))
	require.NoError(t, c.DeleteHistoryItem(ctx, "missing"))

	hist, err := c.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "queen", hist[0].ID)

	_, ok, err := c.GetCachedResult(ctx, "abba")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRenameSameID(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	require.NoError(t, c.AddOrUpdateHistory(ctx, "abba", 42))
	require.NoError(t, c.SaveResult(ctx, "abba", sampleResult("abba")))

	found, err := c.RenameHistoryItem(ctx, "abba", "ABBA")
	require.NoError(t, err)
	assert.True(t, found)

	hist, err := c.ListHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SearchHistoryEntry{{ID: "abba", Query: "ABBA", Timestamp: 42}}, hist)

	_, ok, err := c.GetCachedResult(ctx, "abba")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRenameDifferentID(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	result := sampleResult("abba")
	require.NoError(t, c.AddOrUpdateHistory(ctx, "abba", 42))
	require.NoError(t, c.SaveResult(ctx, "abba", result))

	found, err := c.RenameHistoryItem(ctx, "abba", "Queen")
	require.NoError(t, err)
	assert.True(t, found)

	hist, err := c.ListHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SearchHistoryEntry{{ID: "queen", Query: "Queen", Timestamp: 42}}, hist)

	_, ok, err := c.GetCachedResult(ctx, "abba")
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := c.GetCachedResult(ctx, "queen")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, result, *got)
}

func TestRenameOverwritesDestination(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	require.NoError(t, c.AddOrUpdateHistory(ctx, "abba", 10))
	require.NoError(t, c.SaveResult(ctx, "abba", sampleResult("from abba")))
	require.NoError(t, c.AddOrUpdateHistory(ctx, "queen", 20))
	require.NoError(t, c.SaveResult(ctx, "queen", sampleResult("from queen")))

	_, err := c.RenameHistoryItem(ctx, "abba", "queen")
	require.NoError(t, err)

	hist, err := c.ListHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SearchHistoryEntry{{ID: "queen", Query: "queen", Timestamp: 10}}, hist)

	got, _, err := c.GetCachedResult(ctx, "queen")
	require.NoError(t, err)
	assert.Equal(t, "from abba", got.SongTitle)
}

func TestRenameWithoutCacheKeepsDestinationCache(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	require.NoError(t, c.AddOrUpdateHistory(ctx, "abba", 10))
	require.NoError(t, c.SaveResult(ctx, "queen", sampleResult("from queen")))

	_, err := c.RenameHistoryItem(ctx, "abba", "queen")
	require.NoError(t, err)

	got, ok, err := c.GetCachedResult(ctx, "queen")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "from queen", got.SongTitle)
}

func TestRenameMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)
	require.NoError(t, c.AddOrUpdateHistory(ctx, "queen", 1))

	found, err := c.RenameHistoryItem(ctx, "abba", "queen")
	require.NoError(t, err)
	assert.False(t, found)

	hist, err := c.ListHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SearchHistoryEntry{{ID: "queen", Query: "queen", Timestamp: 1}}, hist)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	require.NoError(t, c.AddOrUpdateHistory(ctx, "abba", 1))
	require.NoError(t, c.SaveResult(ctx, "abba", sampleResult("abba")))
	last := int64(5)
	require.NoError(t, c.SaveRateLimitState(ctx, models.RateLimitState{LastAPICallTimeMs: &last, APICallTimestampsInHour: []int64{5}}))

	require.NoError(t, c.ClearAll(ctx))

	hist, err := c.ListHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, hist)
	_, ok, err := c.GetCachedResult(ctx, "abba")
	require.NoError(t, err)
	assert.False(t, ok)

	state, err := c.LoadRateLimitState(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, state.APICallTimestampsInHour)
}

func TestRateLimitState(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	state, err := c.LoadRateLimitState(ctx)
	require.NoError(t, err)
	assert.Nil(t, state.LastAPICallTimeMs)
	assert.Empty(t, state.APICallTimestampsInHour)

	last := int64(1_700_000_000_000)
	require.NoError(t, c.SaveRateLimitState(ctx, models.RateLimitState{
		LastAPICallTimeMs:       &last,
		APICallTimestampsInHour: []int64{last - 1000, last},
	}))
	require.NoError(t, c.SaveRateLimitState(ctx, models.RateLimitState{
		LastAPICallTimeMs:       &last,
		APICallTimestampsInHour: []int64{last},
	}))

	state, err = c.LoadRateLimitState(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.LastAPICallTimeMs)
	assert.Equal(t, last, *state.LastAPICallTimeMs)
	assert.Equal(t, []int64{last}, state.APICallTimestampsInHour)
}

package models

import "strings"

// EnglishLyricsUnavailable is stored in LyricSearchResult.EnglishLyrics when
// no English lyrics could be extracted.
const EnglishLyricsUnavailable = "English lyrics not available or not found."

// ArtistMetadata describes the performer of a song.
type ArtistMetadata struct {
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}

// Source is a web document the AI consulted while answering.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// LyricSearchResult is the structured form of one AI answer.
// Empty optional fields mean "not extracted".
type LyricSearchResult struct {
	SongTitle        string          `json:"songTitle,omitempty"`
	ArtistMetadata   *ArtistMetadata `json:"artistMetadata,omitempty"`
	OriginalLanguage string          `json:"originalLanguage,omitempty"`
	OriginalLyrics   string          `json:"originalLyrics,omitempty"`
	EnglishLyrics    string          `json:"englishLyrics"`
	RomanizedLyrics  string          `json:"romanizedLyrics,omitempty"`
	SongDescription  string          `json:"songDescription,omitempty"`
	Sources          []Source        `json:"sources"`
}

// HasEnglishLyrics reports whether EnglishLyrics holds real lyrics.
func (r *LyricSearchResult) HasEnglishLyrics() bool {
	return r.EnglishLyrics != "" && r.EnglishLyrics != EnglishLyricsUnavailable
}

// Clone returns a deep copy so cached values cannot be mutated by callers.
func (r LyricSearchResult) Clone() LyricSearchResult {
	out := r
	if r.ArtistMetadata != nil {
		meta := *r.ArtistMetadata
		out.ArtistMetadata = &meta
	}
	if r.Sources != nil {
		out.Sources = make([]Source, len(r.Sources))
		copy(out.Sources, r.Sources)
	}
	return out
}

// SearchHistoryEntry is one remembered query. ID is always the normalized Query.
type SearchHistoryEntry struct {
	ID        string `json:"id"`
	Query     string `json:"query"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// NormalizeQuery returns the key under which a query is stored.
func NormalizeQuery(query string) string {
	return strings.ToLower(query)
}

// ScrapedLyrics is returned by the legacy page-scraping lookup.
type ScrapedLyrics struct {
	Title  string   `json:"title"`
	Artist string   `json:"artist"`
	URL    string   `json:"url"`
	Lyrics []string `json:"lyrics"`
}

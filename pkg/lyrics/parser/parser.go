package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/himanishpuri/lyricfinder/pkg/models"
)

const (
	DefaultSongTitle  = "Song title not available"
	DefaultArtistName = "Artist name not available"

	finishReasonStop = "STOP"
	sameAsOriginal   = "same as original lyrics"

	// Lyrics recovered from a bio must be longer than this to count.
	minEmbeddedLyricsRunes = 50
	// A bio prefix shorter than this, or spanning more lines, is dropped.
	minBioPrefixRunes = 100
	maxBioPrefixLines = 3
)

var (
	artistNameRe = regexp.MustCompile(`(?is)Name:\s*(.*?)(?:\nBio:|\z)`)
	artistBioRe  = regexp.MustCompile(`(?is)Bio:\s*(.*)`)

	embeddedLyricsHeadingRe = regexp.MustCompile(
		`(?i)(Romanized Lyrics for ".*?":\s*|Romanized Lyrics:\s*|English Lyrics for ".*?":\s*|English Lyrics:\s*)`)
)

// ResponseError reports an AI response that carried no usable text.
type ResponseError struct {
	FinishReason string
}

func (e *ResponseError) Error() string {
	if e.FinishReason != "" && e.FinishReason != finishReasonStop {
		return fmt.Sprintf("API request finished with reason: %s. No valid text content was returned.", e.FinishReason)
	}
	return "The API returned an unexpected response format (missing or invalid text content)."
}

// Parse turns a raw AI response into a LyricSearchResult. A response
// without text is an error; missing or filler sections never are.
func Parse(resp *models.GenerateResponse) (*models.LyricSearchResult, error) {
	if resp == nil {
		return nil, &ResponseError{}
	}
	if resp.Text == nil {
		return nil, &ResponseError{FinishReason: resp.FinishReason}
	}

	result := ParseText(*resp.Text)
	result.Sources = SourcesFromCitations(resp.Citations)
	return result, nil
}

// ParseText extracts every known section from text. Sources is left empty.
func ParseText(text string) *models.LyricSearchResult {
	sections := CanonicalSections.Extract(text)

	result := &models.LyricSearchResult{
		SongTitle:     DefaultSongTitle,
		EnglishLyrics: models.EnglishLyricsUnavailable,
		Sources:       []models.Source{},
	}

	if v, ok := sections[SectionTitle]; ok {
		result.SongTitle = v
	}
	if v, ok := sections[SectionArtist]; ok {
		result.ArtistMetadata = parseArtist(v)
	}
	result.SongDescription = sections[SectionSummary]
	result.OriginalLanguage = sections[SectionOriginalLanguage]
	result.OriginalLyrics = sections[SectionOriginalLyrics]

	if v, ok := sections[SectionEnglishLyrics]; ok {
		if strings.EqualFold(v, sameAsOriginal) && result.OriginalLyrics != "" {
			result.EnglishLyrics = result.OriginalLyrics
		} else {
			result.EnglishLyrics = v
		}
	}
	reconcileEnglish(result)

	result.RomanizedLyrics = sections[SectionRomanizedLyrics]

	recoverLyricsFromBio(result)
	return result
}

// reconcileEnglish keeps original and English lyrics identical when the
// song is in English. Order matters: original lyrics win.
func reconcileEnglish(r *models.LyricSearchResult) {
	if !strings.Contains(strings.ToLower(r.OriginalLanguage), "english") {
		return
	}
	if r.OriginalLyrics != "" {
		r.EnglishLyrics = r.OriginalLyrics
	}
	if r.OriginalLyrics == "" && r.EnglishLyrics != models.EnglishLyricsUnavailable {
		r.OriginalLyrics = r.EnglishLyrics
	}
}

func parseArtist(section string) *models.ArtistMetadata {
	meta := &models.ArtistMetadata{Name: DefaultArtistName}

	if m := artistNameRe.FindStringSubmatch(section); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" && !strings.EqualFold(name, "not available") {
			meta.Name = name
		}
	}
	if m := artistBioRe.FindStringSubmatch(section); m != nil {
		if bio := strings.TrimSpace(m[1]); bio != "" && !strings.EqualFold(bio, "not available") {
			meta.Bio = bio
		}
	}
	return meta
}

// recoverLyricsFromBio handles answers where the model put the lyrics
// under the artist bio instead of under their own heading.
func recoverLyricsFromBio(r *models.LyricSearchResult) {
	if r.ArtistMetadata == nil || r.ArtistMetadata.Bio == "" {
		return
	}
	if strings.TrimSpace(r.EnglishLyrics) != "" && r.EnglishLyrics != models.EnglishLyricsUnavailable {
		return
	}
	if strings.TrimSpace(r.RomanizedLyrics) != "" {
		return
	}

	bio := r.ArtistMetadata.Bio
	loc := embeddedLyricsHeadingRe.FindStringIndex(bio)
	if loc == nil {
		return
	}

	before := strings.TrimSpace(bio[:loc[0]])
	after := strings.TrimSpace(bio[loc[1]:])
	if utf8.RuneCountInString(after) <= minEmbeddedLyricsRunes {
		return
	}

	if strings.Contains(strings.ToLower(bio[loc[0]:loc[1]]), "romanized") {
		r.RomanizedLyrics = after
	} else {
		r.EnglishLyrics = after
	}

	if utf8.RuneCountInString(before) < minBioPrefixRunes || strings.Count(before, "\n")+1 > maxBioPrefixLines {
		r.ArtistMetadata.Bio = ""
	} else {
		r.ArtistMetadata.Bio = before
	}
}

// SourcesFromCitations keeps citations with a URI; a missing title falls back to the URI.
func SourcesFromCitations(citations []models.Citation) []models.Source {
	sources := make([]models.Source, 0, len(citations))
	for _, c := range citations {
		if c.URI == "" {
			continue
		}
		title := c.Title
		if title == "" {
			title = c.URI
		}
		sources = append(sources, models.Source{URI: c.URI, Title: title})
	}
	return sources
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSection(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		start  string
		end    []string
		want   string
		wantOK bool
	}{
		{
			name:   "missing start marker",
			text:   "Artist Information: Name: ABBA",
			start:  "Song Title:",
			end:    []string{"Artist Information:"},
			wantOK: false,
		},
		{
			name:   "sentinel value",
			text:   "Song Title: Not Available\nArtist Information: ...",
			start:  "Song Title:",
			end:    []string{"Artist Information:"},
			wantOK: false,
		},
		{
			name:   "empty window",
			text:   "Song Title:   \nArtist Information: x",
			start:  "Song Title:",
			end:    []string{"Artist Information:"},
			wantOK: false,
		},
		{
			name:   "case insensitive marker",
			text:   "song title: Dancing Queen\nartist information: ABBA",
			start:  "Song Title:",
			end:    []string{"Artist Information:"},
			want:   "Dancing Queen",
			wantOK: true,
		},
		{
			name:   "runs to end of text without end markers",
			text:   "Romanized Lyrics:\nline one\nline two\n",
			start:  "Romanized Lyrics:",
			want:   "line one\nline two",
			wantOK: true,
		},
		{
			name:   "earliest end marker wins regardless of list order",
			text:   "Original Lyrics: abc\nRomanized Lyrics: r\nEnglish Lyrics: e",
			start:  "Original Lyrics:",
			end:    []string{"English Lyrics:", "Romanized Lyrics:"},
			want:   "abc",
			wantOK: true,
		},
		{
			name:   "end marker before start is ignored",
			text:   "English Lyrics: early\nOriginal Lyrics: body",
			start:  "Original Lyrics:",
			end:    []string{"English Lyrics:"},
			want:   "body",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractSection(tt.text, tt.start, tt.end)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractSectionSentinels(t *testing.T) {
	for _, sentinel := range []string{"Not available", "NOT APPLICABLE", "Full lyrics restricted", "lyrics NOT available"} {
		_, ok := ExtractSection("English Lyrics: "+sentinel+"\n", "English Lyrics:", nil)
		assert.False(t, ok, sentinel)
	}
}

func TestExtractSectionKeepsOriginalCasing(t *testing.T) {
	got, ok := ExtractSection("SONG TITLE: İstanbul Nights\nArtist Information:", "Song Title:", []string{"Artist Information:"})
	require.True(t, ok)
	assert.Equal(t, "İstanbul Nights", got)
}

func TestEndMarkers(t *testing.T) {
	assert.Equal(t, []string{"English Lyrics:", "Romanized Lyrics:"}, CanonicalSections.EndMarkers(SectionOriginalLyrics))
	assert.Empty(t, CanonicalSections.EndMarkers(SectionRomanizedLyrics))
	assert.Nil(t, CanonicalSections.EndMarkers("unknown"))
	assert.Len(t, CanonicalSections.EndMarkers(SectionTitle), len(CanonicalSections)-1)
}

func TestSectionsExtractToleratesReordering(t *testing.T) {
	text := "Romanized Lyrics: roma\nSong Title: Late Title\nEnglish Lyrics: eng"
	found := CanonicalSections.Extract(text)

	// Romanized is last in canonical order, so it runs to the end of the text.
	assert.Equal(t, "roma\nSong Title: Late Title\nEnglish Lyrics: eng", found[SectionRomanizedLyrics])
	assert.Equal(t, "Late Title", found[SectionTitle])
	assert.Equal(t, "eng", found[SectionEnglishLyrics])
}

func TestBuildPromptContainsEveryHeading(t *testing.T) {
	prompt := BuildPrompt("Dancing Queen")

	assert.Contains(t, prompt, `for the song: "Dancing Queen".`)
	for _, sec := range CanonicalSections {
		assert.Contains(t, prompt, sec.Marker)
	}
	assert.Contains(t, prompt, "Song Title: [Song Title]")
	assert.Contains(t, prompt, "Artist Information:\nName: [Artist Name]")
}

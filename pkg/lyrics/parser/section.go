package parser

import "strings"

// SectionKey identifies one heading of the AI response.
type SectionKey string

const (
	SectionTitle            SectionKey = "title"
	SectionArtist           SectionKey = "artist"
	SectionSummary          SectionKey = "summary"
	SectionOriginalLanguage SectionKey = "original_language"
	SectionOriginalLyrics   SectionKey = "original_lyrics"
	SectionEnglishLyrics    SectionKey = "english_lyrics"
	SectionRomanizedLyrics  SectionKey = "romanized_lyrics"
)

// Section binds a key to the heading text the model is asked to emit.
// Guide is the instruction placed under the heading in the prompt; Inline
// puts it on the heading line instead.
type Section struct {
	Key    SectionKey
	Marker string
	Guide  string
	Inline bool
}

// Sections is an ordered heading list. A section ends at the first heading
// declared after it that appears in the text.
type Sections []Section

// CanonicalSections is the heading order requested from the model.
var CanonicalSections = Sections{
	{
		Key:    SectionTitle,
		Marker: "Song Title:",
		Guide:  "[Song Title]",
		Inline: true,
	},
	{
		Key:    SectionArtist,
		Marker: "Artist Information:",
		Guide: "Name: [Artist Name]\n" +
			`Bio: [Provide a brief artist biography or notable facts. If not available, state "Not available".]`,
	},
	{
		Key:    SectionSummary,
		Marker: "Song Meaning/Summary (based on English lyrics you generate):",
		Guide: "[Provide a brief (2-3 sentences) summary or interpretation of the song based on the lyrics you generate. " +
			`If lyrics are unavailable or meaning is too ambiguous, state "Not available".]`,
	},
	{
		Key:    SectionOriginalLanguage,
		Marker: "Original Language:",
		Guide: "[Detected Original Language of the Song - e.g., Korean, Japanese, English, Spanish, Russian. " +
			"If the song is instrumental, state 'Instrumental'. If mixed, state primary language or 'Mixed'. " +
			`If not available, state "Not available".]`,
		Inline: true,
	},
	{
		Key:    SectionOriginalLyrics,
		Marker: "Original Lyrics:",
		Guide: "[Provide the full lyrics in the Original Language identified above. " +
			"If the Original Language is English, provide the English lyrics here. If instrumental, state 'Instrumental'. " +
			`If restricted, state so. If not available, state "Not available".]`,
		Inline: true,
	},
	{
		Key:    SectionEnglishLyrics,
		Marker: "English Lyrics:",
		Guide: "[Provide the full English lyrics for the song. " +
			`If the original language is English and you've already provided them under "Original Lyrics", ` +
			`you can state "Same as Original Lyrics" or re-list them. If restricted, state so. If not available, state "Not available".]`,
	},
	{
		Key:    SectionRomanizedLyrics,
		Marker: "Romanized Lyrics:",
		Guide: "[Provide the full Romanized lyrics for the song, if applicable (e.g., for languages not using a Latin-based script " +
			"such as Korean, Japanese, Russian, Greek, Arabic, Hindi, Thai, etc.). " +
			`If the original language already uses a Latin script (e.g., English, Spanish, Indonesian), state "Not applicable". ` +
			`If restricted, state "Full lyrics restricted". If not available, state "Not available".]`,
	},
}

// absenceSentinels are compared case-insensitively against trimmed section text.
var absenceSentinels = []string{
	"not available",
	"not applicable",
	"full lyrics restricted",
	"lyrics not available",
}

// Marker returns the heading for key, or "" if the key is not in the list.
func (s Sections) Marker(key SectionKey) string {
	for _, sec := range s {
		if sec.Key == key {
			return sec.Marker
		}
	}
	return ""
}

// EndMarkers returns every marker declared after key.
func (s Sections) EndMarkers(key SectionKey) []string {
	for i, sec := range s {
		if sec.Key != key {
			continue
		}
		markers := make([]string, 0, len(s)-i-1)
		for _, later := range s[i+1:] {
			markers = append(markers, later.Marker)
		}
		return markers
	}
	return nil
}

// Extract runs ExtractSection for every section and returns the ones found.
func (s Sections) Extract(text string) map[SectionKey]string {
	found := make(map[SectionKey]string, len(s))
	for _, sec := range s {
		if v, ok := ExtractSection(text, sec.Marker, s.EndMarkers(sec.Key)); ok {
			found[sec.Key] = v
		}
	}
	return found
}

// ExtractSection returns the trimmed text between startMarker and the
// earliest of endMarkers found after it. Matching is case-insensitive.
// ok is false when the marker is missing, the text is empty, or the text
// is one of the absence sentinels.
func ExtractSection(text, startMarker string, endMarkers []string) (string, bool) {
	idx := indexFold(text, startMarker, 0)
	if idx < 0 {
		return "", false
	}

	start := idx + len(startMarker)
	end := len(text)
	for _, m := range endMarkers {
		if i := indexFold(text, m, start); i >= 0 && i < end {
			end = i
		}
	}

	extracted := strings.TrimSpace(text[start:end])
	if extracted == "" || IsAbsent(extracted) {
		return "", false
	}
	return extracted, true
}

// IsAbsent reports whether s is one of the "field intentionally empty" phrases.
func IsAbsent(s string) bool {
	s = strings.TrimSpace(s)
	for _, sentinel := range absenceSentinels {
		if strings.EqualFold(s, sentinel) {
			return true
		}
	}
	return false
}

// indexFold is a case-insensitive strings.Index that reports byte offsets
// into s itself, starting the search at from.
func indexFold(s, substr string, from int) int {
	n := len(substr)
	if n == 0 {
		if from <= len(s) {
			return from
		}
		return -1
	}
	for i := from; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}

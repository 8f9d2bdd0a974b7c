package parser

import (
	"fmt"
	"strings"
)

const promptPreamble = `Please provide the following information for the song: "%s".
Use your knowledge and web search capabilities if needed.
Structure your response exactly as follows, using these exact headings and newlines.
If a section is not applicable or information is unavailable, state "Not available" or "Not applicable" for that section.
If you cannot provide full lyrics due to copyright or other restrictions, please state "Full lyrics restricted" or "Lyrics not available" in the lyrics section and, if possible, provide a brief reason.`

const promptClosing = "Please ensure each section is clearly delineated."

// BuildPrompt renders the request sent to the model for query. The
// headings come from CanonicalSections, the same list Parse reads back.
func BuildPrompt(query string) string {
	return CanonicalSections.Prompt(query)
}

// Prompt renders a request asking for exactly the headings in s.
func (s Sections) Prompt(query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptPreamble, query)
	b.WriteString("\n\n")
	for _, sec := range s {
		b.WriteString(sec.Marker)
		if sec.Inline {
			b.WriteByte(' ')
		} else {
			b.WriteByte('\n')
		}
		b.WriteString(sec.Guide)
		b.WriteString("\n\n")
	}
	b.WriteString(promptClosing)
	return b.String()
}

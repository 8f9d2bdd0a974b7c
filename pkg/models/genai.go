package models

// Citation is a raw grounding chunk attached to an AI response. URI may be empty.
type Citation struct {
	URI   string
	Title string
}

// GenerateResponse is the provider-neutral outcome of one AI call.
// Text is nil when the provider returned no text content.
type GenerateResponse struct {
	Text         *string
	FinishReason string
	Citations    []Citation
}

package models

// CachedResult pairs a normalized query with its parsed result.
type CachedResult struct {
	Query  string            `json:"query"`
	Result LyricSearchResult `json:"result"`
}

// RateLimitState is the persisted input of the client-side rate limiter.
// LastAPICallTimeMs is nil until the first successful call.
type RateLimitState struct {
	LastAPICallTimeMs       *int64  `json:"lastApiCallTimeMs"`
	APICallTimestampsInHour []int64 `json:"apiCallTimestampsInHour"`
}

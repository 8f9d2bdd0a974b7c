package lyrics

import "github.com/himanishpuri/lyricfinder/pkg/models"

// SearchMode tells Search where the query came from.
type SearchMode int

const (
	// ModeTyped is a fresh query; the cache is bypassed.
	ModeTyped SearchMode = iota
	// ModeHistory re-opens a history entry; the cache is tried first.
	ModeHistory
)

func (m SearchMode) String() string {
	if m == ModeHistory {
		return "history"
	}
	return "typed"
}

// State is a step of one search.
type State string

const (
	StateIdle              State = "idle"
	StateCheckingRateLimit State = "checking-rate-limit"
	StateBlocked           State = "blocked"
	StateCheckingCache     State = "checking-cache"
	StateCallingAPI        State = "calling-api"
	StateParsing           State = "parsing"
	StatePersisting        State = "persisting"
	StateDone              State = "done"
	StateError             State = "error"
	StateSuperseded        State = "superseded"
)

// StateObserver is called on every transition of a search. seq identifies
// the search; a higher seq is a newer search. seq is 0 until the search has
// passed validation and the rate limiter.
type StateObserver func(seq uint64, query string, state State)

// SearchOutcome is what a search that did not fail produced.
//
// State is StateDone, StateBlocked or StateSuperseded. Result is set only
// for StateDone. Message and RemainingSeconds are set only for StateBlocked.
// Warning carries a non-fatal storage problem; History is the refreshed
// listing after a fresh result was persisted.
type SearchOutcome struct {
	Query            string                      `json:"query"`
	State            State                       `json:"state"`
	Result           *models.LyricSearchResult   `json:"result,omitempty"`
	FromCache        bool                        `json:"fromCache"`
	Message          string                      `json:"message,omitempty"`
	RemainingSeconds int                         `json:"remainingSeconds,omitempty"`
	History          []models.SearchHistoryEntry `json:"history,omitempty"`
	Warning          string                      `json:"warning,omitempty"`
}

// LimitStatus reports whether a search would be blocked right now.
type LimitStatus struct {
	Limited          bool   `json:"limited"`
	Message          string `json:"message,omitempty"`
	RemainingSeconds int    `json:"remainingSeconds,omitempty"`
	CallsInWindow    int    `json:"callsInWindow"`
	MaxCalls         int    `json:"maxCalls"`
}

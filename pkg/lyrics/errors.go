package lyrics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStorage marks failures of the local store. The SQLite adapter wraps
// every error it returns with it.
var ErrStorage = errors.New("storage failure")

// ErrNoGenerator is reported when the service was built without an AI client.
var ErrNoGenerator = errors.New("no AI generator configured")

// ErrorKind classifies a SearchError.
type ErrorKind int

const (
	KindInvalidInput ErrorKind = iota + 1
	KindConfiguration
	KindUpstream
	KindContentRestricted
	KindMalformedResponse
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindConfiguration:
		return "configuration"
	case KindUpstream:
		return "upstream"
	case KindContentRestricted:
		return "content_restricted"
	case KindMalformedResponse:
		return "malformed_response"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MsgEmptyQuery        = "Please enter a song or artist to search for."
	MsgNotConfigured     = "Lyrics service is not configured correctly. AI client failed to initialize. Please ensure API_KEY is correctly configured."
	MsgRecitation        = "Lyrics for this song could not be retrieved due to content restrictions from the API. This is often related to copyright."
	MsgLimitsOrSafety    = "Could not fetch the requested information due to API limits or safety filters. Please try again later."
	MsgInvalidAPIKey     = "The configured API Key is invalid or missing required permissions. Please check your Gemini API Key."
	MsgLoadHistory       = "Could not load search history."
	MsgDeleteHistoryItem = "Could not delete history item."
	MsgRenameHistoryItem = "Could not update search title."
	MsgClearHistory      = "Could not clear search history."
	MsgSaveResult        = "Could not save search result."
	MsgLoadResult        = "Could not load cached result."
	MsgLoadLimits        = "Could not load rate limit state."
)

// SearchError is the only error type the service returns to front ends.
// Message is safe to show to the user; Err keeps the cause for logs.
type SearchError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *SearchError) Error() string { return e.Message }

func (e *SearchError) Unwrap() error { return e.Err }

func newSearchError(kind ErrorKind, msg string, cause error) *SearchError {
	return &SearchError{Kind: kind, Message: msg, Err: cause}
}

func storageError(msg string, cause error) *SearchError {
	return newSearchError(KindStorage, msg, cause)
}

// classifyUpstream maps an AI call or parse failure to a user message by
// keyword. Restricted cases never echo the raw upstream text.
func classifyUpstream(err error, fallback ErrorKind) *SearchError {
	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "recitation"):
		return newSearchError(KindContentRestricted, MsgRecitation, err)
	case strings.Contains(lower, "429"),
		strings.Contains(lower, "resource_exhausted"),
		strings.Contains(lower, "safety"):
		return newSearchError(KindContentRestricted, MsgLimitsOrSafety, err)
	case strings.Contains(lower, "api key not valid"),
		strings.Contains(lower, "permission_denied"):
		return newSearchError(KindConfiguration, MsgInvalidAPIKey, err)
	default:
		return newSearchError(fallback, fmt.Sprintf("Failed to search lyrics: %s", err.Error()), err)
	}
}

// KindOf returns the kind of a SearchError anywhere in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// Package ratelimit decides whether an AI call may be made now, given the
// persisted history of recent calls. Everything here is pure: the caller
// owns loading and saving the state.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/himanishpuri/lyricfinder/pkg/models"
)

const (
	DefaultCooldown = 30 * time.Second
	DefaultWindow   = time.Hour
	DefaultMaxCalls = 5
)

// Policy holds the two gates: a minimum gap between calls and a cap on
// calls inside a sliding window.
type Policy struct {
	Cooldown time.Duration
	Window   time.Duration
	MaxCalls int
}

// Decision is the outcome of Check. Message and RemainingSeconds are only
// set when Limited is true.
type Decision struct {
	Limited          bool
	Message          string
	RemainingSeconds int
}

func DefaultPolicy() Policy {
	return Policy{
		Cooldown: DefaultCooldown,
		Window:   DefaultWindow,
		MaxCalls: DefaultMaxCalls,
	}
}

// Check applies the cooldown gate, then the quota gate. The returned state
// has timestamps older than the window pruned; callers should persist it.
func (p Policy) Check(nowMs int64, state models.RateLimitState) (Decision, models.RateLimitState) {
	state = p.prune(nowMs, state)

	if state.LastAPICallTimeMs != nil {
		elapsed := nowMs - *state.LastAPICallTimeMs
		if cooldown := p.Cooldown.Milliseconds(); elapsed < cooldown {
			remaining := ceilSeconds(cooldown - elapsed)
			return Decision{
				Limited:          true,
				Message:          fmt.Sprintf("Please wait %d %s before trying again.", remaining, plural(remaining, "second")),
				RemainingSeconds: remaining,
			}, state
		}
	}

	if p.MaxCalls > 0 && len(state.APICallTimestampsInHour) >= p.MaxCalls {
		oldest := state.APICallTimestampsInHour[0]
		for _, ts := range state.APICallTimestampsInHour[1:] {
			if ts < oldest {
				oldest = ts
			}
		}
		remaining := ceilSeconds(oldest + p.Window.Milliseconds() - nowMs)
		return Decision{
			Limited:          true,
			Message:          fmt.Sprintf("Hourly limit reached. Try again in %s.", FormatDuration(remaining)),
			RemainingSeconds: remaining,
		}, state
	}

	return Decision{}, state
}

// Record registers a call made at nowMs.
func (p Policy) Record(nowMs int64, state models.RateLimitState) models.RateLimitState {
	state = p.prune(nowMs, state)
	last := nowMs
	state.LastAPICallTimeMs = &last
	state.APICallTimestampsInHour = append(state.APICallTimestampsInHour, nowMs)
	return state
}

func (p Policy) prune(nowMs int64, state models.RateLimitState) models.RateLimitState {
	cutoff := nowMs - p.Window.Milliseconds()
	kept := make([]int64, 0, len(state.APICallTimestampsInHour)+1)
	for _, ts := range state.APICallTimestampsInHour {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	return models.RateLimitState{
		LastAPICallTimeMs:       state.LastAPICallTimeMs,
		APICallTimestampsInHour: kept,
	}
}

// FormatDuration renders whole seconds as "M minute(s) and S second(s)",
// omitting a zero part ("0 seconds" when both are zero).
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes, secs := seconds/60, seconds%60

	switch {
	case minutes == 0:
		return fmt.Sprintf("%d %s", secs, plural(secs, "second"))
	case secs == 0:
		return fmt.Sprintf("%d %s", minutes, plural(minutes, "minute"))
	default:
		return fmt.Sprintf("%d %s and %d %s", minutes, plural(minutes, "minute"), secs, plural(secs, "second"))
	}
}

func ceilSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

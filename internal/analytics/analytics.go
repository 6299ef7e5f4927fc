// Package analytics derives health-pattern statistics from an event history.
//
// Every function is pure: the current instant ("now", milliseconds since the
// epoch) and, where calendar days matter, the local zone are explicit inputs.
// Nothing here reads the wall clock.
//
// Intervals are measured on whole minutes first, then converted to hours:
//
//	hours = floor((later - earlier) / 1 minute) / 60
//
// Regularity: a history is regular iff every consecutive gap lies in
// [12h, 48h]. Constipation risk: ≥48h since the last event is possible,
// ≥72h is likely.
package analytics

import (
	"fmt"
	"math"
)

const (
	millisPerMinute = int64(60 * 1000)
	minutesPerHour  = int64(60)
	minutesPerDay   = 24 * minutesPerHour

	// HealthyIntervalMinHours is the shortest gap still considered regular.
	HealthyIntervalMinHours = 12.0
	// HealthyIntervalMaxHours is the longest gap still considered regular.
	HealthyIntervalMaxHours = 48.0
	// PossibleConstipationHours is the elapsed time at which risk becomes possible.
	PossibleConstipationHours = 48.0
	// LikelyConstipationHours is the elapsed time at which risk becomes likely.
	LikelyConstipationHours = 72.0
)

// wholeMinutes truncates a millisecond span to whole minutes.
func wholeMinutes(deltaMillis int64) int64 {
	return deltaMillis / millisPerMinute
}

// hoursBetween converts a millisecond span to hours at minute resolution.
func hoursBetween(earlier, later int64) float64 {
	return float64(wholeMinutes(later-earlier)) / 60.0
}

// ElapsedSince renders the time between timestamp and now as a short
// relative phrase. Future timestamps read as "just now".
func ElapsedSince(timestamp, now int64) string {
	delta := now - timestamp
	if delta < 0 {
		delta = 0
	}
	minutes := wholeMinutes(delta)

	switch {
	case minutes < 1:
		return "just now"
	case minutes < minutesPerHour:
		return fmt.Sprintf("%d min ago", minutes)
	case minutes < minutesPerDay:
		hours := minutes / minutesPerHour
		remainder := minutes % minutesPerHour
		if remainder == 0 {
			return fmt.Sprintf("%d h ago", hours)
		}
		return fmt.Sprintf("%d h %d min ago", hours, remainder)
	default:
		days := minutes / minutesPerDay
		remainder := (minutes % minutesPerDay) / minutesPerHour
		if remainder == 0 {
			return fmt.Sprintf("%d d ago", days)
		}
		return fmt.Sprintf("%d d %d h ago", days, remainder)
	}
}

// FormatHours renders an hour count compactly, e.g. "23h", "1d", "1d 1h".
// Hours are rounded with math.Round, so halves round away from zero.
func FormatHours(hours float64) string {
	rounded := int64(math.Round(hours))
	if rounded < 24 {
		return fmt.Sprintf("%dh", rounded)
	}

	days := rounded / 24
	remainder := rounded % 24
	if remainder == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd %dh", days, remainder)
}

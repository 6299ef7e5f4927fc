// Package models defines the core domain values for the pooptracker application.
// These models represent logged bowel movements and the derived chart buckets
// shown by the display layer.
//
// Terminology:
//   - Event: one recorded bowel movement, an instant plus a Bristol stool type.
//   - Bucket: a labelled day or week window with the number of events inside it.
package models

import (
	"errors"
	"time"
)

const (
	// MinBristolType is the lowest value on the Bristol stool scale.
	MinBristolType = 1
	// MaxBristolType is the highest value on the Bristol stool scale.
	MaxBristolType = 7
	// DefaultBristolType is used when a stored entry carries no usable type.
	DefaultBristolType = 4
)

// Event represents a single recorded bowel movement.
// Events are immutable values; construct them with NewEvent so the stool
// type is always inside the Bristol scale.
type Event struct {
	Timestamp   int64 `json:"timestamp"`   // Milliseconds since the Unix epoch (UTC instant)
	BristolType int   `json:"bristolType"` // 1–7, clamped at creation
}

// NewEvent creates an Event with bristolType clamped into [1,7].
func NewEvent(timestamp int64, bristolType int) Event {
	return Event{
		Timestamp:   timestamp,
		BristolType: ClampBristolType(bristolType),
	}
}

// ClampBristolType coerces t into the closed range [MinBristolType, MaxBristolType].
func ClampBristolType(t int) int {
	if t < MinBristolType {
		return MinBristolType
	}
	if t > MaxBristolType {
		return MaxBristolType
	}
	return t
}

// Time returns the event instant in UTC.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// Validate checks that the event fields are valid
func (e *Event) Validate() error {
	if e.BristolType < MinBristolType || e.BristolType > MaxBristolType {
		return errors.New("bristol type must be between 1 and 7")
	}
	return nil
}

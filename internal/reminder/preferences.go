// Package reminder schedules the daily "did you go today?" notification.
//
// The reminder fires once per day at a user-chosen local time. Preferences
// (enabled flag, hour, minute) live in the same storage backend as the event
// history, so changes made from the CLI are picked up by a running scheduler
// on its next tick.
package reminder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rewired-gh/pooptracker/internal/storage"
)

const (
	// DefaultHour is the reminder hour used until one is chosen.
	DefaultHour = 20
	// DefaultMinute is the reminder minute used until one is chosen.
	DefaultMinute = 0
)

// Preferences is the persisted reminder configuration.
type Preferences struct {
	Enabled bool
	Hour    int
	Minute  int
}

// DefaultPreferences returns a disabled reminder at 20:00.
func DefaultPreferences() Preferences {
	return Preferences{Enabled: false, Hour: DefaultHour, Minute: DefaultMinute}
}

// Validate checks that the time of day is valid
func (p Preferences) Validate() error {
	if p.Hour < 0 || p.Hour > 23 {
		return fmt.Errorf("reminder hour must be between 0 and 23, got %d", p.Hour)
	}
	if p.Minute < 0 || p.Minute > 59 {
		return fmt.Errorf("reminder minute must be between 0 and 59, got %d", p.Minute)
	}
	return nil
}

// TimeOfDay renders the reminder time as HH:MM.
func (p Preferences) TimeOfDay() string {
	return fmt.Sprintf("%02d:%02d", p.Hour, p.Minute)
}

// LoadPreferences reads preferences from b. Keys that were never written, or
// that hold unreadable values, fall back to defaults.
func LoadPreferences(ctx context.Context, b storage.Backend, defaults Preferences) (Preferences, error) {
	p := defaults

	if raw, ok, err := b.Read(ctx, storage.KeyReminderEnabled); err != nil {
		return defaults, fmt.Errorf("failed to read reminder preferences: %w", err)
	} else if ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			p.Enabled = v
		}
	}

	if raw, ok, err := b.Read(ctx, storage.KeyReminderHour); err != nil {
		return defaults, fmt.Errorf("failed to read reminder preferences: %w", err)
	} else if ok {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 && v <= 23 {
			p.Hour = v
		}
	}

	if raw, ok, err := b.Read(ctx, storage.KeyReminderMinute); err != nil {
		return defaults, fmt.Errorf("failed to read reminder preferences: %w", err)
	} else if ok {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 && v <= 59 {
			p.Minute = v
		}
	}

	return p, nil
}

// SaveEnabled persists the enabled flag.
func SaveEnabled(ctx context.Context, b storage.Backend, enabled bool) error {
	if err := b.Write(ctx, storage.KeyReminderEnabled, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("failed to save reminder state: %w", err)
	}
	return nil
}

// SaveTime persists the reminder time of day.
func SaveTime(ctx context.Context, b storage.Backend, hour, minute int) error {
	if err := (Preferences{Hour: hour, Minute: minute}).Validate(); err != nil {
		return err
	}
	if err := b.Write(ctx, storage.KeyReminderHour, strconv.Itoa(hour)); err != nil {
		return fmt.Errorf("failed to save reminder hour: %w", err)
	}
	if err := b.Write(ctx, storage.KeyReminderMinute, strconv.Itoa(minute)); err != nil {
		return fmt.Errorf("failed to save reminder minute: %w", err)
	}
	return nil
}

// ParseTimeOfDay parses "HH:MM" (24-hour clock).
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM: %w", s, err)
	}
	if err := (Preferences{Hour: hour, Minute: minute}).Validate(); err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}

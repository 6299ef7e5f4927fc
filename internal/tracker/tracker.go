// Package tracker wires the event history to a storage backend.
//
// Tracker owns the in-memory History. Every mutation is followed by a save
// of the whole history, and readers always receive a copy, so the reminder
// scheduler can read while the CLI or a chat command writes.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rewired-gh/pooptracker/internal/analytics"
	"github.com/rewired-gh/pooptracker/internal/history"
	"github.com/rewired-gh/pooptracker/internal/logger"
	"github.com/rewired-gh/pooptracker/internal/models"
	"github.com/rewired-gh/pooptracker/internal/reminder"
	"github.com/rewired-gh/pooptracker/internal/storage"
)

// ErrFutureTimestamp is returned by LogPast for entries after now.
var ErrFutureTimestamp = errors.New("entry time is in the future")

// Tracker is the application service around the event history.
type Tracker struct {
	mu       sync.RWMutex
	events   history.History
	backend  storage.Backend
	location *time.Location
	defaults reminder.Preferences
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithLocation sets the zone used for calendar buckets.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.location = loc
		}
	}
}

// WithReminderDefaults sets the preferences used before any are saved.
func WithReminderDefaults(p reminder.Preferences) Option {
	return func(t *Tracker) {
		t.defaults = p
	}
}

// Open loads the stored history from backend. Corrupt stored data is
// discarded and the stored value reset; it is never reported as an error.
func Open(ctx context.Context, backend storage.Backend, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		events:   history.History{},
		backend:  backend,
		location: time.Local,
		defaults: reminder.DefaultPreferences(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.reload(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Loaded %d events", len(t.events))
	return t, nil
}

// Refresh reloads the history from the backend so changes written by
// another process (the CLI while serve is running) become visible.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reload(ctx)
}

// reload replaces t.events with the stored history. Corrupt stored data is
// discarded and the stored value reset. Caller holds t.mu, or t is not yet
// shared.
func (t *Tracker) reload(ctx context.Context) error {
	raw, ok, err := t.backend.Read(ctx, storage.KeyEvents)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if !ok {
		t.events = history.History{}
		return nil
	}

	events, err := history.Load(raw)
	if errors.Is(err, history.ErrCorrupt) {
		logger.Warn("Stored history is corrupt, resetting: %v", err)
		if delErr := t.backend.Delete(ctx, storage.KeyEvents); delErr != nil {
			logger.Error("Failed to reset corrupt history: %v", delErr)
		}
	}
	t.events = events
	return nil
}

// Location returns the zone used for calendar buckets.
func (t *Tracker) Location() *time.Location {
	return t.location
}

// Log records an event at now.
func (t *Tracker) Log(ctx context.Context, bristolType int, now time.Time) (models.Event, error) {
	return t.add(ctx, now.UnixMilli(), bristolType)
}

// LogPast records an event at a user-chosen earlier time. Times after now
// are rejected with ErrFutureTimestamp.
func (t *Tracker) LogPast(ctx context.Context, at time.Time, bristolType int, now time.Time) (models.Event, error) {
	if at.UnixMilli() > now.UnixMilli() {
		return models.Event{}, ErrFutureTimestamp
	}
	return t.add(ctx, at.UnixMilli(), bristolType)
}

func (t *Tracker) add(ctx context.Context, timestamp int64, bristolType int) (models.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.reload(ctx); err != nil {
		return models.Event{}, err
	}
	updated := history.Add(t.events, timestamp, bristolType)
	if err := t.save(ctx, updated); err != nil {
		return models.Event{}, err
	}
	t.events = updated

	event := models.NewEvent(timestamp, bristolType)
	logger.Info("Logged type %d at %s", event.BristolType, event.Time().Format(time.RFC3339))
	return event, nil
}

// save persists h. Caller holds t.mu.
func (t *Tracker) save(ctx context.Context, h history.History) error {
	raw, err := history.Serialize(h)
	if err != nil {
		return err
	}
	if err := t.backend.Write(ctx, storage.KeyEvents, raw); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Events returns a copy of the history, most recent first.
func (t *Tracker) Events() history.History {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(history.History, len(t.events))
	copy(out, t.events)
	return out
}

// Summary runs the analytics over the history as last loaded. Call Refresh
// first when another process may have written since.
func (t *Tracker) Summary(now time.Time) analytics.Summary {
	return analytics.Summarize(t.Events(), now.UnixMilli(), t.location)
}

// Reminder returns the stored reminder preferences.
func (t *Tracker) Reminder(ctx context.Context) (reminder.Preferences, error) {
	return reminder.LoadPreferences(ctx, t.backend, t.defaults)
}

// SetReminderEnabled turns the daily reminder on or off.
func (t *Tracker) SetReminderEnabled(ctx context.Context, enabled bool) error {
	return reminder.SaveEnabled(ctx, t.backend, enabled)
}

// SetReminderTime changes the daily reminder time.
func (t *Tracker) SetReminderTime(ctx context.Context, hour, minute int) error {
	return reminder.SaveTime(ctx, t.backend, hour, minute)
}

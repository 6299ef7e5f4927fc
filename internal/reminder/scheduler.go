package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/pooptracker/internal/analytics"
	"github.com/rewired-gh/pooptracker/internal/logger"
)

// Reminder is one dispatched daily notification.
type Reminder struct {
	ID           string
	ScheduledFor time.Time
	Title        string
	Text         string
	Summary      analytics.Summary
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// Source supplies the scheduler with preferences and the current summary.
// Refresh is called before Summary so the reminder reflects entries logged
// since the scheduler started.
type Source interface {
	Reminder(ctx context.Context) (Preferences, error)
	Refresh(ctx context.Context) error
	Summary(now time.Time) analytics.Summary
}

// NextTrigger returns the next instant at hour:minute in now's location
// strictly after now: today if that is still ahead, otherwise tomorrow.
func NextTrigger(now time.Time, hour, minute int) time.Time {
	y, m, d := now.Date()
	trigger := time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	if !trigger.After(now) {
		trigger = time.Date(y, m, d+1, hour, minute, 0, 0, now.Location())
	}
	return trigger
}

// Compose builds the reminder text from a summary.
func Compose(scheduledFor time.Time, s analytics.Summary) Reminder {
	text := "No bowel movements logged yet. Did you go today?"
	if s.HasData() {
		text = fmt.Sprintf("Did you go today? Last logged %s (%s).", s.Elapsed, s.Risk)
	}
	return Reminder{
		ID:           uuid.New().String(),
		ScheduledFor: scheduledFor,
		Title:        "Daily check-in",
		Text:         text,
		Summary:      s,
	}
}

// Scheduler fires one reminder per day at the preferred time.
type Scheduler struct {
	source   Source
	notifier Notifier
	interval time.Duration
	location *time.Location

	next  time.Time
	armed Preferences
}

// NewScheduler creates a scheduler polling preferences every interval.
// Trigger times are computed in loc (nil means time.Local).
func NewScheduler(source Source, notifier Notifier, interval time.Duration, loc *time.Location) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		source:   source,
		notifier: notifier,
		interval: interval,
		location: loc,
	}
}

// Next returns the armed trigger time, or the zero time when disarmed.
func (s *Scheduler) Next() time.Time {
	return s.next
}

// Run ticks until ctx is cancelled. The first tick happens immediately so
// an enabled reminder is armed at startup.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Reminder scheduler stopped")
			return
		case tickTime := <-ticker.C:
			s.Tick(ctx, tickTime)
		}
	}
}

// Tick evaluates the schedule at now and sends a reminder if one is due.
// It returns the reminder that was sent, if any.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (*Reminder, error) {
	now = now.In(s.location)

	prefs, err := s.source.Reminder(ctx)
	if err != nil {
		logger.Warn("Failed to read reminder preferences: %v", err)
		return nil, err
	}

	if !prefs.Enabled {
		if !s.next.IsZero() {
			logger.Info("Reminder disabled, disarming")
		}
		s.next = time.Time{}
		return nil, nil
	}

	if s.next.IsZero() || prefs.Hour != s.armed.Hour || prefs.Minute != s.armed.Minute {
		s.arm(now, prefs)
		return nil, nil
	}

	if now.Before(s.next) {
		return nil, nil
	}

	if err := s.source.Refresh(ctx); err != nil {
		logger.Warn("Failed to refresh history, reminder uses last known data: %v", err)
	}
	r := Compose(s.next, s.source.Summary(now))
	s.arm(now, prefs)

	if err := s.notifier.Notify(ctx, r); err != nil {
		logger.Error("Failed to deliver reminder %s: %v", r.ID, err)
		return nil, fmt.Errorf("failed to deliver reminder: %w", err)
	}
	logger.Info("Sent reminder %s scheduled for %s", r.ID, r.ScheduledFor.Format(time.RFC3339))
	return &r, nil
}

func (s *Scheduler) arm(now time.Time, prefs Preferences) {
	s.armed = prefs
	s.next = NextTrigger(now, prefs.Hour, prefs.Minute)
	logger.Debug("Reminder armed for %s", s.next.Format(time.RFC3339))
}

// LogNotifier writes reminders to the log instead of delivering them.
type LogNotifier struct{}

// Notify logs the reminder text.
func (LogNotifier) Notify(_ context.Context, r Reminder) error {
	logger.Info("[reminder %s] %s: %s", r.ID, r.Title, r.Text)
	return nil
}

package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rewired-gh/pooptracker/internal/analytics"
	"github.com/rewired-gh/pooptracker/internal/history"
	"github.com/rewired-gh/pooptracker/internal/reminder"
	"github.com/rewired-gh/pooptracker/internal/storage"
)

func mustStorage(t *testing.T) storage.Backend {
	t.Helper()
	s, err := storage.NewSQLiteBackend(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustOpen(t *testing.T, b storage.Backend) *Tracker {
	t.Helper()
	tr, err := Open(context.Background(), b, WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return tr
}

func TestLogPersistsAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	b := mustStorage(t)
	tr := mustOpen(t, b)

	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	if _, err := tr.Log(ctx, 4, now.Add(-24*time.Hour)); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	event, err := tr.Log(ctx, 99, now)
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if event.BristolType != 7 {
		t.Errorf("Expected clamped type 7, got %d", event.BristolType)
	}

	raw, ok, err := b.Read(ctx, storage.KeyEvents)
	if err != nil || !ok {
		t.Fatalf("Expected stored history, ok=%v err=%v", ok, err)
	}
	stored, err := history.Load(raw)
	if err != nil {
		t.Fatalf("Stored history does not parse: %v", err)
	}
	if len(stored) != 2 || stored[0].Timestamp != now.UnixMilli() {
		t.Errorf("Unexpected stored history: %v", stored)
	}

	// A second tracker over the same backend sees the same events.
	reopened := mustOpen(t, b)
	if got := reopened.Events(); len(got) != 2 || got[0].BristolType != 7 {
		t.Errorf("Unexpected reopened history: %v", got)
	}
}

func TestLogPastRejectsFuture(t *testing.T) {
	ctx := context.Background()
	tr := mustOpen(t, mustStorage(t))
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

	if _, err := tr.LogPast(ctx, now.Add(time.Minute), 4, now); !errors.Is(err, ErrFutureTimestamp) {
		t.Errorf("Expected ErrFutureTimestamp, got %v", err)
	}
	if len(tr.Events()) != 0 {
		t.Error("Rejected entry must not be recorded")
	}

	if _, err := tr.LogPast(ctx, now.Add(-3*time.Hour), 2, now); err != nil {
		t.Fatalf("LogPast failed: %v", err)
	}
	if _, err := tr.LogPast(ctx, now, 3, now); err != nil {
		t.Fatalf("LogPast at now should be accepted: %v", err)
	}
	if !history.Sorted(tr.Events()) {
		t.Error("History must stay sorted")
	}
}

func TestOpenResetsCorruptHistory(t *testing.T) {
	ctx := context.Background()
	b := mustStorage(t)
	if err := b.Write(ctx, storage.KeyEvents, "garbage"); err != nil {
		t.Fatal(err)
	}

	tr := mustOpen(t, b)
	if len(tr.Events()) != 0 {
		t.Errorf("Expected empty history, got %v", tr.Events())
	}
	if _, ok, _ := b.Read(ctx, storage.KeyEvents); ok {
		t.Error("Expected corrupt value to be removed")
	}
}

func TestOpenLegacyFormat(t *testing.T) {
	ctx := context.Background()
	b, err := storage.NewFileBackend(filepath.Join(t.TempDir(), "data.json"), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if err := b.Write(ctx, storage.KeyEvents, "[1000, 3000, 2000]"); err != nil {
		t.Fatal(err)
	}

	tr := mustOpen(t, b)
	events := tr.Events()
	if len(events) != 3 || events[0].Timestamp != 3000 || events[0].BristolType != 4 {
		t.Errorf("Unexpected legacy history: %v", events)
	}
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	tr := mustOpen(t, mustStorage(t))
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

	if s := tr.Summary(now); s.HasData() {
		t.Error("Expected empty summary")
	}

	_, _ = tr.LogPast(ctx, now.Add(-96*time.Hour), 4, now)
	_, _ = tr.LogPast(ctx, now.Add(-72*time.Hour), 4, now)

	s := tr.Summary(now)
	if s.Risk != analytics.RiskLikely {
		t.Errorf("Expected likely risk, got %s", s.Risk)
	}
	if s.Daily[len(s.Daily)-4].Count != 1 {
		t.Errorf("Expected an event three days ago, got %+v", s.Daily)
	}
}

func TestReminderPreferences(t *testing.T) {
	ctx := context.Background()
	b := mustStorage(t)
	tr, err := Open(ctx, b, WithReminderDefaults(reminder.Preferences{Hour: 21, Minute: 15}))
	if err != nil {
		t.Fatal(err)
	}

	p, err := tr.Reminder(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p.Enabled || p.Hour != 21 || p.Minute != 15 {
		t.Errorf("Expected configured defaults, got %+v", p)
	}

	if err := tr.SetReminderEnabled(ctx, true); err != nil {
		t.Fatal(err)
	}
	if err := tr.SetReminderTime(ctx, 6, 30); err != nil {
		t.Fatal(err)
	}
	if err := tr.SetReminderTime(ctx, 30, 0); err == nil {
		t.Error("Expected invalid hour to be rejected")
	}

	p, _ = tr.Reminder(ctx)
	if !p.Enabled || p.Hour != 6 || p.Minute != 30 {
		t.Errorf("Unexpected preferences: %+v", p)
	}
}

func TestServeSeesChangesFromAnotherProcess(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")
	now := time.Date(2024, 1, 10, 19, 0, 0, 0, time.UTC)

	openPair := func() *Tracker {
		b, err := storage.NewFileBackend(path, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = b.Close() })
		return mustOpen(t, b)
	}
	serve := openPair()
	cli := openPair()

	if _, err := cli.Log(ctx, 3, now.Add(-time.Hour)); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := cli.SetReminderEnabled(ctx, true); err != nil {
		t.Fatalf("SetReminderEnabled failed: %v", err)
	}

	p, err := serve.Reminder(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Enabled {
		t.Errorf("Expected serve to see the enabled reminder, got %+v", p)
	}

	if err := serve.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if s := serve.Summary(now); s.Total != 1 || s.Last.BristolType != 3 {
		t.Errorf("Expected serve to see the logged entry, got total %d", s.Total)
	}

	s := reminder.NewScheduler(serve, reminder.LogNotifier{}, time.Second, time.UTC)
	s.Tick(ctx, now)
	if !s.Next().Equal(time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected scheduler to arm for 20:00, got %v", s.Next())
	}

	// A write from serve's side merges with the CLI's entry.
	if _, err := serve.Log(ctx, 5, now); err != nil {
		t.Fatal(err)
	}
	if err := cli.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if got := cli.Events(); len(got) != 2 {
		t.Errorf("Expected both entries after merge, got %v", got)
	}
}

func TestConcurrentReadsDuringWrites(t *testing.T) {
	ctx := context.Background()
	tr := mustOpen(t, mustStorage(t))
	base := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = tr.LogPast(ctx, base.Add(-time.Duration(i)*time.Hour), 4, base)
		}(i)
		go func() {
			defer wg.Done()
			if !history.Sorted(tr.Events()) {
				t.Error("Observed unsorted history")
			}
			_ = tr.Summary(base)
		}()
	}
	wg.Wait()

	if len(tr.Events()) != 20 {
		t.Errorf("Expected 20 events, got %d", len(tr.Events()))
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rewired-gh/pooptracker/internal/display"
	"github.com/rewired-gh/pooptracker/internal/logger"
	"github.com/rewired-gh/pooptracker/internal/models"
	"github.com/rewired-gh/pooptracker/internal/reminder"
	"github.com/rewired-gh/pooptracker/internal/storage"
	"github.com/rewired-gh/pooptracker/internal/telegram"
	"github.com/rewired-gh/pooptracker/internal/tracker"
)

const pastEntryLayout = "2006-01-02 15:04"

func (a *app) println(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(a.out, line)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) cmdLog(ctx context.Context, args []string) error {
	fs := newFlagSet("log")
	bristolType := fs.Int("type", models.DefaultBristolType, "Bristol stool type (1-7)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	event, err := a.tracker.Log(ctx, *bristolType, a.now())
	if err != nil {
		return err
	}
	a.println("Logged " + models.BristolLabel(event.BristolType))
	return nil
}

func (a *app) cmdLogPast(ctx context.Context, args []string) error {
	fs := newFlagSet("log-past")
	bristolType := fs.Int("type", models.DefaultBristolType, "Bristol stool type (1-7)")
	at := fs.String("at", "", `Local time of the entry, "2006-01-02 15:04"`)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *at == "" {
		return fmt.Errorf("%w: log-past requires -at", errUsage)
	}

	when, err := time.ParseInLocation(pastEntryLayout, *at, a.tracker.Location())
	if err != nil {
		return fmt.Errorf("invalid -at %q: %w", *at, err)
	}

	event, err := a.tracker.LogPast(ctx, when, *bristolType, a.now())
	if errors.Is(err, tracker.ErrFutureTimestamp) {
		return fmt.Errorf("cannot log a time in the future: %s", *at)
	}
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Logged past entry %s at %s",
		models.BristolLabel(event.BristolType), display.FormatTime(event.Timestamp, a.tracker.Location())))
	return nil
}

func (a *app) cmdHistory() error {
	a.println(display.HistoryRows(a.tracker.Events(), a.now().UnixMilli(), a.tracker.Location())...)
	return nil
}

func (a *app) cmdStats() error {
	s := a.tracker.Summary(a.now())
	a.println(display.StatusOf(s, a.tracker.Location()).Lines()...)
	a.println("", "Entries:       "+humanize.Comma(int64(s.Total)))
	if fb, ok := a.backend.(*storage.FileBackend); ok {
		a.println("Data file:     " + fb.Path() + " (" + humanize.Bytes(uint64(fb.Size())) + ")")
	}
	return nil
}

func (a *app) cmdCharts() error {
	s := a.tracker.Summary(a.now())
	a.println("Last 7 days")
	a.println(display.Chart(s.Daily)...)
	a.println("", "Last 8 weeks")
	a.println(display.Chart(s.Weekly)...)
	return nil
}

func (a *app) cmdReminder(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: reminder needs on, off, time or show", errUsage)
	}

	switch args[0] {
	case "on", "off":
		enabled := args[0] == "on"
		if err := a.tracker.SetReminderEnabled(ctx, enabled); err != nil {
			return err
		}
		if enabled {
			a.println("Daily reminder enabled")
		} else {
			a.println("Daily reminder disabled")
		}
	case "time":
		if len(args) != 2 {
			return fmt.Errorf("%w: reminder time needs HH:MM", errUsage)
		}
		hour, minute, err := reminder.ParseTimeOfDay(args[1])
		if err != nil {
			return err
		}
		if err := a.tracker.SetReminderTime(ctx, hour, minute); err != nil {
			return err
		}
		a.println(fmt.Sprintf("Reminder time updated to %02d:%02d", hour, minute))
	case "show":
	default:
		return fmt.Errorf("%w: unknown reminder action %q", errUsage, args[0])
	}

	p, err := a.tracker.Reminder(ctx)
	if err != nil {
		return err
	}
	state := "off"
	if p.Enabled {
		state = "on"
	}
	a.println(fmt.Sprintf("Reminder: %s at %s", state, p.TimeOfDay()))
	if p.Enabled {
		next := reminder.NextTrigger(a.now().In(a.tracker.Location()), p.Hour, p.Minute)
		a.println("Next:     " + next.Format(display.DateLayout))
	}
	return nil
}

func (a *app) cmdServe(ctx context.Context) error {
	var notifier reminder.Notifier = reminder.LogNotifier{}

	if a.cfg.Telegram.Enabled {
		client, err := telegram.NewClient(
			a.cfg.Telegram.BotToken,
			a.cfg.Telegram.ChatID,
			a.cfg.Telegram.MaxRetries,
			a.cfg.Telegram.RetryDelayBase,
			a.tracker.Location(),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram client: %w", err)
		}
		logger.Info("Telegram client initialized successfully")
		client.ListenForCommands(ctx, a.tracker)
		notifier = client
	} else {
		logger.Debug("Telegram notifications disabled, reminders go to the log")
	}

	scheduler := reminder.NewScheduler(a.tracker, notifier, a.cfg.Reminder.CheckInterval, a.tracker.Location())
	logger.Info("Starting reminder scheduler (check interval: %v)", a.cfg.Reminder.CheckInterval)
	scheduler.Run(ctx)
	logger.Info("Service stopped")
	return nil
}

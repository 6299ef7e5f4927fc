package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rewired-gh/pooptracker/internal/config"
	"github.com/rewired-gh/pooptracker/internal/logger"
	"github.com/rewired-gh/pooptracker/internal/reminder"
	"github.com/rewired-gh/pooptracker/internal/storage"
	"github.com/rewired-gh/pooptracker/internal/tracker"
)

const usage = `Usage: pooptracker [-config path] <command> [flags]

Commands:
  log        [-type N]                         record a movement now
  log-past   -at "2006-01-02 15:04" [-type N]  record an earlier movement
  history                                      list every entry, most recent first
  stats                                        last entry, regularity and constipation risk
  charts                                       daily and weekly counts
  reminder   on | off | time HH:MM | show      manage the daily reminder
  serve                                        run the reminder scheduler until interrupted
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, time.Now); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatalf("pooptracker: %v", err)
	}
}

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	backend storage.Backend
	tracker *tracker.Tracker
	out     io.Writer
	now     func() time.Time
}

func run(ctx context.Context, args []string, out io.Writer, now func() time.Time) error {
	global := flag.NewFlagSet("pooptracker", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	configPath := global.String("config", "configs/config.yaml", "Path to configuration file")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if global.NArg() == 0 {
		return errUsage
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Debug("Configuration loaded from %s", *configPath)

	loc, err := cfg.Display.Location()
	if err != nil {
		return err
	}

	backend, err := storage.Open(ctx, storage.Options{
		Kind:            storage.Kind(cfg.Storage.Backend),
		FilePath:        cfg.Storage.FilePath,
		DBPath:          cfg.Storage.DBPath,
		FilePermissions: cfg.Storage.FilePermissions,
		DirPermissions:  cfg.Storage.DirPermissions,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	tr, err := tracker.Open(ctx, backend,
		tracker.WithLocation(loc),
		tracker.WithReminderDefaults(reminder.Preferences{
			Enabled: cfg.Reminder.Enabled,
			Hour:    cfg.Reminder.Hour,
			Minute:  cfg.Reminder.Minute,
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to open tracker: %w", err)
	}

	a := &app{cfg: cfg, backend: backend, tracker: tr, out: out, now: now}

	command, rest := global.Arg(0), global.Args()[1:]
	switch command {
	case "log":
		return a.cmdLog(ctx, rest)
	case "log-past":
		return a.cmdLogPast(ctx, rest)
	case "history":
		return a.cmdHistory()
	case "stats":
		return a.cmdStats()
	case "charts":
		return a.cmdCharts()
	case "reminder":
		return a.cmdReminder(ctx, rest)
	case "serve":
		return a.cmdServe(ctx)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

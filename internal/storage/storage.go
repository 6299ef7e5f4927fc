// Package storage provides small string key-value backends used to persist
// the event history and reminder preferences.
//
// Two backends are available: a JSON file written atomically through a
// temporary file and rename, and an embedded SQLite database. Both satisfy
// Backend, so the rest of the application never knows which one is active.
package storage

import (
	"context"
	"errors"
	"fmt"
)

const (
	// KeyEvents holds the serialized event history.
	KeyEvents = "events"
	// KeyReminderEnabled holds "true" or "false".
	KeyReminderEnabled = "reminder_enabled"
	// KeyReminderHour holds the reminder hour of day, 0–23.
	KeyReminderHour = "reminder_hour"
	// KeyReminderMinute holds the reminder minute, 0–59.
	KeyReminderMinute = "reminder_minute"
)

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("storage backend is closed")

// Backend is a string key-value store.
// Read reports ok=false when the key has never been written.
// Implementations must be safe for concurrent use.
type Backend interface {
	Read(ctx context.Context, key string) (value string, ok bool, err error)
	Write(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Kind names a backend implementation in configuration.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
)

// Options selects and configures a backend.
type Options struct {
	Kind            Kind
	FilePath        string
	DBPath          string
	FilePermissions uint32
	DirPermissions  uint32
}

// Open creates the backend described by opts.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Kind {
	case KindFile, "":
		b, err := NewFileBackend(opts.FilePath, opts.FilePermissions, opts.DirPermissions)
		if err != nil {
			return nil, err
		}
		return b, nil
	case KindSQLite:
		b, err := NewSQLiteBackend(ctx, opts.DBPath)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Kind)
	}
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rewired-gh/pooptracker/internal/logger"
)

const (
	fileFormatVersion      = "1.0"
	defaultFilePermissions = 0o600
	defaultDirPermissions  = 0o700
)

// FileBackend keeps all keys in memory and persists them to a single JSON
// document on every mutation. Before each operation it checks whether the
// document was replaced by another process and reloads it if so.
type FileBackend struct {
	mu              sync.Mutex
	values          map[string]string
	filePath        string
	filePermissions os.FileMode
	dirPermissions  os.FileMode
	loaded          os.FileInfo // document as of the last load or save, nil if absent
	closed          bool
}

// persistenceFile represents the on-disk document
type persistenceFile struct {
	Version string            `json:"version"`
	SavedAt time.Time         `json:"saved_at"`
	Values  map[string]string `json:"values"`
}

// NewFileBackend opens (or prepares) the document at filePath.
// If filePath is empty, uses OS-appropriate tmp directory.
func NewFileBackend(filePath string, filePermissions, dirPermissions uint32) (*FileBackend, error) {
	if filePath == "" {
		filePath = filepath.Join(os.TempDir(), "pooptracker", "data.json")
	}
	if filePermissions == 0 {
		filePermissions = defaultFilePermissions
	}
	if dirPermissions == 0 {
		dirPermissions = defaultDirPermissions
	}

	b := &FileBackend{
		values:          make(map[string]string),
		filePath:        filePath,
		filePermissions: os.FileMode(filePermissions),
		dirPermissions:  os.FileMode(dirPermissions),
	}
	// Clean up any stale temp files from previous crashes
	tempPath := b.filePath + ".tmp"
	if _, err := os.Stat(tempPath); err == nil {
		_ = os.Remove(tempPath)
	}

	if err := b.refresh(); err != nil {
		return nil, err
	}
	return b, nil
}

// Path returns the document location.
func (b *FileBackend) Path() string {
	return b.filePath
}

// Size returns the size in bytes of the persisted document, or 0 if it
// does not exist yet.
func (b *FileBackend) Size() int64 {
	info, err := os.Stat(b.filePath)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Read returns the stored value for key
func (b *FileBackend) Read(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return "", false, ErrClosed
	}
	if err := b.refresh(); err != nil {
		return "", false, err
	}
	value, ok := b.values[key]
	return value, ok, nil
}

// Write stores value under key and persists the document
func (b *FileBackend) Write(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if err := b.refresh(); err != nil {
		return err
	}
	previous, existed := b.values[key]
	b.values[key] = value
	if err := b.save(); err != nil {
		if existed {
			b.values[key] = previous
		} else {
			delete(b.values, key)
		}
		return err
	}
	return nil
}

// Delete removes key and persists the document
func (b *FileBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if err := b.refresh(); err != nil {
		return err
	}
	previous, existed := b.values[key]
	if !existed {
		return nil
	}
	delete(b.values, key)
	if err := b.save(); err != nil {
		b.values[key] = previous
		return err
	}
	return nil
}

// Close marks the backend closed. Every write is already on disk.
func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}

// save writes the document atomically. Caller holds b.mu.
func (b *FileBackend) save() error {
	// Create data directory if needed
	dir := filepath.Dir(b.filePath)
	if err := os.MkdirAll(dir, b.dirPermissions); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data := persistenceFile{
		Version: fileFormatVersion,
		SavedAt: time.Now(),
		Values:  b.values,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temporary file first (atomic write)
	tempPath := b.filePath + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, b.filePermissions); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tempPath, b.filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	if info, err := os.Stat(b.filePath); err == nil {
		b.loaded = info
	}
	return nil
}

// refresh reloads the document when it differs from the one last seen.
// Saves replace the file by rename, so another writer always shows up as a
// different file. Caller holds b.mu.
func (b *FileBackend) refresh() error {
	info, err := os.Stat(b.filePath)
	if os.IsNotExist(err) {
		if b.loaded != nil {
			b.values = make(map[string]string)
			b.loaded = nil
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if b.loaded != nil && os.SameFile(b.loaded, info) &&
		b.loaded.ModTime().Equal(info.ModTime()) && b.loaded.Size() == info.Size() {
		return nil
	}
	return b.load(info)
}

// load restores the document from disk. An unreadable document is moved
// aside to <path>.corrupt and the backend starts empty.
func (b *FileBackend) load(info os.FileInfo) error {
	jsonData, err := os.ReadFile(b.filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var data persistenceFile
	if err := json.Unmarshal(jsonData, &data); err != nil {
		corruptPath := b.filePath + ".corrupt"
		logger.Warn("Data file %s is corrupt, moving it to %s: %v", b.filePath, corruptPath, err)
		if renameErr := os.Rename(b.filePath, corruptPath); renameErr != nil {
			return fmt.Errorf("failed to move corrupt data file aside: %w", renameErr)
		}
		b.values = make(map[string]string)
		b.loaded = nil
		return nil
	}

	b.values = data.Values
	if b.values == nil {
		b.values = make(map[string]string)
	}
	b.loaded = info
	return nil
}

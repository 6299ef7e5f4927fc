package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:  "file",
			FilePath: "./data/test.json",
		},
		Reminder: ReminderConfig{
			Hour:          20,
			CheckInterval: 30 * time.Second,
		},
		Display: DisplayConfig{Timezone: "UTC"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestLoadAndValidate(t *testing.T) {
	content := `
storage:
  backend: sqlite
  db_path: "./data/test.db"

reminder:
  enabled: true
  hour: 21
  minute: 30
  check_interval: 10s

telegram:
  bot_token: "test_token"
  chat_id: "12345"
  enabled: true

display:
  timezone: "Europe/Berlin"

logging:
  level: "debug"
  format: "json"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Unexpected backend: %s", cfg.Storage.Backend)
	}
	if cfg.Reminder.Hour != 21 || cfg.Reminder.Minute != 30 {
		t.Errorf("Unexpected reminder time: %d:%d", cfg.Reminder.Hour, cfg.Reminder.Minute)
	}
	if cfg.Reminder.CheckInterval != 10*time.Second {
		t.Errorf("Unexpected check interval: %v", cfg.Reminder.CheckInterval)
	}
	if cfg.Telegram.MaxRetries != 3 {
		t.Errorf("Expected default max_retries 3, got %d", cfg.Telegram.MaxRetries)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Backend != "file" {
		t.Errorf("Expected file backend by default, got %s", cfg.Storage.Backend)
	}
	if cfg.Reminder.Hour != 20 || cfg.Reminder.Minute != 0 {
		t.Errorf("Expected 20:00 default reminder, got %d:%02d", cfg.Reminder.Hour, cfg.Reminder.Minute)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate, got %v", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("POOPTRACKER_STORAGE_BACKEND", "sqlite")
	t.Setenv("POOPTRACKER_REMINDER_HOUR", "7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Expected env override for backend, got %s", cfg.Storage.Backend)
	}
	if cfg.Reminder.Hour != 7 {
		t.Errorf("Expected env override for hour, got %d", cfg.Reminder.Hour)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "postgres" }, true},
		{"sqlite without path", func(c *Config) { c.Storage.Backend = "sqlite" }, true},
		{"hour out of range", func(c *Config) { c.Reminder.Hour = 24 }, true},
		{"minute out of range", func(c *Config) { c.Reminder.Minute = -1 }, true},
		{"check interval too short", func(c *Config) { c.Reminder.CheckInterval = time.Millisecond }, true},
		{"missing telegram token when enabled", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.ChatID = "1"
		}, true},
		{"missing telegram chat when enabled", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.BotToken = "token"
		}, true},
		{"bad timezone", func(c *Config) { c.Display.Timezone = "Mars/Olympus" }, true},
		{"local timezone", func(c *Config) { c.Display.Timezone = "Local" }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

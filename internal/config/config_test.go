// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.DBPath != DefaultDBPath {
		t.Errorf("DBPath: got %q, want %q", cfg.DBPath, DefaultDBPath)
	}
	if cfg.PollIntervalSeconds != DefaultPollIntervalSeconds {
		t.Errorf("PollIntervalSeconds: got %d, want %d", cfg.PollIntervalSeconds, DefaultPollIntervalSeconds)
	}
	if cfg.AlarmVolume != DefaultAlarmVolume {
		t.Errorf("AlarmVolume: got %v, want %v", cfg.AlarmVolume, DefaultAlarmVolume)
	}
	if cfg.TimeFormat != "24" {
		t.Errorf("TimeFormat: got %q, want 24", cfg.TimeFormat)
	}
	if !cfg.DesktopNotifications {
		t.Error("DesktopNotifications: got false, want true")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TASKMATRIX_DB", "custom.db")
	t.Setenv("TASKMATRIX_POLL_INTERVAL", "30")
	t.Setenv("TASKMATRIX_VOLUME", "0.5")
	t.Setenv("TASKMATRIX_NOTIFICATIONS", "false")

	cfg := &Config{}
	setDefaults(cfg)
	loadFromEnv(cfg)

	if cfg.DBPath != "custom.db" {
		t.Errorf("DBPath: got %q, want custom.db", cfg.DBPath)
	}
	if cfg.PollIntervalSeconds != 30 {
		t.Errorf("PollIntervalSeconds: got %d, want 30", cfg.PollIntervalSeconds)
	}
	if cfg.AlarmVolume != 0.5 {
		t.Errorf("AlarmVolume: got %v, want 0.5", cfg.AlarmVolume)
	}
	if cfg.DesktopNotifications {
		t.Error("DesktopNotifications: got true, want false")
	}
}

func TestLoadFromEnvIgnoresBadValues(t *testing.T) {
	t.Setenv("TASKMATRIX_POLL_INTERVAL", "soon")
	t.Setenv("TASKMATRIX_NOTIFICATIONS", "maybe")

	cfg := &Config{}
	setDefaults(cfg)
	loadFromEnv(cfg)

	if cfg.PollIntervalSeconds != DefaultPollIntervalSeconds {
		t.Errorf("PollIntervalSeconds: got %d, want default", cfg.PollIntervalSeconds)
	}
	if !cfg.DesktopNotifications {
		t.Error("DesktopNotifications: got false, want default true")
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "taskmatrix.toml")

	content := []byte(`db_path = "tasks.db"
poll_interval_seconds = 15
alarm_volume = 0.3
time_format = "12"
`)
	if err := os.WriteFile(configFile, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{}
	setDefaults(cfg)
	if err := loadConfigFile(cfg, configFile); err != nil {
		t.Fatalf("loadConfigFile failed: %v", err)
	}

	if cfg.DBPath != "tasks.db" {
		t.Errorf("DBPath: got %q, want tasks.db", cfg.DBPath)
	}
	if cfg.PollIntervalSeconds != 15 {
		t.Errorf("PollIntervalSeconds: got %d, want 15", cfg.PollIntervalSeconds)
	}
	if cfg.AlarmVolume != 0.3 {
		t.Errorf("AlarmVolume: got %v, want 0.3", cfg.AlarmVolume)
	}
	if cfg.TimeFormat != "12" {
		t.Errorf("TimeFormat: got %q, want 12", cfg.TimeFormat)
	}
}

func TestFlagsOverrideEverything(t *testing.T) {
	t.Setenv("TASKMATRIX_POLL_INTERVAL", "30")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-poll-interval", "10", "-db", "flag.db"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.PollIntervalSeconds != 10 {
		t.Errorf("PollIntervalSeconds: got %d, want 10", cfg.PollIntervalSeconds)
	}
	if cfg.DBPath != "flag.db" {
		t.Errorf("DBPath: got %q, want flag.db", cfg.DBPath)
	}
}

func TestFinalizeClampsVolume(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.AlarmVolume = 1.5
	if err := finalize(cfg); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.AlarmVolume != 1 {
		t.Errorf("AlarmVolume: got %v, want 1", cfg.AlarmVolume)
	}
}

func TestFinalizeRejectsBadValues(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.PollIntervalSeconds = 0
	if err := finalize(cfg); err == nil {
		t.Error("expected error for zero poll interval")
	}

	cfg = &Config{}
	setDefaults(cfg)
	cfg.TimeFormat = "military"
	if err := finalize(cfg); err == nil {
		t.Error("expected error for invalid time format")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got := expandPath("~/data/tasks.db")
	want := filepath.Join(home, "data", "tasks.db")
	if got != want {
		t.Errorf("expandPath: got %q, want %q", got, want)
	}

	if got := expandPath("/abs/path.db"); got != "/abs/path.db" {
		t.Errorf("expandPath absolute: got %q", got)
	}
}

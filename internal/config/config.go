// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultDBPath              = "~/.taskmatrix/taskmatrix.db"
	DefaultPollIntervalSeconds = 60
	DefaultAlarmVolume         = 0.8
	DefaultTimeFormat          = "24"
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
)

// Config holds the full configuration for taskmatrix.
type Config struct {
	// Paths
	DBPath string `toml:"db_path"`

	// Alarm settings
	PollIntervalSeconds  int     `toml:"poll_interval_seconds"`
	DesktopNotifications bool    `toml:"desktop_notifications"`
	AlarmVolume          float64 `toml:"alarm_volume"`

	// Display
	TimeFormat string `toml:"time_format"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskmatrix/taskmatrix.toml)
// 3. Project config file (taskmatrix.toml or .taskmatrix.toml in current directory)
// 4. Environment variables (TASKMATRIX_*)
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if userFile := findUserConfigFile(); userFile != "" {
		if err := loadConfigFile(cfg, userFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userFile, err)
		}
	}

	if projFile := findProjectConfigFile(); projFile != "" {
		if err := loadConfigFile(cfg, projFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projFile, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalize(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.DBPath = DefaultDBPath
	cfg.PollIntervalSeconds = DefaultPollIntervalSeconds
	cfg.DesktopNotifications = true
	cfg.AlarmVolume = DefaultAlarmVolume
	cfg.TimeFormat = DefaultTimeFormat
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

func loadConfigFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKMATRIX_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TASKMATRIX_POLL_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollIntervalSeconds = n
		}
	}
	if v := os.Getenv("TASKMATRIX_NOTIFICATIONS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DesktopNotifications = b
		}
	}
	if v := os.Getenv("TASKMATRIX_VOLUME"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.AlarmVolume = f
		}
	}
	if v := os.Getenv("TASKMATRIX_TIME_FORMAT"); v != "" {
		cfg.TimeFormat = v
	}
	if v := os.Getenv("TASKMATRIX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKMATRIX_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return nil
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the task database")
	fs.IntVar(&cfg.PollIntervalSeconds, "poll-interval", cfg.PollIntervalSeconds, "alarm poll interval in seconds")
	fs.BoolVar(&cfg.DesktopNotifications, "notifications", cfg.DesktopNotifications, "send desktop notifications when alarms fire")
	fs.Float64Var(&cfg.AlarmVolume, "volume", cfg.AlarmVolume, "alarm playback volume (0..1)")
	fs.StringVar(&cfg.TimeFormat, "time-format", cfg.TimeFormat, "clock format: 12 or 24")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text, json, logfmt")
	return fs.Parse(args)
}

func finalize(cfg *Config) error {
	cfg.DBPath = expandPath(cfg.DBPath)
	if cfg.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive, got %d", cfg.PollIntervalSeconds)
	}
	if cfg.AlarmVolume < 0 {
		cfg.AlarmVolume = 0
	}
	if cfg.AlarmVolume > 1 {
		cfg.AlarmVolume = 1
	}
	if cfg.TimeFormat != "12" && cfg.TimeFormat != "24" {
		return fmt.Errorf("time_format must be 12 or 24, got %q", cfg.TimeFormat)
	}
	return nil
}

// findUserConfigFile looks for ~/.taskmatrix/taskmatrix.toml.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".taskmatrix", "taskmatrix.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{"taskmatrix.toml", ".taskmatrix.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	if p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return home
	}
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

package model

import "time"

// Settings is the persisted app configuration the alarm chain reads at fire
// time. Volume changes therefore take effect on the very next alarm.
type Settings struct {
	AlarmVolume float64
	TimeFormat  string
}

func DefaultSettings() Settings {
	return Settings{AlarmVolume: 0.8, TimeFormat: "24"}
}

// Volume returns the alarm volume clamped to [0, 1].
func (s Settings) Volume() float64 {
	if s.AlarmVolume < 0 {
		return 0
	}
	if s.AlarmVolume > 1 {
		return 1
	}
	return s.AlarmVolume
}

// FormatAlarmTime renders an alarm timestamp honoring the 12/24-hour
// preference.
func (s Settings) FormatAlarmTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if s.TimeFormat == "12" {
		return t.Format("Jan 2, 2006 03:04 PM")
	}
	return t.Format("Jan 2, 2006 15:04")
}

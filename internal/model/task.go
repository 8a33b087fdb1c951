package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPriority   = errors.New("model: invalid task priority")
	ErrInvalidRecurrence = errors.New("model: invalid recurrence rule")
)

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type Subtask struct {
	ID        string
	Title     string
	Completed bool
}

type Attachment struct {
	ID   string
	Name string
	Type string
	Data []byte
}

type Task struct {
	ID          string
	Title       string
	Notes       string
	Completed   bool
	Pinned      bool
	Archived    bool
	Trashed     bool
	Priority    Priority
	Tags        []string
	AlarmTime   *time.Time
	Recurrence  Recurrence
	// Sound selectors, mutually exclusive by priority: library entry first,
	// then the task-local clip, then the synthesized fallback.
	RingtoneLibraryID string
	CustomRingtone    *RingtoneClip
	Subtasks          []Subtask
	Attachments       []Attachment
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Recurrence.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, t.Recurrence)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if t.Completed && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task is completed")
	}
	if !t.Completed && t.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when task is not completed")
	}
	return nil
}

// HasAlarm reports whether the task carries a live alarm timestamp.
func (t Task) HasAlarm() bool {
	return t.AlarmTime != nil && !t.AlarmTime.IsZero()
}

// AlarmDue reports whether the alarm timestamp has been reached.
func (t Task) AlarmDue(now time.Time) bool {
	return t.HasAlarm() && !now.Before(*t.AlarmTime)
}

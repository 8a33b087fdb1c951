package model

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

type Recurrence string

const (
	RecurrenceNone        Recurrence = ""
	RecurrenceDaily       Recurrence = "daily"
	RecurrenceEvery2Days  Recurrence = "every_2_days"
	RecurrenceEvery3Days  Recurrence = "every_3_days"
	RecurrenceWeekly      Recurrence = "weekly"
	RecurrenceEvery2Weeks Recurrence = "every_2_weeks"
	RecurrenceMonthly     Recurrence = "monthly"
	RecurrenceLastFriday  Recurrence = "last_friday"
	RecurrenceLastMonday  Recurrence = "last_monday"
	RecurrenceCustom      Recurrence = "custom"
)

var ErrInvalidDate = errors.New("model: invalid base date")

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceEvery2Days, RecurrenceEvery3Days,
		RecurrenceWeekly, RecurrenceEvery2Weeks, RecurrenceMonthly,
		RecurrenceLastFriday, RecurrenceLastMonday, RecurrenceCustom:
		return true
	default:
		return false
	}
}

func (r Recurrence) Text() string {
	switch r {
	case RecurrenceNone:
		return "Never"
	case RecurrenceDaily:
		return "Every day"
	case RecurrenceEvery2Days:
		return "Every 2 days"
	case RecurrenceEvery3Days:
		return "Every 3 days"
	case RecurrenceWeekly:
		return "Every week"
	case RecurrenceEvery2Weeks:
		return "Every 2 weeks"
	case RecurrenceMonthly:
		return "Every month"
	case RecurrenceLastFriday:
		return "Last Friday of month"
	case RecurrenceLastMonday:
		return "Last Monday of month"
	default:
		return string(r)
	}
}

// NextOccurrence computes the due date that follows base under the given
// rule. Unrecognized rules (including "custom") return base unchanged so a
// poll loop never trips over stale persisted data.
func NextOccurrence(base time.Time, rule Recurrence) (time.Time, error) {
	if base.IsZero() {
		return time.Time{}, ErrInvalidDate
	}

	switch rule {
	case RecurrenceDaily:
		return base.AddDate(0, 0, 1), nil
	case RecurrenceEvery2Days:
		return base.AddDate(0, 0, 2), nil
	case RecurrenceEvery3Days:
		return base.AddDate(0, 0, 3), nil
	case RecurrenceWeekly:
		return base.AddDate(0, 0, 7), nil
	case RecurrenceEvery2Weeks:
		return base.AddDate(0, 0, 14), nil
	case RecurrenceMonthly:
		return addMonthClamped(base), nil
	case RecurrenceLastFriday:
		return lastWeekdayOfMonth(addMonthClamped(base), time.Friday), nil
	case RecurrenceLastMonday:
		return lastWeekdayOfMonth(addMonthClamped(base), time.Monday), nil
	default:
		return base, nil
	}
}

// addMonthClamped advances one calendar month, clamping the day when the
// target month is shorter (Jan 31 -> Feb 28/29).
func addMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	last := daysInMonth(y, m+1, t.Location())
	if d > last {
		d = last
	}
	return time.Date(y, m+1, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}

// lastWeekdayOfMonth steps backward from the final day of t's month until
// the weekday matches. Terminates within seven iterations.
func lastWeekdayOfMonth(t time.Time, weekday time.Weekday) time.Time {
	y, m, _ := t.Date()
	probe := time.Date(y, m, daysInMonth(y, m, t.Location()), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	for probe.Weekday() != weekday {
		probe = probe.AddDate(0, 0, -1)
	}
	return probe
}

// ShouldSpawnDuplicate reports whether a recurring task is due for a fresh
// instance. A task that has never been completed spawns immediately;
// otherwise it spawns once today reaches the next occurrence computed from
// the last completion.
func ShouldSpawnDuplicate(task Task, lastCompleted *time.Time, now time.Time) bool {
	if task.Recurrence == RecurrenceNone {
		return false
	}
	if lastCompleted == nil || lastCompleted.IsZero() {
		return true
	}
	next, err := NextOccurrence(*lastCompleted, task.Recurrence)
	if err != nil {
		return false
	}
	return sameDay(now, next) || now.After(next)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

const recurringNotePrefix = "[Recurring]"

// CreateDuplicate builds the next instance of a recurring task: fresh ID,
// cleared completion state, alarm set to the next occurrence from now.
// Subtasks and attachments do not carry over.
func CreateDuplicate(original Task, now time.Time) Task {
	next, _ := NextOccurrence(now, original.Recurrence)

	dup := original
	dup.ID = uuid.NewString()
	dup.Completed = false
	dup.CompletedAt = nil
	dup.CreatedAt = now
	dup.AlarmTime = &next
	dup.Subtasks = nil
	dup.Attachments = nil
	if original.Notes != "" {
		dup.Notes = recurringNotePrefix + " " + original.Notes
	} else {
		dup.Notes = recurringNotePrefix
	}
	return dup
}

type Occurrence struct {
	Task Task
	At   time.Time
}

const defaultHorizonDays = 30

// UpcomingOccurrences projects up to five future occurrences per recurring
// task inside the horizon, sorted ascending by date. Archived and trashed
// tasks are skipped. Ties keep input task order.
func UpcomingOccurrences(tasks []Task, now time.Time, horizonDays int) []Occurrence {
	if horizonDays <= 0 {
		horizonDays = defaultHorizonDays
	}
	limit := now.AddDate(0, 0, horizonDays)

	out := make([]Occurrence, 0)
	for _, task := range tasks {
		if task.Recurrence == RecurrenceNone || task.Archived || task.Trashed {
			continue
		}
		cursor := now
		if task.AlarmTime != nil && !task.AlarmTime.IsZero() {
			cursor = *task.AlarmTime
		}
		for i := 0; i < 5; i++ {
			next, err := NextOccurrence(cursor, task.Recurrence)
			if err != nil || !next.After(cursor) {
				break
			}
			cursor = next
			if !next.After(limit) {
				out = append(out, Occurrence{Task: task, At: next})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.Before(out[j].At)
	})
	return out
}

package model

import (
	"errors"
	"testing"
	"time"
)

func TestNextOccurrenceFixedOffsets(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		rule Recurrence
		days int
	}{
		{RecurrenceDaily, 1},
		{RecurrenceEvery2Days, 2},
		{RecurrenceEvery3Days, 3},
		{RecurrenceWeekly, 7},
		{RecurrenceEvery2Weeks, 14},
	}
	for _, tc := range cases {
		next, err := NextOccurrence(base, tc.rule)
		if err != nil {
			t.Fatalf("next occurrence for %s failed: %v", tc.rule, err)
		}
		want := base.AddDate(0, 0, tc.days)
		if !next.Equal(want) {
			t.Fatalf("%s: got %s want %s", tc.rule, next.Format(time.RFC3339), want.Format(time.RFC3339))
		}
	}
}

func TestNextOccurrenceDaily(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	next, err := NextOccurrence(base, RecurrenceDaily)
	if err != nil {
		t.Fatalf("next daily failed: %v", err)
	}
	if next.Format(time.RFC3339) != "2024-03-02T09:00:00Z" {
		t.Fatalf("unexpected next occurrence: %s", next.Format(time.RFC3339))
	}
}

func TestNextOccurrenceWeeklyKeepsWeekday(t *testing.T) {
	base := time.Date(2026, 2, 11, 8, 30, 0, 0, time.UTC) // Wednesday
	next, err := NextOccurrence(base, RecurrenceWeekly)
	if err != nil {
		t.Fatalf("next weekly failed: %v", err)
	}
	if next.Weekday() != base.Weekday() {
		t.Fatalf("weekday changed: got %s want %s", next.Weekday(), base.Weekday())
	}
}

func TestNextOccurrenceMonthlyLandsInNextMonth(t *testing.T) {
	base := time.Date(2026, 12, 15, 10, 0, 0, 0, time.UTC)
	next, err := NextOccurrence(base, RecurrenceMonthly)
	if err != nil {
		t.Fatalf("next monthly failed: %v", err)
	}
	if next.Year() != 2027 || next.Month() != time.January || next.Day() != 15 {
		t.Fatalf("unexpected year rollover result: %s", next.Format(time.RFC3339))
	}
}

func TestNextOccurrenceMonthlyClampsShortMonth(t *testing.T) {
	base := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	next, err := NextOccurrence(base, RecurrenceMonthly)
	if err != nil {
		t.Fatalf("next monthly failed: %v", err)
	}
	if next.Format("2006-01-02") != "2024-02-29" {
		t.Fatalf("expected clamp to leap-day, got %s", next.Format("2006-01-02"))
	}

	base = time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)
	next, err = NextOccurrence(base, RecurrenceMonthly)
	if err != nil {
		t.Fatalf("next monthly failed: %v", err)
	}
	if next.Format("2006-01-02") != "2025-02-28" {
		t.Fatalf("expected clamp to Feb 28, got %s", next.Format("2006-01-02"))
	}
}

func TestNextOccurrenceLastFriday(t *testing.T) {
	base := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	next, err := NextOccurrence(base, RecurrenceLastFriday)
	if err != nil {
		t.Fatalf("next last friday failed: %v", err)
	}
	if next.Format("2006-01-02") != "2024-03-29" {
		t.Fatalf("unexpected last friday: %s", next.Format("2006-01-02"))
	}
	if next.Weekday() != time.Friday {
		t.Fatalf("expected a Friday, got %s", next.Weekday())
	}
	// Latest such Friday: one week later is out of the month.
	if next.AddDate(0, 0, 7).Month() == next.Month() {
		t.Fatalf("%s is not the last Friday of its month", next.Format("2006-01-02"))
	}
}

func TestNextOccurrenceLastMonday(t *testing.T) {
	base := time.Date(2026, 1, 10, 7, 0, 0, 0, time.UTC)
	next, err := NextOccurrence(base, RecurrenceLastMonday)
	if err != nil {
		t.Fatalf("next last monday failed: %v", err)
	}
	if next.Weekday() != time.Monday || next.Month() != time.February {
		t.Fatalf("unexpected last monday: %s", next.Format(time.RFC3339))
	}
	if next.AddDate(0, 0, 7).Month() == next.Month() {
		t.Fatalf("%s is not the last Monday of its month", next.Format("2006-01-02"))
	}
}

func TestNextOccurrenceUnknownRuleIsNoop(t *testing.T) {
	base := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	for _, rule := range []Recurrence{RecurrenceNone, RecurrenceCustom, Recurrence("bogus")} {
		next, err := NextOccurrence(base, rule)
		if err != nil {
			t.Fatalf("no-op rule %q errored: %v", rule, err)
		}
		if !next.Equal(base) {
			t.Fatalf("no-op rule %q changed date: %s", rule, next.Format(time.RFC3339))
		}
	}
}

func TestNextOccurrenceRejectsZeroDate(t *testing.T) {
	_, err := NextOccurrence(time.Time{}, RecurrenceDaily)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestShouldSpawnDuplicate(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{ID: "t1", Title: "water plants", Recurrence: RecurrenceDaily, CreatedAt: now}

	if ShouldSpawnDuplicate(Task{ID: "t2", Title: "one shot", CreatedAt: now}, nil, now) {
		t.Fatalf("task without recurrence must never spawn")
	}
	if !ShouldSpawnDuplicate(task, nil, now) {
		t.Fatalf("never-completed recurring task must spawn immediately")
	}

	completed := now.AddDate(0, 0, -2)
	if !ShouldSpawnDuplicate(task, &completed, now) {
		t.Fatalf("past-due recurring task must spawn")
	}

	completed = now
	if ShouldSpawnDuplicate(task, &completed, now) {
		t.Fatalf("task completed today with a daily rule is not yet due")
	}

	// Same-day occurrence counts as due.
	completed = now.AddDate(0, 0, -1)
	if !ShouldSpawnDuplicate(task, &completed, now.Add(-time.Hour)) {
		t.Fatalf("same-day occurrence must count as due")
	}
}

func TestCreateDuplicate(t *testing.T) {
	now := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	done := now.Add(-time.Hour)
	original := Task{
		ID:         "orig",
		Title:      "weekly review",
		Notes:      "check inbox zero",
		Completed:  true,
		Recurrence: RecurrenceWeekly,
		Subtasks:   []Subtask{{ID: "s1", Title: "email"}},
		Attachments: []Attachment{
			{ID: "a1", Name: "agenda.txt", Data: []byte("x")},
		},
		CreatedAt:   now.AddDate(0, 0, -7),
		CompletedAt: &done,
	}

	dup := CreateDuplicate(original, now)
	if dup.ID == original.ID || dup.ID == "" {
		t.Fatalf("duplicate must carry a fresh id, got %q", dup.ID)
	}
	if dup.Completed || dup.CompletedAt != nil {
		t.Fatalf("duplicate must start uncompleted")
	}
	if !dup.CreatedAt.Equal(now) {
		t.Fatalf("duplicate created_at: got %s want %s", dup.CreatedAt, now)
	}
	if dup.AlarmTime == nil || !dup.AlarmTime.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("duplicate alarm should be next weekly occurrence, got %v", dup.AlarmTime)
	}
	if dup.Notes != "[Recurring] check inbox zero" {
		t.Fatalf("unexpected duplicate notes: %q", dup.Notes)
	}
	if len(dup.Subtasks) != 0 || len(dup.Attachments) != 0 {
		t.Fatalf("subtasks and attachments must not carry over")
	}

	noNotes := CreateDuplicate(Task{ID: "n", Title: "n", Recurrence: RecurrenceDaily, CreatedAt: now}, now)
	if noNotes.Notes != "[Recurring]" {
		t.Fatalf("unexpected marker notes: %q", noNotes.Notes)
	}
}

func TestUpcomingOccurrencesSortedWithinHorizon(t *testing.T) {
	now := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	alarmA := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "monthly", Title: "rent", Recurrence: RecurrenceMonthly, CreatedAt: now},
		{ID: "daily", Title: "standup", Recurrence: RecurrenceDaily, AlarmTime: &alarmA, CreatedAt: now},
		{ID: "skip", Title: "archived", Recurrence: RecurrenceDaily, Archived: true, CreatedAt: now},
		{ID: "trash", Title: "trashed", Recurrence: RecurrenceDaily, Trashed: true, CreatedAt: now},
		{ID: "oneshot", Title: "no rule", CreatedAt: now},
	}

	out := UpcomingOccurrences(tasks, now, 30)
	if len(out) == 0 {
		t.Fatalf("expected upcoming occurrences")
	}
	limit := now.AddDate(0, 0, 30)
	for i, occ := range out {
		if occ.At.After(limit) {
			t.Fatalf("occurrence %d exceeds horizon: %s", i, occ.At.Format(time.RFC3339))
		}
		if occ.Task.ID == "skip" || occ.Task.ID == "trash" || occ.Task.ID == "oneshot" {
			t.Fatalf("unexpected task in projection: %s", occ.Task.ID)
		}
		if i > 0 && out[i].At.Before(out[i-1].At) {
			t.Fatalf("occurrences not sorted ascending at %d", i)
		}
	}

	dailyCount := 0
	for _, occ := range out {
		if occ.Task.ID == "daily" {
			dailyCount++
		}
	}
	if dailyCount != 5 {
		t.Fatalf("expected 5 projected daily occurrences, got %d", dailyCount)
	}
}

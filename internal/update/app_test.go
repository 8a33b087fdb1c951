package update

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskmatrix/internal/alarm"
	"github.com/sandeepkv93/taskmatrix/internal/model"
	"github.com/sandeepkv93/taskmatrix/internal/storage"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "taskmatrix-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	if err := storage.MigrateUp(repo.DB()); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	return NewStore(repo, nil)
}

// runCmd executes a tea.Cmd synchronously and feeds the resulting message
// back into the model, following any refresh it requests.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, sub := range batch {
				m = runCmd(t, m, sub)
			}
			return m
		}
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel()
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected default view %q, got %q", ViewTasks, m.CurrentView)
	}
	if m.Upcoming.HorizonDays != 30 {
		t.Fatalf("expected 30 day horizon, got %d", m.Upcoming.HorizonDays)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := NewModel()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	next := updated.(Model)
	if next.CurrentView != ViewUpcoming {
		t.Fatalf("expected upcoming view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}})
	next = updated.(Model)
	if next.CurrentView != ViewGuide {
		t.Fatalf("expected guide view, got %q", next.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m := NewModel()
	updated, _ := m.Update(SwitchViewMsg{View: ViewCalendar})
	next := updated.(Model)
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(SwitchViewMsg{View: View("Unknown")})
	next = updated.(Model)
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := NewModel()
	updated, _ := m.Update(SetStatusMsg{Text: "ready", IsError: false})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", next.LastError)
	}
	if !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m := NewModel()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next := updated.(Model)
	if !next.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m := NewModel()
	m.SelectedTaskID = "task-42"
	m.Status = StatusBar{Text: "all good"}
	out := m.View()
	if !strings.Contains(out, "view: Tasks") {
		t.Fatalf("expected view text in output: %q", out)
	}
	if !strings.Contains(out, "selected: task-42") {
		t.Fatalf("expected selected task in output: %q", out)
	}
	if !strings.Contains(out, "status: all good") {
		t.Fatalf("expected status in output: %q", out)
	}
}

func TestTasksLoadedRecomputesUpcoming(t *testing.T) {
	m := NewModel()
	m.clock = func() time.Time { return time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC) }
	due := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "t1", Title: "Stretch", AlarmTime: &due, Recurrence: model.RecurrenceDaily, CreatedAt: due},
	}

	updated, _ := m.Update(TasksLoadedMsg{Tasks: tasks})
	next := updated.(Model)
	if len(next.Tasks.Items) != 1 {
		t.Fatalf("expected 1 task, got %d", len(next.Tasks.Items))
	}
	if len(next.Upcoming.Items) == 0 {
		t.Fatal("expected upcoming occurrences for daily task")
	}
	want := due.AddDate(0, 0, 1)
	if !next.Upcoming.Items[0].At.Equal(want) {
		t.Fatalf("first occurrence = %v, want %v", next.Upcoming.Items[0].At, want)
	}
}

func TestAlarmDueSetsRingingAndResubscribes(t *testing.T) {
	m := NewModel()
	at := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	task := model.Task{ID: "t1", Title: "Stand up"}

	updated, _ := m.Update(AlarmDueMsg{Event: alarm.Event{Task: task, At: at}})
	next := updated.(Model)
	if !next.Ringing.Active || next.Ringing.TaskID != "t1" {
		t.Fatalf("unexpected ringing state: %+v", next.Ringing)
	}
	if next.Ringing.Tier != alarm.TierFallback {
		t.Fatalf("expected fallback tier without sounder, got %q", next.Ringing.Tier)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)
	if next.Ringing.Active {
		t.Fatal("expected alarm dismissed")
	}
}

func TestQuickAddPersistsTask(t *testing.T) {
	store := setupStore(t)
	m := NewModelWithRuntime(store, nil, nil, nil, DefaultRuntimeConfig())
	m.clock = func() time.Time { return time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC) }

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	next := updated.(Model)
	if !next.Tasks.CaptureMode {
		t.Fatal("expected capture mode")
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("water plants")})
	next = updated.(Model)
	updated, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)
	next = runCmd(t, next, cmd)

	if len(next.Tasks.Items) != 1 {
		t.Fatalf("expected 1 task after quick add, got %d", len(next.Tasks.Items))
	}
	if next.Tasks.Items[0].Title != "water plants" {
		t.Fatalf("unexpected title: %q", next.Tasks.Items[0].Title)
	}
}

func TestQuickAddFromTemplate(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)
	if err := store.CreateTemplate(ctx, model.Template{
		ID:         "tpl-1",
		Name:       "groceries",
		Title:      "Weekly groceries",
		Priority:   model.PriorityMedium,
		Tags:       []string{"home"},
		Recurrence: model.RecurrenceWeekly,
		CreatedAt:  now,
	}); err != nil {
		t.Fatalf("create template: %v", err)
	}

	m := NewModelWithRuntime(store, nil, nil, nil, DefaultRuntimeConfig())
	m.clock = func() time.Time { return now }
	m = runCmd(t, m, m.addTaskCmd("@groceries"))

	if len(m.Tasks.Items) != 1 {
		t.Fatalf("expected 1 task, got %d", len(m.Tasks.Items))
	}
	task := m.Tasks.Items[0]
	if task.Title != "Weekly groceries" || task.Recurrence != model.RecurrenceWeekly {
		t.Fatalf("unexpected instantiated task: %+v", task)
	}

	m = runCmd(t, m, m.addTaskCmd("@missing"))
	if !m.Status.IsError {
		t.Fatalf("expected error status for unknown template, got %+v", m.Status)
	}
}

func TestCompleteRecurringTaskSpawnsCopy(t *testing.T) {
	store := setupStore(t)
	now := time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)
	due := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()
	if err := store.CreateTask(ctx, model.Task{
		ID:         "t1",
		Title:      "Water plants",
		AlarmTime:  &due,
		Recurrence: model.RecurrenceDaily,
		CreatedAt:  due,
	}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	m := NewModelWithRuntime(store, nil, nil, nil, DefaultRuntimeConfig())
	m.clock = func() time.Time { return now }
	m = runCmd(t, m, m.refreshTasksCmd())

	m = runCmd(t, m, m.completeTaskCmd("t1"))

	tasks, err := store.Tasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected original plus spawned copy, got %d tasks", len(tasks))
	}
	var spawned *model.Task
	for i := range tasks {
		if !tasks[i].Completed {
			spawned = &tasks[i]
		}
	}
	if spawned == nil {
		t.Fatal("expected an open spawned copy")
	}
	// the copy is scheduled one rule step after the completion time
	wantAlarm := now.AddDate(0, 0, 1)
	if spawned.AlarmTime == nil || !spawned.AlarmTime.Equal(wantAlarm) {
		t.Fatalf("spawned alarm = %v, want %v", spawned.AlarmTime, wantAlarm)
	}
	if !strings.HasPrefix(spawned.Notes, "[Recurring]") {
		t.Fatalf("expected recurring note prefix, got %q", spawned.Notes)
	}
}

func TestCompleteNonRecurringTaskSpawnsNothing(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)
	if err := store.CreateTask(ctx, model.Task{ID: "t1", Title: "One off", CreatedAt: now}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	m := NewModelWithRuntime(store, nil, nil, nil, DefaultRuntimeConfig())
	m.clock = func() time.Time { return now }
	m = runCmd(t, m, m.completeTaskCmd("t1"))

	tasks, err := store.Tasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected single task, got %d", len(tasks))
	}
	if !tasks[0].Completed {
		t.Fatal("expected task completed")
	}
}

func TestSetAlarmRearmsPoller(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	old := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	if err := store.CreateTask(ctx, model.Task{ID: "t1", Title: "Meds", AlarmTime: &old, CreatedAt: old}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	poller := alarm.NewPoller(store)
	snapshot := store.Snapshot()
	fired := poller.Tick(snapshot, old)
	if len(fired) != 1 || !poller.Fired("t1") {
		t.Fatalf("expected alarm to fire, got %d", len(fired))
	}

	m := NewModelWithRuntime(store, poller, nil, nil, DefaultRuntimeConfig())
	m.clock = func() time.Time { return old }
	next := old.Add(time.Hour)
	m = runCmd(t, m, m.setAlarmCmd("t1", &next))

	if poller.Fired("t1") {
		t.Fatal("expected fired flag reset after alarm edit")
	}
	fired = poller.Tick(store.Snapshot(), next)
	if len(fired) != 1 {
		t.Fatalf("expected rescheduled alarm to fire, got %d", len(fired))
	}
}

func TestPaletteDoneCommand(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)
	if err := store.CreateTask(ctx, model.Task{ID: "abc-123", Title: "Pay rent", CreatedAt: now}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	m := NewModelWithRuntime(store, nil, nil, nil, DefaultRuntimeConfig())
	m.clock = func() time.Time { return now }
	m = runCmd(t, m, m.refreshTasksCmd())

	m.Palette.Active = true
	m.Palette.Input = "done abc"
	m.commandInput.SetValue("done abc")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	m = runCmd(t, m, cmd)

	task, err := store.Task(ctx, "abc-123")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if !task.Completed {
		t.Fatal("expected task completed via palette")
	}
}

func TestPaletteShowTagFilter(t *testing.T) {
	m := NewModel()
	m.Tasks.Items = []model.Task{
		{ID: "t1", Title: "A", Tags: []string{"home"}},
		{ID: "t2", Title: "B", Tags: []string{"work"}},
	}
	m.Palette.Active = true
	m.commandInput.SetValue("show tasks tag:work")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next := updated.(Model)

	if next.Filter.Tag != "work" {
		t.Fatalf("expected work filter, got %q", next.Filter.Tag)
	}
	visible := next.visibleTasks()
	if len(visible) != 1 || visible[0].ID != "t2" {
		t.Fatalf("unexpected visible tasks: %+v", visible)
	}
}

func TestPaletteRejectsUnknownRecurrence(t *testing.T) {
	m := NewModel()
	m.Tasks.Items = []model.Task{{ID: "t1", Title: "A"}}
	m.Palette.Active = true
	m.commandInput.SetValue("recur t1 hourly")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next := updated.(Model)

	if !next.Status.IsError {
		t.Fatalf("expected error status, got %+v", next.Status)
	}
}

func TestParseAlarmTimeFormats(t *testing.T) {
	now := time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)

	got, err := parseAlarmTime("2026-03-01T09:00:00Z", now)
	if err != nil {
		t.Fatalf("rfc3339 parse failed: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %v", got)
	}

	got, err = parseAlarmTime("09:00", now)
	if err != nil {
		t.Fatalf("clock parse failed: %v", err)
	}
	// 09:00 already passed today, so it rolls to tomorrow
	if got.Day() != 10 || got.Hour() != 9 {
		t.Fatalf("unexpected rolled time: %v", got)
	}

	if _, err := parseAlarmTime("next tuesday", now); err == nil {
		t.Fatal("expected parse error")
	}
}

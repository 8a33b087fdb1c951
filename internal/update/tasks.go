package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/sandeepkv93/taskmatrix/internal/model"
)

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Tasks.CaptureMode = false
		m.quickAddInput.SetValue("")
		m.quickAddInput.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.quickAddInput.Value())
		m.quickAddInput.SetValue("")
		if title == "" {
			return m, nil
		}
		return m, m.addTaskCmd(title)
	default:
		var cmd tea.Cmd
		m.quickAddInput, cmd = m.quickAddInput.Update(msg)
		return m, cmd
	}
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleTasks()
	switch msg.String() {
	case "j", "down":
		if m.Tasks.Cursor < len(visible)-1 {
			m.Tasks.Cursor++
		}
		m.syncSelection()
		return m, nil
	case "k", "up":
		if m.Tasks.Cursor > 0 {
			m.Tasks.Cursor--
		}
		m.syncSelection()
		return m, nil
	case "a":
		m.Tasks.CaptureMode = true
		m.quickAddInput.Focus()
		return m, nil
	case " ", "space":
		if task, ok := m.currentTask(); ok {
			return m, m.completeTaskCmd(task.ID)
		}
		return m, nil
	case "p":
		if task, ok := m.currentTask(); ok {
			return m, m.togglePinCmd(task.ID)
		}
		return m, nil
	case "d":
		if task, ok := m.currentTask(); ok {
			return m, m.trashTaskCmd(task.ID)
		}
		return m, nil
	case "F":
		m.Filter.Tag = ""
		m.Status = StatusBar{Text: "tag filter cleared", IsError: false}
		return m, nil
	}
	return m, nil
}

func (m Model) handleUpcomingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.Upcoming.Cursor < len(m.Upcoming.Items)-1 {
			m.Upcoming.Cursor++
		}
	case "k", "up":
		if m.Upcoming.Cursor > 0 {
			m.Upcoming.Cursor--
		}
	}
	return m, nil
}

func (m Model) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.Calendar.FocusDate = m.Calendar.FocusDate.AddDate(0, 0, -1)
	case "l", "right":
		m.Calendar.FocusDate = m.Calendar.FocusDate.AddDate(0, 0, 1)
	case "j", "down":
		m.Calendar.FocusDate = m.Calendar.FocusDate.AddDate(0, 0, 7)
	case "k", "up":
		m.Calendar.FocusDate = m.Calendar.FocusDate.AddDate(0, 0, -7)
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.store == nil {
		return m, nil
	}
	settings := m.store.Settings()
	switch msg.String() {
	case "+", "=":
		settings.AlarmVolume = clampVolume(settings.AlarmVolume + 0.1)
	case "-":
		settings.AlarmVolume = clampVolume(settings.AlarmVolume - 0.1)
	case "t":
		if settings.TimeFormat == "24" {
			settings.TimeFormat = "12"
		} else {
			settings.TimeFormat = "24"
		}
	case "n":
		m.DesktopEnabled = !m.DesktopEnabled
		m.Status = StatusBar{Text: fmt.Sprintf("desktop notifications: %v", m.DesktopEnabled), IsError: false}
		return m, nil
	default:
		return m, nil
	}
	store := m.store
	return m, func() tea.Msg {
		if err := store.SaveSettings(context.Background(), settings); err != nil {
			return AppErrorMsg{Err: err}
		}
		return taskMutatedMsg{status: fmt.Sprintf("settings saved: volume %d%%, %sh clock", int(settings.AlarmVolume*100), settings.TimeFormat)}
	}
}

func (m *Model) syncSelection() {
	if task, ok := m.currentTask(); ok {
		m.SelectedTaskID = task.ID
	} else {
		m.SelectedTaskID = ""
	}
}

func (m Model) refreshTasksCmd() tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		tasks, err := store.Tasks(context.Background())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return TasksLoadedMsg{Tasks: tasks}
	}
}

// addTaskCmd creates a task from a plain title, or instantiates a stored
// template when the title is "@<template-name>".
func (m Model) addTaskCmd(title string) tea.Cmd {
	store := m.store
	now := m.clock()
	if store == nil {
		return statusCmd(fmt.Sprintf("added (not persisted): %s", title), false)
	}
	return func() tea.Msg {
		ctx := context.Background()

		if name, ok := strings.CutPrefix(title, "@"); ok {
			tpl, found, err := store.TemplateByName(ctx, name)
			if err != nil {
				return AppErrorMsg{Err: err}
			}
			if !found {
				return SetStatusMsg{Text: fmt.Sprintf("no template named %q", name), IsError: true}
			}
			task := tpl.Instantiate(now)
			if err := store.CreateTask(ctx, task); err != nil {
				return AppErrorMsg{Err: err}
			}
			return taskMutatedMsg{status: fmt.Sprintf("added from template %s: %s", tpl.Name, task.Title)}
		}

		task := model.Task{
			ID:        uuid.NewString(),
			Title:     title,
			CreatedAt: now,
		}
		if err := store.CreateTask(ctx, task); err != nil {
			return AppErrorMsg{Err: err}
		}
		return taskMutatedMsg{status: fmt.Sprintf("added task: %s", title)}
	}
}

// completeTaskCmd toggles completion. Completing a recurring task also
// spawns its next copy when one is due.
func (m Model) completeTaskCmd(id string) tea.Cmd {
	store := m.store
	now := m.clock()
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		task, err := store.Task(ctx, id)
		if err != nil {
			return AppErrorMsg{Err: err}
		}

		if task.Completed {
			task.Completed = false
			task.CompletedAt = nil
			if err := store.UpdateTask(ctx, task); err != nil {
				return AppErrorMsg{Err: err}
			}
			return taskMutatedMsg{status: fmt.Sprintf("reopened: %s", task.Title)}
		}

		lastCompleted, err := store.LastCompletionOf(ctx, task.Title)
		if err != nil {
			return AppErrorMsg{Err: err}
		}

		task.Completed = true
		completedAt := now
		task.CompletedAt = &completedAt
		if err := store.UpdateTask(ctx, task); err != nil {
			return AppErrorMsg{Err: err}
		}

		if task.Recurrence != model.RecurrenceNone && model.ShouldSpawnDuplicate(task, lastCompleted, now) {
			dup := model.CreateDuplicate(task, now)
			if err := store.CreateTask(ctx, dup); err != nil {
				return AppErrorMsg{Err: err}
			}
			next := "unscheduled"
			if dup.AlarmTime != nil {
				next = dup.AlarmTime.Format("2006-01-02 15:04")
			}
			return taskMutatedMsg{status: fmt.Sprintf("completed: %s (next: %s)", task.Title, next)}
		}
		return taskMutatedMsg{status: fmt.Sprintf("completed: %s", task.Title)}
	}
}

func (m Model) togglePinCmd(id string) tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		task, err := store.Task(ctx, id)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		task.Pinned = !task.Pinned
		if err := store.UpdateTask(ctx, task); err != nil {
			return AppErrorMsg{Err: err}
		}
		return taskMutatedMsg{status: fmt.Sprintf("pinned=%v: %s", task.Pinned, task.Title)}
	}
}

func (m Model) trashTaskCmd(id string) tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		task, err := store.Task(ctx, id)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		task.Trashed = true
		if err := store.UpdateTask(ctx, task); err != nil {
			return AppErrorMsg{Err: err}
		}
		return taskMutatedMsg{status: fmt.Sprintf("trashed: %s", task.Title)}
	}
}

// setAlarmCmd moves or clears a task's alarm and rearms delivery so the new
// time can ring even if the old one already fired.
func (m Model) setAlarmCmd(id string, when *time.Time) tea.Cmd {
	store := m.store
	poller := m.poller
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		task, err := store.Task(ctx, id)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		task.AlarmTime = when
		if err := store.UpdateTask(ctx, task); err != nil {
			return AppErrorMsg{Err: err}
		}
		if poller != nil {
			poller.ResetAlarm(task.ID)
		}
		if when == nil {
			return taskMutatedMsg{status: fmt.Sprintf("alarm cleared: %s", task.Title)}
		}
		return taskMutatedMsg{status: fmt.Sprintf("alarm set for %s: %s", when.Format("2006-01-02 15:04"), task.Title)}
	}
}

func (m Model) setRecurrenceCmd(id string, rule model.Recurrence) tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		task, err := store.Task(ctx, id)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		task.Recurrence = rule
		if err := store.UpdateTask(ctx, task); err != nil {
			return AppErrorMsg{Err: err}
		}
		if rule == model.RecurrenceNone {
			return taskMutatedMsg{status: fmt.Sprintf("recurrence cleared: %s", task.Title)}
		}
		return taskMutatedMsg{status: fmt.Sprintf("repeats %s: %s", rule, task.Title)}
	}
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return SetStatusMsg{Text: text, IsError: isError}
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	// avoid float drift in repeated 0.1 steps
	return float64(int(v*10+0.5)) / 10
}

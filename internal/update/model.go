package update

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/taskmatrix/internal/alarm"
	"github.com/sandeepkv93/taskmatrix/internal/model"
	"github.com/sandeepkv93/taskmatrix/internal/views"
)

type View string

const (
	ViewTasks    View = "Tasks"
	ViewUpcoming View = "Upcoming"
	ViewCalendar View = "Calendar"
	ViewSettings View = "Settings"
	ViewGuide    View = "Guide"
)

type FilterState struct {
	Tag string
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks    string
	Upcoming string
	Calendar string
	Settings string
	Guide    string
	Help     string
	Quit     string
}

type TasksState struct {
	Items       []model.Task
	Cursor      int
	CaptureMode bool
}

type UpcomingState struct {
	Items       []model.Occurrence
	Cursor      int
	HorizonDays int
}

type CalendarState struct {
	FocusDate time.Time
}

type RingingState struct {
	Active bool
	TaskID string
	Title  string
	At     time.Time
	Tier   alarm.Tier
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type Model struct {
	CurrentView    View
	SelectedTaskID string
	Filter         FilterState
	Tasks          TasksState
	Upcoming       UpcomingState
	Calendar       CalendarState
	Ringing        RingingState
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	DesktopEnabled bool
	notifier       DesktopNotifier
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	store   *Store
	poller  *alarm.Poller
	sounder *alarm.Sounder
	clock   func() time.Time
	logger  *log.Logger

	// Bubble components used for rich TUI controls
	taskList      list.Model
	calendarTable table.Model
	quickAddInput textinput.Model
	commandInput  textinput.Model
	notesArea     textarea.Model
	helpModel     help.Model
	guideViewport viewport.Model
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type TasksLoadedMsg struct {
	Tasks []model.Task
}

type AlarmDueMsg struct {
	Event alarm.Event
}

type DismissAlarmMsg struct{}

type taskMutatedMsg struct {
	status string
}

// RuntimeConfig carries the main-package settings the TUI cares about.
type RuntimeConfig struct {
	DesktopNotifications bool
	HorizonDays          int
	TimeFormat           string
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DesktopNotifications: true,
		HorizonDays:          30,
		TimeFormat:           "24",
	}
}

func NewModel() Model {
	m := Model{
		CurrentView: ViewTasks,
		Upcoming: UpcomingState{
			HorizonDays: 30,
		},
		Calendar: CalendarState{
			FocusDate: time.Now().Truncate(24 * time.Hour),
		},
		notifier: NoopDesktopNotifier{},
		clock:    time.Now,
		logger:   log.New(io.Discard),
		Keys: GlobalKeyMap{
			Tasks:    "1",
			Upcoming: "2",
			Calendar: "3",
			Settings: "4",
			Guide:    "5",
			Help:     "?",
			Quit:     "q",
		},
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func NewModelWithRuntime(store *Store, poller *alarm.Poller, sounder *alarm.Sounder, notifier DesktopNotifier, cfg RuntimeConfig) Model {
	m := NewModel()
	m.store = store
	m.poller = poller
	m.sounder = sounder
	m.DesktopEnabled = cfg.DesktopNotifications
	if cfg.HorizonDays > 0 {
		m.Upcoming.HorizonDays = cfg.HorizonDays
	}
	if notifier != nil {
		m.notifier = notifier
	}
	return m
}

// WithLogger replaces the discard logger.
func (m Model) WithLogger(logger *log.Logger) Model {
	if logger != nil {
		m.logger = logger
	}
	return m
}

func (m *Model) initBubbleComponents() {
	m.taskList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 12)
	m.taskList.Title = "Tasks (list)"
	m.taskList.SetShowHelp(false)
	m.taskList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Time", Width: 7},
		{Title: "Rule", Width: 14},
		{Title: "Title", Width: 22},
	}
	m.calendarTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(10))

	m.quickAddInput = textinput.New()
	m.quickAddInput.Prompt = "add> "
	m.quickAddInput.CharLimit = 256
	m.quickAddInput.Width = 42

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.notesArea = textarea.New()
	m.notesArea.SetWidth(54)
	m.notesArea.SetHeight(8)
	m.notesArea.ShowLineNumbers = false
	m.notesArea.Placeholder = "Task notes (markdown)"

	m.helpModel = help.New()

	m.guideViewport = viewport.New(54, 14)
	m.guideViewport.SetContent(views.RenderMarkdown(guideMarkdown))
}

func (m *Model) syncBubbleData() {
	items := make([]list.Item, 0, len(m.visibleTasks()))
	for _, task := range m.visibleTasks() {
		desc := string(task.Priority)
		if task.Recurrence != model.RecurrenceNone {
			desc = strings.TrimSpace(desc + " repeats:" + string(task.Recurrence))
		}
		items = append(items, listItem{title: task.Title, description: desc})
	}
	m.taskList.SetItems(items)
	if len(items) > 0 && m.Tasks.Cursor < len(items) {
		m.taskList.Select(m.Tasks.Cursor)
	}

	rows := make([]table.Row, 0, len(m.Upcoming.Items))
	for _, occ := range m.Upcoming.Items {
		rows = append(rows, table.Row{
			occ.At.Format("2006-01-02"),
			occ.At.Format("15:04"),
			string(occ.Task.Recurrence),
			occ.Task.Title,
		})
	}
	m.calendarTable.SetRows(rows)
	if len(rows) > 0 && m.Upcoming.Cursor < len(rows) {
		m.calendarTable.SetCursor(m.Upcoming.Cursor)
	}

	if m.Palette.Active {
		m.commandInput.Focus()
	}
	if m.Tasks.CaptureMode {
		m.quickAddInput.Focus()
	}

	if task, ok := m.currentTask(); ok {
		m.notesArea.SetValue(task.Notes)
	}
}

// visibleTasks applies the tag filter to the loaded snapshot.
func (m Model) visibleTasks() []model.Task {
	if m.Filter.Tag == "" {
		return m.Tasks.Items
	}
	out := make([]model.Task, 0, len(m.Tasks.Items))
	for _, task := range m.Tasks.Items {
		if contains(task.Tags, m.Filter.Tag) {
			out = append(out, task)
		}
	}
	return out
}

func (m Model) currentTask() (model.Task, bool) {
	visible := m.visibleTasks()
	if len(visible) == 0 || m.Tasks.Cursor < 0 || m.Tasks.Cursor >= len(visible) {
		return model.Task{}, false
	}
	return visible[m.Tasks.Cursor], true
}

// findTask resolves a palette target to a loaded task by exact ID or unique
// ID prefix.
func (m Model) findTask(target string) (model.Task, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return model.Task{}, false
	}
	var match model.Task
	found := 0
	for _, task := range m.Tasks.Items {
		if task.ID == target {
			return task, true
		}
		if strings.HasPrefix(task.ID, target) {
			match = task
			found++
		}
	}
	if found == 1 {
		return match, true
	}
	return model.Task{}, false
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

const guideMarkdown = `# TaskMatrix

A keyboard-driven task matrix with alarms and recurring tasks.

## Views

- **1** tasks, **2** upcoming, **3** calendar, **4** settings, **5** guide

## Tasks

- **j/k** move, **a** quick add, **space** complete, **p** pin, **d** trash
- Completing a recurring task schedules its next copy automatically.

## Alarms

- Alarms are checked once a minute and ring at most once each
  until the alarm time is changed.
- **enter** dismisses a ringing alarm.

## Command palette

Press **/** and type a command:

- ` + "`add <title>`" + ` create a task (` + "`add @<template>`" + ` uses a stored template)
- ` + "`done <id>`" + ` complete a task
- ` + "`alarm <id> <RFC3339 time>`" + ` or ` + "`alarm <id> clear`" + `
- ` + "`recur <id> <rule>`" + ` (daily, weekly, monthly, last_friday, ...)
- ` + "`upcoming [days]`" + ` preview recurring occurrences
- ` + "`export json|csv <path>`" + ` and ` + "`import <path>`" + `
- ` + "`show tasks tag:<tag>`" + ` filter by tag
`

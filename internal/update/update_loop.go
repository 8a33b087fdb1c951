package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskmatrix/internal/alarm"
	"github.com/sandeepkv93/taskmatrix/internal/model"
	"github.com/sandeepkv93/taskmatrix/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshTasksCmd()}
	if m.poller != nil {
		cmds = append(cmds, waitForAlarmCmd(m.poller.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
			if typed.View == ViewTasks {
				m.quickAddInput.Focus()
			}
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case TasksLoadedMsg:
		m.Tasks.Items = typed.Tasks
		if m.Tasks.Cursor >= len(typed.Tasks) {
			m.Tasks.Cursor = 0
		}
		m.Upcoming.Items = model.UpcomingOccurrences(typed.Tasks, m.clock(), m.Upcoming.HorizonDays)
		m.syncSelection()
		return m, nil
	case taskMutatedMsg:
		m.Status = StatusBar{Text: typed.status, IsError: false}
		return m, m.refreshTasksCmd()
	case AlarmDueMsg:
		return m.onAlarmDue(typed.Event)
	case DismissAlarmMsg:
		m.Ringing = RingingState{}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	if m.Palette.Active {
		if keyStr == m.Keys.Help {
			m.HelpVisible = !m.HelpVisible
			return m, nil
		}
		return m.handlePaletteKey(msg)
	}

	if m.Ringing.Active {
		switch keyStr {
		case "enter", "esc":
			m.Ringing = RingingState{}
			m.Status = StatusBar{Text: "alarm dismissed", IsError: false}
			return m, nil
		}
	}

	if m.CurrentView == ViewTasks && m.Tasks.CaptureMode && keyStr != "ctrl+c" &&
		keyStr != m.Keys.Tasks && keyStr != m.Keys.Upcoming && keyStr != m.Keys.Calendar &&
		keyStr != m.Keys.Settings && keyStr != m.Keys.Guide &&
		keyStr != m.Keys.Help && keyStr != "/" {
		return m.handleQuickAddKey(msg)
	}

	switch keyStr {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.Focus()
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette active", IsError: false}
		return m, nil
	case m.Keys.Tasks:
		m.CurrentView = ViewTasks
		return m, nil
	case m.Keys.Upcoming:
		m.CurrentView = ViewUpcoming
		return m, nil
	case m.Keys.Calendar:
		m.CurrentView = ViewCalendar
		return m, nil
	case m.Keys.Settings:
		m.CurrentView = ViewSettings
		return m, nil
	case m.Keys.Guide:
		m.CurrentView = ViewGuide
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		if m.poller != nil {
			m.poller.Stop()
		}
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewTasks:
		return m.handleTasksKey(msg)
	case ViewUpcoming:
		return m.handleUpcomingKey(msg)
	case ViewCalendar:
		return m.handleCalendarKey(msg)
	case ViewSettings:
		return m.handleSettingsKey(msg)
	case ViewGuide:
		var cmd tea.Cmd
		m.guideViewport, cmd = m.guideViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) onAlarmDue(ev alarm.Event) (tea.Model, tea.Cmd) {
	tier := alarm.TierFallback
	if m.sounder != nil {
		tier = m.sounder.PlayFor(ev.Task)
	}
	m.Ringing = RingingState{
		Active: true,
		TaskID: ev.Task.ID,
		Title:  ev.Task.Title,
		At:     ev.At,
		Tier:   tier,
	}
	m.Status = StatusBar{Text: fmt.Sprintf("alarm: %s", ev.Task.Title), IsError: false}
	m.notify("Alarm", ev.Task.Title, "info")
	if m.poller != nil {
		return m, waitForAlarmCmd(m.poller.C())
	}
	return m, nil
}

func (m Model) View() string {
	m.syncBubbleData()

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewTasks:
		leftPane = m.renderTasksView()
		rightPane = m.renderTaskDetailPane() + m.renderHelpIfVisible()
	case ViewUpcoming:
		leftPane = m.renderUpcomingView()
		rightPane = m.renderHelpIfVisible()
	case ViewCalendar:
		leftPane = m.renderCalendarView()
		rightPane = m.renderHelpIfVisible()
	case ViewSettings:
		leftPane = m.renderSettingsView()
		rightPane = m.renderHelpIfVisible()
	case ViewGuide:
		leftPane = m.guideViewport.View()
		rightPane = m.renderHelpIfVisible()
	}

	notificationView := m.renderCommandPalette()
	if m.Ringing.Active {
		banner := views.RenderAlarmBanner(m.Ringing.Title, m.Ringing.At.Format("15:04"))
		notificationView = joinNonEmpty(notificationView, banner)
	}
	notificationView = joinNonEmpty(notificationView, m.renderNotificationsView())

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("taskmatrix | view: %s | selected: %s", m.CurrentView, m.SelectedTaskID),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: notificationView,
		Footer: fmt.Sprintf("keys: %s tasks | %s upcoming | %s cal | %s settings | %s guide | / cmd | %s help | %s quit",
			m.Keys.Tasks, m.Keys.Upcoming, m.Keys.Calendar, m.Keys.Settings, m.Keys.Guide, m.Keys.Help, m.Keys.Quit),
	})
}

func waitForAlarmCmd(ch <-chan alarm.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return AlarmDueMsg{Event: ev}
	}
}

func isKnownView(v View) bool {
	switch v {
	case ViewTasks, ViewUpcoming, ViewCalendar, ViewSettings, ViewGuide:
		return true
	default:
		return false
	}
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if out == "" {
			out = part
		} else {
			out += "\n" + part
		}
	}
	return out
}

package update

import (
	"time"

	"github.com/sandeepkv93/taskmatrix/internal/model"
	"github.com/sandeepkv93/taskmatrix/internal/views"
)

func (m Model) renderTasksView() string {
	items := make([]views.TaskItemData, 0, len(m.visibleTasks()))
	for _, task := range m.visibleTasks() {
		item := views.TaskItemData{
			ID:         task.ID,
			Title:      task.Title,
			Priority:   string(task.Priority),
			Tags:       task.Tags,
			Recurrence: string(task.Recurrence),
			Completed:  task.Completed,
			Pinned:     task.Pinned,
		}
		if task.AlarmTime != nil {
			item.AlarmAt = task.AlarmTime.Format("01-02 15:04")
		}
		items = append(items, item)
	}
	quickAdd := ""
	if m.Tasks.CaptureMode {
		quickAdd = m.quickAddInput.View()
	}
	return views.RenderTasksPanel(views.TasksPanelData{
		QuickAddView: quickAdd,
		ListView:     m.taskList.View(),
		Items:        items,
		SelectedID:   m.SelectedTaskID,
		Filter:       m.Filter.Tag,
	})
}

func (m Model) renderTaskDetailPane() string {
	task, ok := m.currentTask()
	if !ok {
		return "detail:\n(no selection)"
	}
	done := 0
	for _, st := range task.Subtasks {
		if st.Completed {
			done++
		}
	}
	data := views.TaskDetailData{
		SelectedID:      task.ID,
		Priority:        string(task.Priority),
		Tags:            task.Tags,
		Recurrence:      string(task.Recurrence),
		NotesView:       m.notesArea.View(),
		SubtasksDone:    done,
		SubtasksTotal:   len(task.Subtasks),
		AttachmentCount: len(task.Attachments),
	}
	if task.AlarmTime != nil {
		data.AlarmAt = task.AlarmTime.Format("2006-01-02 15:04")
	}
	return views.RenderTaskDetailPane(data)
}

func (m Model) renderUpcomingView() string {
	return views.RenderUpcomingPanel(views.UpcomingPanelData{
		HorizonDays: m.Upcoming.HorizonDays,
		Items:       m.upcomingItems(),
		SelectedID:  m.selectedUpcomingID(),
	})
}

func (m Model) renderCalendarView() string {
	return views.RenderCalendarPanel(views.CalendarPanelData{
		Month:     m.Calendar.FocusDate.Format("January 2006"),
		GridView:  m.calendarTable.View(),
		Items:     m.upcomingItems(),
		FocusDate: m.Calendar.FocusDate.Format("2006-01-02"),
	})
}

func (m Model) renderSettingsView() string {
	settings := model.DefaultSettings()
	ringtone := ""
	if m.store != nil {
		settings = m.store.Settings()
	}
	return views.RenderSettingsPanel(views.SettingsPanelData{
		AlarmVolume:   settings.Volume(),
		TimeFormat:    settings.TimeFormat,
		RingtoneName:  ringtone,
		Notifications: m.DesktopEnabled,
	})
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	if time.Since(n.At) > 30*time.Second {
		return ""
	}
	return views.RenderNotification(n.Level, n.Body)
}

func (m Model) upcomingItems() []views.UpcomingItemData {
	items := make([]views.UpcomingItemData, 0, len(m.Upcoming.Items))
	for _, occ := range m.Upcoming.Items {
		items = append(items, views.UpcomingItemData{
			TaskID: occ.Task.ID,
			Title:  occ.Task.Title,
			Date:   occ.At.Format("2006-01-02"),
			Time:   occ.At.Format("15:04"),
			Rule:   string(occ.Task.Recurrence),
		})
	}
	return items
}

func (m Model) selectedUpcomingID() string {
	if m.Upcoming.Cursor < 0 || m.Upcoming.Cursor >= len(m.Upcoming.Items) {
		return ""
	}
	return m.Upcoming.Items[m.Upcoming.Cursor].Task.ID
}

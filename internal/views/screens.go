package views

import (
	"fmt"
	"sort"
	"strings"
)

type TaskItemData struct {
	ID         string
	Title      string
	Priority   string
	Tags       []string
	AlarmAt    string
	Recurrence string
	Completed  bool
	Pinned     bool
}

type TasksPanelData struct {
	QuickAddView string
	ListView     string
	Items        []TaskItemData
	SelectedID   string
	Filter       string
}

type UpcomingItemData struct {
	TaskID string
	Title  string
	Date   string
	Time   string
	Rule   string
}

type UpcomingPanelData struct {
	HorizonDays int
	Items       []UpcomingItemData
	SelectedID  string
}

type CalendarPanelData struct {
	Month     string
	GridView  string
	Items     []UpcomingItemData
	FocusDate string
}

type SettingsPanelData struct {
	AlarmVolume   float64
	TimeFormat    string
	RingtoneName  string
	Notifications bool
}

type TaskDetailData struct {
	SelectedID      string
	Priority        string
	Tags            []string
	AlarmAt         string
	Recurrence      string
	NotesView       string
	SubtasksDone    int
	SubtasksTotal   int
	AttachmentCount int
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	b.WriteString(data.QuickAddView + "\n")
	if data.Filter != "" {
		b.WriteString(fmt.Sprintf("filter: %s\n", data.Filter))
	}
	b.WriteString("actions: [enter]add [space]done [a]alarm [r]recur [p]pin\n")
	if data.ListView != "" {
		b.WriteString(data.ListView + "\n")
	}

	pinned := make([]TaskItemData, 0)
	open := make([]TaskItemData, 0)
	done := make([]TaskItemData, 0)
	for _, item := range data.Items {
		switch {
		case item.Completed:
			done = append(done, item)
		case item.Pinned:
			pinned = append(pinned, item)
		default:
			open = append(open, item)
		}
	}
	renderTaskSection(&b, "Pinned", pinned, data.SelectedID)
	renderTaskSection(&b, "Open", open, data.SelectedID)
	renderTaskSection(&b, "Completed", done, data.SelectedID)
	return strings.TrimSpace(b.String())
}

func RenderUpcomingPanel(data UpcomingPanelData) string {
	var b strings.Builder
	b.WriteString("upcoming:\n")
	b.WriteString(fmt.Sprintf("horizon: next %d days\n", data.HorizonDays))
	b.WriteString("actions: [j/k]move [1]tasks [2]upcoming [3]calendar [4]settings\n")

	grouped := make(map[string][]UpcomingItemData)
	keys := make([]string, 0)
	for _, item := range data.Items {
		if _, ok := grouped[item.Date]; !ok {
			keys = append(keys, item.Date)
		}
		grouped[item.Date] = append(grouped[item.Date], item)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		b.WriteString("(no recurring tasks due)")
		return b.String()
	}

	for _, day := range keys {
		b.WriteString(fmt.Sprintf("\n%s:\n", day))
		items := grouped[day]
		sort.SliceStable(items, func(i, j int) bool { return items[i].Time < items[j].Time })
		for _, item := range items {
			cursor := " "
			if data.SelectedID == item.TaskID {
				cursor = ">"
			}
			b.WriteString(fmt.Sprintf("%s [%s] %s %s\n", cursor, strings.ToUpper(item.Rule), item.Time, item.Title))
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString("calendar:\n")
	b.WriteString(fmt.Sprintf("month: %s | focus: %s\n", data.Month, data.FocusDate))
	b.WriteString("actions: [h/l]month [j/k]day [enter]open\n")
	b.WriteString(data.GridView + "\n")

	dayItems := make([]UpcomingItemData, 0)
	for _, item := range data.Items {
		if item.Date == data.FocusDate {
			dayItems = append(dayItems, item)
		}
	}
	if len(dayItems) == 0 {
		b.WriteString("(nothing scheduled)")
		return strings.TrimSpace(b.String())
	}
	for _, item := range dayItems {
		b.WriteString(fmt.Sprintf("- %s %s\n", item.Time, item.Title))
	}
	return strings.TrimSpace(b.String())
}

func RenderSettingsPanel(data SettingsPanelData) string {
	notifications := "off"
	if data.Notifications {
		notifications = "on"
	}
	ringtone := data.RingtoneName
	if ringtone == "" {
		ringtone = "(default tone)"
	}
	var b strings.Builder
	b.WriteString("settings:\n")
	b.WriteString("actions: [+/-]volume [t]time-format [n]notifications [enter]ringtone\n")
	b.WriteString(fmt.Sprintf("alarm volume: %d%%\n", int(data.AlarmVolume*100)))
	b.WriteString(fmt.Sprintf("time format: %sh\n", data.TimeFormat))
	b.WriteString(fmt.Sprintf("ringtone: %s\n", ringtone))
	b.WriteString(fmt.Sprintf("desktop notifications: %s", notifications))
	return b.String()
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("\nnotification: [%s] %s", strings.ToUpper(level), body)
}

func RenderTaskDetailPane(data TaskDetailData) string {
	if strings.TrimSpace(data.SelectedID) == "" {
		return "detail:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("detail:\n")
	b.WriteString(fmt.Sprintf("id: %s\n", data.SelectedID))
	b.WriteString(fmt.Sprintf("priority: %s\n", data.Priority))
	b.WriteString(fmt.Sprintf("tags: %s\n", strings.Join(data.Tags, ",")))
	if data.AlarmAt != "" {
		b.WriteString(fmt.Sprintf("alarm: %s\n", data.AlarmAt))
	}
	if data.Recurrence != "" {
		b.WriteString(fmt.Sprintf("repeats: %s\n", data.Recurrence))
	}
	if data.SubtasksTotal > 0 {
		b.WriteString(fmt.Sprintf("subtasks: %d/%d\n", data.SubtasksDone, data.SubtasksTotal))
	}
	if data.AttachmentCount > 0 {
		b.WriteString(fmt.Sprintf("attachments: %d\n", data.AttachmentCount))
	}
	b.WriteString("\nnotes:\n" + data.NotesView)
	return strings.TrimSpace(b.String())
}

func renderTaskSection(b *strings.Builder, title string, items []TaskItemData, selectedID string) {
	b.WriteString(fmt.Sprintf("\n%s:\n", title))
	if len(items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, item := range items {
		cursor := " "
		if selectedID == item.ID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s", cursor, priorityBadge(item), item.Title))
		if item.AlarmAt != "" {
			b.WriteString(fmt.Sprintf(" @%s", item.AlarmAt))
		}
		if item.Recurrence != "" {
			b.WriteString(fmt.Sprintf(" repeats:%s", item.Recurrence))
		}
		if len(item.Tags) > 0 {
			b.WriteString(" #" + strings.Join(item.Tags, " #"))
		}
		b.WriteString("\n")
	}
}

func priorityBadge(item TaskItemData) string {
	switch item.Priority {
	case "High":
		return "[RED]"
	case "Medium":
		return "[YELLOW]"
	default:
		return "[GREEN]"
	}
}

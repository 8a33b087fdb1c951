package update

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskmatrix/internal/commands"
	"github.com/sandeepkv93/taskmatrix/internal/export"
	"github.com/sandeepkv93/taskmatrix/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var followup tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			m.CurrentView = ViewTasks
			followup = m.addTaskCmd(a.Title)
			return commands.Result{Message: fmt.Sprintf("adding task: %s", a.Title)}, nil
		},
		Done: func(d commands.DoneArgs) (commands.Result, error) {
			task, ok := m.findTask(d.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task matches " + d.Target}
			}
			followup = m.completeTaskCmd(task.ID)
			return commands.Result{Message: fmt.Sprintf("completing: %s", task.Title)}, nil
		},
		Alarm: func(a commands.AlarmArgs) (commands.Result, error) {
			task, ok := m.findTask(a.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task matches " + a.Target}
			}
			if a.Clear {
				followup = m.setAlarmCmd(task.ID, nil)
				return commands.Result{Message: fmt.Sprintf("clearing alarm: %s", task.Title)}, nil
			}
			when, err := parseAlarmTime(a.When, m.clock())
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			followup = m.setAlarmCmd(task.ID, &when)
			return commands.Result{Message: fmt.Sprintf("setting alarm: %s", task.Title)}, nil
		},
		Recur: func(r commands.RecurArgs) (commands.Result, error) {
			task, ok := m.findTask(r.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task matches " + r.Target}
			}
			rule := model.Recurrence(r.Rule)
			if r.Rule == "none" {
				rule = model.RecurrenceNone
			}
			if !rule.IsValid() {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "unknown recurrence rule: " + r.Rule}
			}
			followup = m.setRecurrenceCmd(task.ID, rule)
			return commands.Result{Message: fmt.Sprintf("updating recurrence: %s", task.Title)}, nil
		},
		Upcoming: func(u commands.UpcomingArgs) (commands.Result, error) {
			if u.Days > 0 {
				m.Upcoming.HorizonDays = u.Days
			}
			m.Upcoming.Items = model.UpcomingOccurrences(m.Tasks.Items, m.clock(), m.Upcoming.HorizonDays)
			m.CurrentView = ViewUpcoming
			return commands.Result{Message: fmt.Sprintf("upcoming: next %d days", m.Upcoming.HorizonDays)}, nil
		},
		Export: func(e commands.ExportArgs) (commands.Result, error) {
			var payload []byte
			var err error
			switch e.Format {
			case "json":
				payload, err = export.JSON(m.Tasks.Items, m.clock())
			case "csv":
				payload, err = export.CSV(m.Tasks.Items)
			}
			if err != nil {
				return commands.Result{}, err
			}
			if err := os.WriteFile(e.Path, payload, 0o644); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("exported %d task(s) to %s", len(m.Tasks.Items), e.Path)}, nil
		},
		Import: func(i commands.ImportArgs) (commands.Result, error) {
			raw, err := os.ReadFile(i.Path)
			if err != nil {
				return commands.Result{}, err
			}
			tasks, err := export.Import(raw, m.clock())
			if err != nil {
				return commands.Result{}, err
			}
			if m.store != nil {
				ctx := context.Background()
				for _, task := range tasks {
					if err := m.store.CreateTask(ctx, task); err != nil {
						return commands.Result{}, err
					}
				}
				followup = m.refreshTasksCmd()
			}
			return commands.Result{Message: fmt.Sprintf("imported %d task(s) from %s", len(tasks), i.Path)}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			if s.Tag != "" {
				m.Filter.Tag = s.Tag
				m.Tasks.Cursor = 0
			}
			switch s.Subject {
			case "templates":
				if m.store == nil {
					return commands.Result{Message: "no templates"}, nil
				}
				templates, err := m.store.Templates(context.Background())
				if err != nil {
					return commands.Result{}, err
				}
				names := make([]string, 0, len(templates))
				for _, tpl := range templates {
					names = append(names, tpl.Name)
				}
				if len(names) == 0 {
					return commands.Result{Message: "no templates"}, nil
				}
				return commands.Result{Message: "templates: " + strings.Join(names, ", ")}, nil
			case "tasks":
				m.CurrentView = ViewTasks
			case "upcoming":
				m.CurrentView = ViewUpcoming
			case "calendar":
				m.CurrentView = ViewCalendar
			case "settings":
				m.CurrentView = ViewSettings
			case "guide":
				m.CurrentView = ViewGuide
			default:
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "unknown subject: " + s.Subject}
			}
			if s.Tag != "" {
				return commands.Result{Message: fmt.Sprintf("show %s tag=%s", s.Subject, s.Tag)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("show %s", s.Subject)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message, IsError: false}
	m.notify("Command", res.Message, "info")
	return m, followup
}

// parseAlarmTime accepts RFC3339 or a local "2006-01-02 15:04" stamp.
func parseAlarmTime(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("15:04", raw, now.Location()); err == nil {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if candidate.Before(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse alarm time %q (want RFC3339, \"2006-01-02 15:04\", or \"15:04\")", raw)
}

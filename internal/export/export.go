// Package export reads and writes the TaskMatrix interchange formats:
// a versioned JSON payload and a flat CSV listing. Trashed tasks are
// excluded from both.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sandeepkv93/taskmatrix/internal/model"
)

const PayloadVersion = "1.0"

type TaskRecord struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Notes      string   `json:"notes,omitempty"`
	Completed  bool     `json:"completed"`
	Pinned     bool     `json:"pinned,omitempty"`
	Priority   string   `json:"priority,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	AlarmTime  string   `json:"alarm_time,omitempty"`
	Recurrence string   `json:"recurrence,omitempty"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

type Payload struct {
	Version    string       `json:"version"`
	ExportedAt string       `json:"exported_at"`
	Tasks      []TaskRecord `json:"tasks"`
}

func toRecord(task model.Task) TaskRecord {
	rec := TaskRecord{
		ID:         task.ID,
		Title:      task.Title,
		Notes:      task.Notes,
		Completed:  task.Completed,
		Pinned:     task.Pinned,
		Priority:   string(task.Priority),
		Tags:       task.Tags,
		Recurrence: string(task.Recurrence),
	}
	if task.HasAlarm() {
		rec.AlarmTime = task.AlarmTime.UTC().Format(time.RFC3339)
	}
	if !task.CreatedAt.IsZero() {
		rec.CreatedAt = task.CreatedAt.UTC().Format(time.RFC3339)
	}
	return rec
}

// JSON renders the versioned interchange payload.
func JSON(tasks []model.Task, now time.Time) ([]byte, error) {
	payload := Payload{
		Version:    PayloadVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Tasks:      make([]TaskRecord, 0, len(tasks)),
	}
	for _, task := range tasks {
		if task.Trashed {
			continue
		}
		payload.Tasks = append(payload.Tasks, toRecord(task))
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: marshal payload: %w", err)
	}
	return append(data, '\n'), nil
}

var csvHeader = []string{"ID", "Task", "Status", "Priority", "Tags", "Due Date", "Notes", "Pinned", "Recurring"}

// CSV renders a spreadsheet-friendly listing, one row per task.
func CSV(tasks []model.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("export: write csv header: %w", err)
	}
	for _, task := range tasks {
		if task.Trashed {
			continue
		}
		status := "Active"
		if task.Completed {
			status = "Completed"
		}
		pinned := "No"
		if task.Pinned {
			pinned = "Yes"
		}
		due := ""
		if task.HasAlarm() {
			due = task.AlarmTime.UTC().Format("2006-01-02")
		}
		priority := string(task.Priority)
		if priority == "" {
			priority = "None"
		}
		rule := string(task.Recurrence)
		if rule == "" {
			rule = "None"
		}
		row := []string{
			task.ID,
			task.Title,
			status,
			priority,
			joinTags(task.Tags),
			due,
			task.Notes,
			pinned,
			rule,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("export: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func joinTags(tags []string) string {
	out := ""
	for i, tag := range tags {
		if i > 0 {
			out += "; "
		}
		out += tag
	}
	return out
}

package storage

import "time"

type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Data []byte `json:"data"`
}

type RingtoneClip struct {
	Data      []byte  `json:"data"`
	Type      string  `json:"type"`
	TrimStart float64 `json:"trim_start"`
	TrimEnd   float64 `json:"trim_end"`
}

type Task struct {
	ID                string
	Title             string
	Notes             string
	Completed         bool
	Pinned            bool
	Archived          bool
	Trashed           bool
	Priority          string
	Tags              []string
	AlarmTime         *time.Time
	Recurrence        string
	RingtoneLibraryID string
	CustomRingtone    *RingtoneClip
	Subtasks          []Subtask
	Attachments       []Attachment
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

type Ringtone struct {
	ID        string
	Name      string
	Data      []byte
	Type      string
	TrimStart float64
	TrimEnd   float64
	CreatedAt time.Time
}

type Template struct {
	ID         string
	Name       string
	Title      string
	Notes      string
	Priority   string
	Tags       []string
	Recurrence string
	CreatedAt  time.Time
}

type Settings struct {
	AlarmVolume float64
	TimeFormat  string
}

type TaskListFilter struct {
	Completed *bool
	Archived  *bool
	Trashed   *bool
	Recurring bool
	Limit     int
	Offset    int
}

type RingtoneListFilter struct {
	Limit  int
	Offset int
}

type TemplateListFilter struct {
	Limit  int
	Offset int
}

package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Template is a reusable task blueprint.
type Template struct {
	ID         string
	Name       string
	Title      string
	Notes      string
	Priority   Priority
	Tags       []string
	Recurrence Recurrence
	CreatedAt  time.Time
}

func (t Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: template id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("model: template name is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: template title is required")
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Recurrence.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, t.Recurrence)
	}
	return nil
}

// Instantiate produces a new task from the template.
func (t Template) Instantiate(now time.Time) Task {
	return Task{
		ID:         uuid.NewString(),
		Title:      t.Title,
		Notes:      t.Notes,
		Priority:   t.Priority,
		Tags:       append([]string(nil), t.Tags...),
		Recurrence: t.Recurrence,
		CreatedAt:  now,
	}
}

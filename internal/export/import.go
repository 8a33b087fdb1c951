package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sandeepkv93/taskmatrix/internal/model"
)

//go:embed schema/tasks.schema.json
var taskSchemaText string

var (
	ErrInvalidPayload = errors.New("export: invalid import payload")

	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func payloadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("tasks.schema.json", strings.NewReader(taskSchemaText)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("tasks.schema.json")
	})
	return compiledSchema, schemaErr
}

// Import parses and validates an interchange payload. Validation goes
// through the embedded JSON Schema when it compiles, with minimal
// structural checks as the fallback.
func Import(data []byte, now time.Time) ([]model.Task, error) {
	var raw any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if schema, err := payloadSchema(); err == nil {
		if err := schema.Validate(raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload.Version == "" || payload.Tasks == nil {
		return nil, fmt.Errorf("%w: missing version or tasks", ErrInvalidPayload)
	}

	out := make([]model.Task, 0, len(payload.Tasks))
	for i, rec := range payload.Tasks {
		task, err := fromRecord(rec, now)
		if err != nil {
			return nil, fmt.Errorf("%w: task %d: %v", ErrInvalidPayload, i, err)
		}
		out = append(out, task)
	}
	return out, nil
}

func fromRecord(rec TaskRecord, now time.Time) (model.Task, error) {
	task := model.Task{
		ID:         strings.TrimSpace(rec.ID),
		Title:      strings.TrimSpace(rec.Title),
		Notes:      rec.Notes,
		Completed:  rec.Completed,
		Pinned:     rec.Pinned,
		Priority:   model.Priority(rec.Priority),
		Tags:       rec.Tags,
		Recurrence: model.Recurrence(rec.Recurrence),
		CreatedAt:  now,
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if rec.CreatedAt != "" {
		created, err := time.Parse(time.RFC3339, rec.CreatedAt)
		if err != nil {
			return model.Task{}, fmt.Errorf("parse created_at: %v", err)
		}
		task.CreatedAt = created
	}
	if rec.AlarmTime != "" {
		alarm, err := time.Parse(time.RFC3339, rec.AlarmTime)
		if err != nil {
			return model.Task{}, fmt.Errorf("parse alarm_time: %v", err)
		}
		task.AlarmTime = &alarm
	}
	if task.Completed {
		done := task.CreatedAt
		task.CompletedAt = &done
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

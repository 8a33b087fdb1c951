package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateTask(ctx context.Context, in Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	UpdateTask(ctx context.Context, in Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)

	CreateRingtone(ctx context.Context, in Ringtone) error
	GetRingtone(ctx context.Context, id string) (Ringtone, error)
	DeleteRingtone(ctx context.Context, id string) error
	ListRingtones(ctx context.Context, filter RingtoneListFilter) ([]Ringtone, error)

	CreateTemplate(ctx context.Context, in Template) error
	GetTemplate(ctx context.Context, id string) (Template, error)
	DeleteTemplate(ctx context.Context, id string) error
	ListTemplates(ctx context.Context, filter TemplateListFilter) ([]Template, error)

	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, in Settings) error
}

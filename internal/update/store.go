package update

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/taskmatrix/internal/alarm"
	"github.com/sandeepkv93/taskmatrix/internal/model"
	"github.com/sandeepkv93/taskmatrix/internal/storage"
)

// Store exposes the persisted task matrix to the TUI and to the alarm
// machinery. It adapts the repository's flat records to domain types and
// satisfies alarm.TaskSource, alarm.Library, and alarm.SettingsSource.
type Store struct {
	repo   storage.Repository
	logger *log.Logger
}

func NewStore(repo storage.Repository, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{repo: repo, logger: logger}
}

// Snapshot returns every live task. Poll failures surface as an empty
// snapshot so a transient database error never crashes the alarm loop.
func (s *Store) Snapshot() []model.Task {
	tasks, err := s.Tasks(context.Background())
	if err != nil {
		s.logger.Error("task snapshot failed", "err", err)
		return nil
	}
	return tasks
}

// Ringtone resolves a library entry for alarm playback.
func (s *Store) Ringtone(id string) (model.Ringtone, bool) {
	rec, err := s.repo.GetRingtone(context.Background(), id)
	if err != nil {
		return model.Ringtone{}, false
	}
	return fromStorageRingtone(rec), true
}

// Settings reads the persisted settings, falling back to defaults when the
// row is unreadable.
func (s *Store) Settings() model.Settings {
	rec, err := s.repo.GetSettings(context.Background())
	if err != nil {
		s.logger.Warn("settings read failed, using defaults", "err", err)
		return model.DefaultSettings()
	}
	return model.Settings{AlarmVolume: rec.AlarmVolume, TimeFormat: rec.TimeFormat}
}

func (s *Store) SaveSettings(ctx context.Context, in model.Settings) error {
	return s.repo.SaveSettings(ctx, storage.Settings{AlarmVolume: in.AlarmVolume, TimeFormat: in.TimeFormat})
}

func (s *Store) Tasks(ctx context.Context) ([]model.Task, error) {
	trashed := false
	recs, err := s.repo.ListTasks(ctx, storage.TaskListFilter{Trashed: &trashed})
	if err != nil {
		return nil, err
	}
	tasks := make([]model.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, fromStorageTask(rec))
	}
	return tasks, nil
}

func (s *Store) Task(ctx context.Context, id string) (model.Task, error) {
	rec, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	return fromStorageTask(rec), nil
}

func (s *Store) CreateTask(ctx context.Context, task model.Task) error {
	return s.repo.CreateTask(ctx, toStorageTask(task))
}

func (s *Store) UpdateTask(ctx context.Context, task model.Task) error {
	return s.repo.UpdateTask(ctx, toStorageTask(task))
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.repo.DeleteTask(ctx, id)
}

// LastCompletionOf finds the most recent completion time among completed
// copies of the given title, used to decide whether a recurring task is due
// for a fresh copy.
func (s *Store) LastCompletionOf(ctx context.Context, title string) (*time.Time, error) {
	completed := true
	recs, err := s.repo.ListTasks(ctx, storage.TaskListFilter{Completed: &completed})
	if err != nil {
		return nil, err
	}
	var latest *time.Time
	for _, rec := range recs {
		if rec.Title != title || rec.CompletedAt == nil {
			continue
		}
		if latest == nil || rec.CompletedAt.After(*latest) {
			t := *rec.CompletedAt
			latest = &t
		}
	}
	return latest, nil
}

func (s *Store) Templates(ctx context.Context) ([]model.Template, error) {
	recs, err := s.repo.ListTemplates(ctx, storage.TemplateListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]model.Template, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromStorageTemplate(rec))
	}
	return out, nil
}

// TemplateByName looks a template up case-insensitively.
func (s *Store) TemplateByName(ctx context.Context, name string) (model.Template, bool, error) {
	templates, err := s.Templates(ctx)
	if err != nil {
		return model.Template{}, false, err
	}
	for _, tpl := range templates {
		if strings.EqualFold(tpl.Name, name) {
			return tpl, true, nil
		}
	}
	return model.Template{}, false, nil
}

func (s *Store) CreateTemplate(ctx context.Context, tpl model.Template) error {
	return s.repo.CreateTemplate(ctx, storage.Template{
		ID:         tpl.ID,
		Name:       tpl.Name,
		Title:      tpl.Title,
		Notes:      tpl.Notes,
		Priority:   string(tpl.Priority),
		Tags:       tpl.Tags,
		Recurrence: string(tpl.Recurrence),
		CreatedAt:  tpl.CreatedAt,
	})
}

func toStorageTask(in model.Task) storage.Task {
	out := storage.Task{
		ID:                in.ID,
		Title:             in.Title,
		Notes:             in.Notes,
		Completed:         in.Completed,
		Pinned:            in.Pinned,
		Archived:          in.Archived,
		Trashed:           in.Trashed,
		Priority:          string(in.Priority),
		Tags:              in.Tags,
		AlarmTime:         in.AlarmTime,
		Recurrence:        string(in.Recurrence),
		RingtoneLibraryID: in.RingtoneLibraryID,
		CreatedAt:         in.CreatedAt,
		CompletedAt:       in.CompletedAt,
	}
	if in.CustomRingtone != nil {
		out.CustomRingtone = &storage.RingtoneClip{
			Data:      in.CustomRingtone.Data,
			Type:      in.CustomRingtone.Type,
			TrimStart: in.CustomRingtone.Trim.Start,
			TrimEnd:   in.CustomRingtone.Trim.End,
		}
	}
	for _, st := range in.Subtasks {
		out.Subtasks = append(out.Subtasks, storage.Subtask{ID: st.ID, Title: st.Title, Completed: st.Completed})
	}
	for _, at := range in.Attachments {
		out.Attachments = append(out.Attachments, storage.Attachment{ID: at.ID, Name: at.Name, Type: at.Type, Data: at.Data})
	}
	return out
}

func fromStorageTask(in storage.Task) model.Task {
	out := model.Task{
		ID:                in.ID,
		Title:             in.Title,
		Notes:             in.Notes,
		Completed:         in.Completed,
		Pinned:            in.Pinned,
		Archived:          in.Archived,
		Trashed:           in.Trashed,
		Priority:          model.Priority(in.Priority),
		Tags:              in.Tags,
		AlarmTime:         in.AlarmTime,
		Recurrence:        model.Recurrence(in.Recurrence),
		RingtoneLibraryID: in.RingtoneLibraryID,
		CreatedAt:         in.CreatedAt,
		CompletedAt:       in.CompletedAt,
	}
	if in.CustomRingtone != nil {
		out.CustomRingtone = &model.RingtoneClip{
			Data: in.CustomRingtone.Data,
			Type: in.CustomRingtone.Type,
			Trim: model.TrimWindow{Start: in.CustomRingtone.TrimStart, End: in.CustomRingtone.TrimEnd},
		}
	}
	for _, st := range in.Subtasks {
		out.Subtasks = append(out.Subtasks, model.Subtask{ID: st.ID, Title: st.Title, Completed: st.Completed})
	}
	for _, at := range in.Attachments {
		out.Attachments = append(out.Attachments, model.Attachment{ID: at.ID, Name: at.Name, Type: at.Type, Data: at.Data})
	}
	return out
}

func fromStorageTemplate(in storage.Template) model.Template {
	return model.Template{
		ID:         in.ID,
		Name:       in.Name,
		Title:      in.Title,
		Notes:      in.Notes,
		Priority:   model.Priority(in.Priority),
		Tags:       in.Tags,
		Recurrence: model.Recurrence(in.Recurrence),
		CreatedAt:  in.CreatedAt,
	}
}

func fromStorageRingtone(in storage.Ringtone) model.Ringtone {
	return model.Ringtone{
		ID:   in.ID,
		Name: in.Name,
		Data: in.Data,
		Type: in.Type,
		Trim: model.TrimWindow{Start: in.TrimStart, End: in.TrimEnd},
	}
}

// interface conformance
var (
	_ alarm.TaskSource     = (*Store)(nil)
	_ alarm.Library        = (*Store)(nil)
	_ alarm.SettingsSource = (*Store)(nil)
)

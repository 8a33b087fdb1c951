package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const taskColumns = `id, title, notes, completed, pinned, archived, trashed, priority, tags,
	alarm_time, recurrence, ringtone_library_id, custom_ringtone, subtasks, attachments,
	created_at, completed_at`

func (r *SQLiteRepository) CreateTask(ctx context.Context, in Task) error {
	tags, subtasks, attachments, clip, err := encodeTaskBlobs(in)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Notes, boolInt(in.Completed), boolInt(in.Pinned), boolInt(in.Archived), boolInt(in.Trashed),
		in.Priority, tags, nullTime(in.AlarmTime), in.Recurrence, in.RingtoneLibraryID, clip, subtasks, attachments,
		mustTime(in.CreatedAt), nullTime(in.CompletedAt),
	)
	return err
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in Task) error {
	tags, subtasks, attachments, clip, err := encodeTaskBlobs(in)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, notes = ?, completed = ?, pinned = ?, archived = ?, trashed = ?, priority = ?, tags = ?,
			alarm_time = ?, recurrence = ?, ringtone_library_id = ?, custom_ringtone = ?, subtasks = ?, attachments = ?,
			completed_at = ?
		WHERE id = ?`,
		in.Title, in.Notes, boolInt(in.Completed), boolInt(in.Pinned), boolInt(in.Archived), boolInt(in.Trashed),
		in.Priority, tags, nullTime(in.AlarmTime), in.Recurrence, in.RingtoneLibraryID, clip, subtasks, attachments,
		nullTime(in.CompletedAt), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	clauses := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if filter.Completed != nil {
		clauses = append(clauses, "completed = ?")
		args = append(args, boolInt(*filter.Completed))
	}
	if filter.Archived != nil {
		clauses = append(clauses, "archived = ?")
		args = append(args, boolInt(*filter.Archived))
	}
	if filter.Trashed != nil {
		clauses = append(clauses, "trashed = ?")
		args = append(args, boolInt(*filter.Trashed))
	}
	if filter.Recurring {
		clauses = append(clauses, "recurrence != ''")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY pinned DESC, created_at DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateRingtone(ctx context.Context, in Ringtone) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ringtones (id, name, data, type, trim_start, trim_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Name, in.Data, in.Type, in.TrimStart, in.TrimEnd, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetRingtone(ctx context.Context, id string) (Ringtone, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, data, type, trim_start, trim_end, created_at
		FROM ringtones WHERE id = ?`, id)
	item, err := scanRingtone(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ringtone{}, ErrNotFound
		}
		return Ringtone{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) DeleteRingtone(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ringtones WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListRingtones(ctx context.Context, filter RingtoneListFilter) ([]Ringtone, error) {
	args := make([]any, 0, 2)
	query := `SELECT id, name, data, type, trim_start, trim_end, created_at FROM ringtones ORDER BY name ASC` +
		applyPagination(&args, filter.Limit, filter.Offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Ringtone, 0)
	for rows.Next() {
		item, scanErr := scanRingtone(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateTemplate(ctx context.Context, in Template) error {
	tags, err := json.Marshal(in.Tags)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, title, notes, priority, tags, recurrence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Name, in.Title, in.Notes, in.Priority, string(tags), in.Recurrence, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetTemplate(ctx context.Context, id string) (Template, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, title, notes, priority, tags, recurrence, created_at
		FROM templates WHERE id = ?`, id)
	item, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) DeleteTemplate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTemplates(ctx context.Context, filter TemplateListFilter) ([]Template, error) {
	args := make([]any, 0, 2)
	query := `SELECT id, name, title, notes, priority, tags, recurrence, created_at FROM templates ORDER BY name ASC` +
		applyPagination(&args, filter.Limit, filter.Offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Template, 0)
	for rows.Next() {
		item, scanErr := scanTemplate(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetSettings(ctx context.Context) (Settings, error) {
	row := r.db.QueryRowContext(ctx, `SELECT alarm_volume, time_format FROM settings WHERE id = 1`)
	var out Settings
	if err := row.Scan(&out.AlarmVolume, &out.TimeFormat); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, in Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, alarm_volume, time_format) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET alarm_volume = excluded.alarm_volume, time_format = excluded.time_format`,
		in.AlarmVolume, in.TimeFormat,
	)
	return err
}

func encodeTaskBlobs(in Task) (tags, subtasks, attachments string, clip any, err error) {
	tagBytes, err := json.Marshal(emptySlice(in.Tags))
	if err != nil {
		return "", "", "", nil, err
	}
	subBytes, err := json.Marshal(emptySlice(in.Subtasks))
	if err != nil {
		return "", "", "", nil, err
	}
	attBytes, err := json.Marshal(emptySlice(in.Attachments))
	if err != nil {
		return "", "", "", nil, err
	}
	clip = nil
	if in.CustomRingtone != nil {
		clipBytes, cerr := json.Marshal(in.CustomRingtone)
		if cerr != nil {
			return "", "", "", nil, cerr
		}
		clip = string(clipBytes)
	}
	return string(tagBytes), string(subBytes), string(attBytes), clip, nil
}

func emptySlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var completed, pinned, archived, trashed int
	var tags, subtasks, attachments string
	var alarm, completedAt, clip sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.Title, &out.Notes, &completed, &pinned, &archived, &trashed,
		&out.Priority, &tags, &alarm, &out.Recurrence, &out.RingtoneLibraryID, &clip,
		&subtasks, &attachments, &created, &completedAt); err != nil {
		return Task{}, err
	}
	out.Completed = completed == 1
	out.Pinned = pinned == 1
	out.Archived = archived == 1
	out.Trashed = trashed == 1

	if err := json.Unmarshal([]byte(tags), &out.Tags); err != nil {
		return Task{}, fmt.Errorf("decode tags for %s: %w", out.ID, err)
	}
	if err := json.Unmarshal([]byte(subtasks), &out.Subtasks); err != nil {
		return Task{}, fmt.Errorf("decode subtasks for %s: %w", out.ID, err)
	}
	if err := json.Unmarshal([]byte(attachments), &out.Attachments); err != nil {
		return Task{}, fmt.Errorf("decode attachments for %s: %w", out.ID, err)
	}
	if clip.Valid && clip.String != "" {
		var c RingtoneClip
		if err := json.Unmarshal([]byte(clip.String), &c); err != nil {
			return Task{}, fmt.Errorf("decode custom ringtone for %s: %w", out.ID, err)
		}
		out.CustomRingtone = &c
	}

	alarmTime, err := parseNullableTime(alarm)
	if err != nil {
		return Task{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Task{}, err
	}
	doneAt, err := parseNullableTime(completedAt)
	if err != nil {
		return Task{}, err
	}
	out.AlarmTime = alarmTime
	out.CreatedAt = createdAt
	out.CompletedAt = doneAt
	return out, nil
}

func scanRingtone(s scanner) (Ringtone, error) {
	var out Ringtone
	var created string
	if err := s.Scan(&out.ID, &out.Name, &out.Data, &out.Type, &out.TrimStart, &out.TrimEnd, &created); err != nil {
		return Ringtone{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Ringtone{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func scanTemplate(s scanner) (Template, error) {
	var out Template
	var tags string
	var created string
	if err := s.Scan(&out.ID, &out.Name, &out.Title, &out.Notes, &out.Priority, &tags, &out.Recurrence, &created); err != nil {
		return Template{}, err
	}
	if err := json.Unmarshal([]byte(tags), &out.Tags); err != nil {
		return Template{}, fmt.Errorf("decode tags for template %s: %w", out.ID, err)
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Template{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

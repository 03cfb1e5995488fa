package tracker

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
)

// deepWorkRepository stores the tasks, the minute tracking session and the note of each day.
type deepWorkRepository struct {
	baseRepository
}

const selectTask = `SELECT id, date, title, completed, completed_at, position FROM deep_work_tasks`

func scanTask(s scanner) (habits.DeepWorkTask, error) {
	var (
		t           habits.DeepWorkTask
		date        string
		completedAt sql.NullString
	)
	if err := s.Scan(&t.ID, &date, &t.Title, &t.Completed, &completedAt, &t.Position); err != nil {
		return habits.DeepWorkTask{}, err //nolint:wrapcheck // wrapped by callers.
	}
	var err error
	if t.Date, err = parseDate(date); err != nil {
		return habits.DeepWorkTask{}, err
	}
	if t.CompletedAt, err = parseTimestamp(completedAt); err != nil {
		return habits.DeepWorkTask{}, err
	}
	return t, nil
}

// ListTasks returns the tasks of date in their display order.
func (r *deepWorkRepository) ListTasks(ctx context.Context, date time.Time) ([]habits.DeepWorkTask, error) {
	return r.ListTasksRange(ctx, date, date)
}

func (r *deepWorkRepository) ListTasksRange(ctx context.Context, from, to time.Time) ([]habits.DeepWorkTask, error) {
	tasks, err := queryList(ctx, r.db.ReadOnly, selectTask+`
WHERE user_id = ? AND date BETWEEN ? AND ?
ORDER BY date, position`, scanTask, contexthelpers.AuthenticatedUserID(ctx), formatDate(from), formatDate(to))
	if err != nil {
		return nil, errors.Wrap(err, "list deep work tasks")
	}
	return tasks, nil
}

// CreateTask appends a task to the end of the day's list.
func (r *deepWorkRepository) CreateTask(ctx context.Context, date time.Time, title string) (habits.DeepWorkTask, error) {
	row := r.db.ReadWrite.QueryRowContext(ctx, `INSERT INTO deep_work_tasks (user_id, date, title, position)
VALUES (:user_id, :date, :title,
        (SELECT COALESCE(MAX(position), 0) + 1 FROM deep_work_tasks WHERE user_id = :user_id AND date = :date))
RETURNING id, date, title, completed, completed_at, position`,
		sql.Named("user_id", contexthelpers.AuthenticatedUserID(ctx)),
		sql.Named("date", formatDate(date)),
		sql.Named("title", title))
	t, err := scanTask(row)
	if err != nil {
		return habits.DeepWorkTask{}, errors.Wrap(err, "insert deep work task", slog.String("date", formatDate(date)))
	}
	return t, nil
}

// UpdateTask applies updateFn to the task with id and stores the title and completion state.
func (r *deepWorkRepository) UpdateTask(
	ctx context.Context,
	id int,
	updateFn func(t *habits.DeepWorkTask) error,
) (habits.DeepWorkTask, error) {
	var t habits.DeepWorkTask
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if t, err = r.getTask(ctx, tx, id); err != nil {
			return err
		}
		if err = updateFn(&t); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `UPDATE deep_work_tasks
SET title = ?, completed = ?, completed_at = ?
WHERE user_id = ? AND id = ?`,
			t.Title, t.Completed, formatTimestamp(t.CompletedAt), contexthelpers.AuthenticatedUserID(ctx), id); err != nil {
			return errors.Wrap(err, "update deep work task", slog.Int("id", id))
		}
		return nil
	})
	return t, err
}

// MoveTask swaps the task with its neighbour above (up) or below. Moving past either end is a no-op.
func (r *deepWorkRepository) MoveTask(ctx context.Context, id int, up bool) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		t, err := r.getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		neighbour := `SELECT id, position FROM deep_work_tasks
WHERE user_id = ? AND date = ? AND position > ? ORDER BY position LIMIT 1`
		if up {
			neighbour = `SELECT id, position FROM deep_work_tasks
WHERE user_id = ? AND date = ? AND position < ? ORDER BY position DESC LIMIT 1`
		}
		userID := contexthelpers.AuthenticatedUserID(ctx)
		var otherID, otherPosition int
		err = tx.QueryRowContext(ctx, neighbour, userID, formatDate(t.Date), t.Position).Scan(&otherID, &otherPosition)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "query neighbouring task")
		}
		for _, swap := range [][2]int{{id, otherPosition}, {otherID, t.Position}} {
			if _, err = tx.ExecContext(ctx, `UPDATE deep_work_tasks SET position = ? WHERE user_id = ? AND id = ?`,
				swap[1], userID, swap[0]); err != nil {
				return errors.Wrap(err, "update task position", slog.Int("id", swap[0]))
			}
		}
		return nil
	})
}

func (r *deepWorkRepository) DeleteTask(ctx context.Context, id int) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM deep_work_tasks WHERE user_id = ? AND id = ?`,
		contexthelpers.AuthenticatedUserID(ctx), id)
	if err != nil {
		return errors.Wrap(err, "delete deep work task", slog.Int("id", id))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *deepWorkRepository) getTask(ctx context.Context, tx *sql.Tx, id int) (habits.DeepWorkTask, error) {
	t, err := scanTask(tx.QueryRowContext(ctx, selectTask+` WHERE user_id = ? AND id = ?`,
		contexthelpers.AuthenticatedUserID(ctx), id))
	if errors.Is(err, sql.ErrNoRows) {
		return habits.DeepWorkTask{}, ErrNotFound
	}
	if err != nil {
		return habits.DeepWorkTask{}, errors.Wrap(err, "get deep work task", slog.Int("id", id))
	}
	return t, nil
}

// GetSession returns the minute tracking of date. A day without a row has no target and no minutes.
func (r *deepWorkRepository) GetSession(ctx context.Context, date time.Time) (habits.DeepWorkSession, error) {
	s := habits.DeepWorkSession{Date: habits.Day(date), Target: 0, LoggedMinutes: 0}
	err := r.db.ReadOnly.QueryRowContext(ctx, `SELECT target_minutes, logged_minutes
FROM deep_work_sessions
WHERE user_id = ? AND date = ?`, contexthelpers.AuthenticatedUserID(ctx), formatDate(date)).
		Scan(&s.Target, &s.LoggedMinutes)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return habits.DeepWorkSession{}, errors.Wrap(err, "get deep work session", slog.String("date", formatDate(date)))
	}
	return s, nil
}

// UpdateSession applies updateFn to the session of date and stores it.
func (r *deepWorkRepository) UpdateSession(
	ctx context.Context,
	date time.Time,
	updateFn func(s *habits.DeepWorkSession),
) (habits.DeepWorkSession, error) {
	var s habits.DeepWorkSession
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		s = habits.DeepWorkSession{Date: habits.Day(date), Target: 0, LoggedMinutes: 0}
		userID := contexthelpers.AuthenticatedUserID(ctx)
		err := tx.QueryRowContext(ctx, `SELECT target_minutes, logged_minutes
FROM deep_work_sessions
WHERE user_id = ? AND date = ?`, userID, formatDate(date)).Scan(&s.Target, &s.LoggedMinutes)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return errors.Wrap(err, "get deep work session")
		}
		updateFn(&s)
		if _, err = tx.ExecContext(ctx, `INSERT INTO deep_work_sessions (user_id, date, target_minutes, logged_minutes)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, date) DO UPDATE SET target_minutes = excluded.target_minutes,
                                          logged_minutes = excluded.logged_minutes`,
			userID, formatDate(date), int(s.Target), s.LoggedMinutes); err != nil {
			return errors.Wrap(err, "upsert deep work session", slog.String("date", formatDate(date)))
		}
		return nil
	})
	return s, err
}

// GetNote returns the markdown note of date, empty when none was written.
func (r *deepWorkRepository) GetNote(ctx context.Context, date time.Time) (string, error) {
	var markdown string
	err := r.db.ReadOnly.QueryRowContext(ctx, `SELECT markdown FROM deep_work_notes WHERE user_id = ? AND date = ?`,
		contexthelpers.AuthenticatedUserID(ctx), formatDate(date)).Scan(&markdown)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", errors.Wrap(err, "get deep work note", slog.String("date", formatDate(date)))
	}
	return markdown, nil
}

// SetNote stores markdown as the note of date. An empty note deletes it.
func (r *deepWorkRepository) SetNote(ctx context.Context, date time.Time, markdown string) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	var err error
	if markdown == "" {
		_, err = r.db.ReadWrite.ExecContext(ctx, `DELETE FROM deep_work_notes WHERE user_id = ? AND date = ?`,
			userID, formatDate(date))
	} else {
		_, err = r.db.ReadWrite.ExecContext(ctx, `INSERT INTO deep_work_notes (user_id, date, markdown)
VALUES (?, ?, ?)
ON CONFLICT (user_id, date) DO UPDATE SET markdown = excluded.markdown,
                                          updated  = STRFTIME('%Y-%m-%dT%H:%M:%fZ')`,
			userID, formatDate(date), markdown)
	}
	if err != nil {
		return errors.Wrap(err, "set deep work note", slog.String("date", formatDate(date)))
	}
	return nil
}

package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
	"github.com/myrjola/habitapp/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

var (
	ErrNotFound     = errors.NewSentinel("not found")
	ErrInvalidInput = habits.ErrInvalidInput
)

type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// repository groups the per-table repositories. All of them scope queries to the user authenticated in the context.
type repository struct {
	logs       *dailyLogRepository
	streaks    *streakRepository
	catalog    *catalogRepository
	basketball *basketballRepository
	deepWork   *deepWorkRepository
	groceries  *groceryRepository
}

func newRepository(db *sqlite.Database, logger *slog.Logger) *repository {
	base := baseRepository{db: db, logger: logger}
	return &repository{
		logs:       &dailyLogRepository{base},
		streaks:    &streakRepository{base},
		catalog:    &catalogRepository{base},
		basketball: &basketballRepository{base},
		deepWork:   &deepWorkRepository{base},
		groceries:  &groceryRepository{base},
	}
}

func formatDate(t time.Time) string {
	return habits.Key(t)
}

func parseDate(s string) (time.Time, error) {
	d, err := habits.ParseDate(s)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parse stored date", slog.String("value", s))
	}
	return d, nil
}

// nullDate maps the zero time to NULL.
func nullDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{String: "", Valid: false}
	}
	return sql.NullString{String: formatDate(t), Valid: true}
}

func parseNullDate(s sql.NullString) (time.Time, error) {
	if !s.Valid {
		return time.Time{}, nil
	}
	return parseDate(s.String)
}

func formatTimestamp(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{String: "", Valid: false}
	}
	return sql.NullString{String: t.UTC().Format(timestampFormat), Valid: true}
}

func parseTimestamp(s sql.NullString) (time.Time, error) {
	if !s.Valid {
		return time.Time{}, nil
	}
	t, err := time.Parse(timestampFormat, s.String)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parse stored timestamp", slog.String("value", s.String))
	}
	return t, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encode JSON column")
	}
	return string(b), nil
}

func decodeJSON(s string, v any) error {
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return errors.Wrap(err, "decode JSON column")
	}
	return nil
}

// closeRows joins the close error into err.
func closeRows(rows *sql.Rows, err *error) {
	if closeErr := rows.Close(); closeErr != nil {
		*err = errors.Join(*err, errors.Wrap(closeErr, "close rows"))
	}
}

// inTx runs fn in a write transaction that is committed when fn succeeds.
func (r baseRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer r.rollback(tx)
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

func (r baseRepository) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		r.logger.Error("rollback failed", errors.SlogError(errors.Wrap(err, "rollback")))
	}
}

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

type dailyLogRepository struct {
	baseRepository
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectDailyLog = `SELECT date, variable_meals, fixed_meals, cheat_meals, fitness_activities
FROM daily_logs`

// Get returns the log of date or ErrNotFound.
func (r *dailyLogRepository) Get(ctx context.Context, date time.Time) (habits.DailyLog, error) {
	return r.get(ctx, r.db.ReadOnly, date)
}

func (r *dailyLogRepository) get(ctx context.Context, q queryRower, date time.Time) (habits.DailyLog, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	row := q.QueryRowContext(ctx, selectDailyLog+` WHERE user_id = ? AND date = ?`, userID, formatDate(date))
	l, err := scanDailyLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return habits.DailyLog{}, ErrNotFound
	}
	if err != nil {
		return habits.DailyLog{}, errors.Wrap(err, "get daily log", slog.String("date", formatDate(date)))
	}
	return l, nil
}

// ListRange returns the logs from from to to inclusive in date order.
func (r *dailyLogRepository) ListRange(ctx context.Context, from, to time.Time) (_ []habits.DailyLog, err error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	rows, err := r.db.ReadOnly.QueryContext(ctx, selectDailyLog+`
WHERE user_id = ? AND date BETWEEN ? AND ?
ORDER BY date`, userID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, errors.Wrap(err, "query daily logs")
	}
	defer closeRows(rows, &err)

	var logs []habits.DailyLog
	for rows.Next() {
		var l habits.DailyLog
		if l, err = scanDailyLog(rows); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate daily logs")
	}
	return logs, nil
}

// Update reads the log of date, or an empty one, applies updateFn and stores the result if updateFn reports a change.
// The read and the write share one transaction.
func (r *dailyLogRepository) Update(
	ctx context.Context,
	date time.Time,
	updateFn func(l *habits.DailyLog) (bool, error),
) (habits.DailyLog, error) {
	var l habits.DailyLog
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		l, err = r.updateTx(ctx, tx, date, updateFn)
		return err
	})
	return l, err
}

func (r *dailyLogRepository) updateTx(
	ctx context.Context,
	tx *sql.Tx,
	date time.Time,
	updateFn func(l *habits.DailyLog) (bool, error),
) (habits.DailyLog, error) {
	l, err := r.get(ctx, tx, date)
	if errors.Is(err, ErrNotFound) {
		l = habits.NewDailyLog(date)
	} else if err != nil {
		return habits.DailyLog{}, err
	}

	updated, err := updateFn(&l)
	if err != nil {
		return habits.DailyLog{}, err
	}
	if updated {
		if err = r.upsert(ctx, tx, l); err != nil {
			return habits.DailyLog{}, err
		}
	}
	return l, nil
}

func (r *dailyLogRepository) upsert(ctx context.Context, tx *sql.Tx, l habits.DailyLog) error {
	var cols [4]string
	for i, v := range []any{
		nonNil(l.VariableMeals),
		nonNilMap(l.FixedMeals),
		nonNil(l.CheatMeals),
		nonNil(l.FitnessActivities),
	} {
		var err error
		if cols[i], err = encodeJSON(v); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO daily_logs
    (user_id, date, variable_meals, fixed_meals, cheat_meals, fitness_activities)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, date) DO UPDATE SET variable_meals     = excluded.variable_meals,
                                          fixed_meals        = excluded.fixed_meals,
                                          cheat_meals        = excluded.cheat_meals,
                                          fitness_activities = excluded.fitness_activities,
                                          updated            = STRFTIME('%Y-%m-%dT%H:%M:%fZ')`,
		contexthelpers.AuthenticatedUserID(ctx), formatDate(l.Date), cols[0], cols[1], cols[2], cols[3])
	if err != nil {
		return errors.Wrap(err, "upsert daily log", slog.String("date", formatDate(l.Date)))
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDailyLog(s scanner) (habits.DailyLog, error) {
	var date, variable, fixed, cheat, fitness string
	if err := s.Scan(&date, &variable, &fixed, &cheat, &fitness); err != nil {
		return habits.DailyLog{}, err //nolint:wrapcheck // callers check for sql.ErrNoRows.
	}
	d, err := parseDate(date)
	if err != nil {
		return habits.DailyLog{}, err
	}
	l := habits.NewDailyLog(d)
	for _, c := range []struct {
		raw string
		dst any
	}{
		{variable, &l.VariableMeals},
		{fixed, &l.FixedMeals},
		{cheat, &l.CheatMeals},
		{fitness, &l.FitnessActivities},
	} {
		if err = decodeJSON(c.raw, c.dst); err != nil {
			return habits.DailyLog{}, errors.Wrap(err, "decode daily log", slog.String("date", date))
		}
	}
	return l, nil
}

// nonNil makes sure empty lists are stored as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nonNilMap(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}

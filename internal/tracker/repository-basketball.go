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

type basketballRepository struct {
	baseRepository
}

const selectBasketballSession = `SELECT id, date, makes, total_makes, total_attempts, score, created
FROM basketball_sessions`

// Create stores s and returns it with the generated ID and creation time.
func (r *basketballRepository) Create(
	ctx context.Context,
	tx *sql.Tx,
	s habits.BasketballSession,
) (habits.BasketballSession, error) {
	makes, err := encodeJSON(s.Makes)
	if err != nil {
		return habits.BasketballSession{}, err
	}
	var created string
	err = tx.QueryRowContext(ctx, `INSERT INTO basketball_sessions
    (user_id, date, makes, total_makes, total_attempts, score)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, created`,
		contexthelpers.AuthenticatedUserID(ctx),
		formatDate(s.Date),
		makes,
		s.Totals.Makes,
		s.Totals.Attempts,
		s.Totals.Score,
	).Scan(&s.ID, &created)
	if err != nil {
		return habits.BasketballSession{}, errors.Wrap(err, "insert basketball session",
			slog.String("date", formatDate(s.Date)))
	}
	if s.CreatedAt, err = parseTimestamp(sql.NullString{String: created, Valid: true}); err != nil {
		return habits.BasketballSession{}, err
	}
	return s, nil
}

// List returns every session of the user oldest first.
func (r *basketballRepository) List(ctx context.Context) ([]habits.BasketballSession, error) {
	sessions, err := queryList(ctx, r.db.ReadOnly, selectBasketballSession+`
WHERE user_id = ?
ORDER BY date, created`, scanBasketballSession, contexthelpers.AuthenticatedUserID(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "list basketball sessions")
	}
	return sessions, nil
}

// ListForDate returns the sessions of date in creation order.
func (r *basketballRepository) ListForDate(ctx context.Context, date time.Time) ([]habits.BasketballSession, error) {
	sessions, err := queryList(ctx, r.db.ReadOnly, selectBasketballSession+`
WHERE user_id = ? AND date = ?
ORDER BY created`, scanBasketballSession, contexthelpers.AuthenticatedUserID(ctx), formatDate(date))
	if err != nil {
		return nil, errors.Wrap(err, "list basketball sessions for date", slog.String("date", formatDate(date)))
	}
	return sessions, nil
}

func scanBasketballSession(s scanner) (habits.BasketballSession, error) {
	var (
		session              habits.BasketballSession
		date, makes, created string
	)
	if err := s.Scan(&session.ID, &date, &makes, &session.Totals.Makes, &session.Totals.Attempts,
		&session.Totals.Score, &created); err != nil {
		return habits.BasketballSession{}, err //nolint:wrapcheck // wrapped by queryList.
	}
	var err error
	if session.Date, err = parseDate(date); err != nil {
		return habits.BasketballSession{}, err
	}
	if err = decodeJSON(makes, &session.Makes); err != nil {
		return habits.BasketballSession{}, err
	}
	if session.CreatedAt, err = parseTimestamp(sql.NullString{String: created, Valid: true}); err != nil {
		return habits.BasketballSession{}, err
	}
	return session, nil
}

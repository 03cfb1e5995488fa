package tracker

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
	"golang.org/x/sync/errgroup"
)

// BasketballDay is the shooting page content of one date.
type BasketballDay struct {
	Date      time.Time
	ShotTypes []habits.ShotType
	Latest    habits.BasketballSession
	HasLatest bool
	Sessions  []habits.BasketballSession
}

// CompleteBasketballSession scores and stores a shooting session and marks the day as a basketball training day.
// Repeated sessions on the same day record the training activity only once.
func (s *Service) CompleteBasketballSession(
	ctx context.Context,
	date time.Time,
	makes map[string]int,
) (habits.BasketballSession, error) {
	catalog, err := s.repo.catalog.ShotTypes(ctx)
	if err != nil {
		return habits.BasketballSession{}, errors.Wrap(err, "list shot types")
	}
	totals, err := habits.ScoreShots(makes, catalog)
	if err != nil {
		return habits.BasketballSession{}, err
	}
	session := habits.BasketballSession{
		ID:        0,
		Date:      habits.Day(date),
		Makes:     makes,
		Totals:    totals,
		CreatedAt: time.Time{},
	}

	err = s.repo.basketball.inTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		if session, txErr = s.repo.basketball.Create(ctx, tx, session); txErr != nil {
			return txErr
		}
		_, txErr = s.repo.logs.updateTx(ctx, tx, date, func(l *habits.DailyLog) (bool, error) {
			return l.AddActivityOnce(habits.ActivityBasketballTraining, s.now()), nil
		})
		return txErr
	})
	if err != nil {
		return habits.BasketballSession{}, errors.Wrap(err, "complete basketball session",
			slog.String("date", habits.Key(date)))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "completed basketball session",
		slog.Int("session_id", session.ID), slog.Float64("score", session.Totals.Score))
	return session, nil
}

func (s *Service) BasketballDay(ctx context.Context, date time.Time) (BasketballDay, error) {
	d := BasketballDay{Date: habits.Day(date), ShotTypes: nil, Latest: habits.BasketballSession{}, HasLatest: false,
		Sessions: nil}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.ShotTypes, err = s.repo.catalog.ShotTypes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.Sessions, err = s.repo.basketball.ListForDate(gctx, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return BasketballDay{}, errors.Wrap(err, "load basketball day", slog.String("date", habits.Key(date)))
	}
	d.Latest, d.HasLatest = habits.LatestSessionForDate(d.Sessions, date)
	return d, nil
}

// BasketballReport summarises every session up to today.
func (s *Service) BasketballReport(ctx context.Context, today time.Time) (habits.BasketballReport, error) {
	var (
		sessions []habits.BasketballSession
		catalog  []habits.ShotType
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.repo.basketball.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = s.repo.catalog.ShotTypes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return habits.BasketballReport{}, errors.Wrap(err, "load basketball report")
	}
	return habits.BuildBasketballReport(sessions, catalog, today), nil
}

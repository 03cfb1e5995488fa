package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
	"golang.org/x/sync/errgroup"
)

// Progress is the content of the progress page.
type Progress struct {
	Today    time.Time
	Period   habits.Period
	Streaks  habits.StreakState
	Goals    []habits.Goal
	Week     habits.CleanDayStats
	Month    habits.CleanDayStats
	Year     habits.CleanDayStats
	Selected habits.PeriodStats
	Calendar habits.Calendar
	// StreaksStale is set when the refreshed streaks could not be stored and the previous state is shown.
	StreaksStale bool
}

// RefreshStreaks recomputes the streaks ending at today and stores them.
//
// When the new state cannot be stored the failure is logged and the previously stored state is returned flagged as
// stale. Only a failure to load the inputs is returned as an error.
func (s *Service) RefreshStreaks(ctx context.Context, today time.Time) (habits.StreakState, bool, error) {
	logs, prev, err := s.loadForStreaks(ctx, today.AddDate(0, 0, -streakLookback), today)
	if err != nil {
		return habits.StreakState{}, false, err
	}
	state, stale := s.refreshStreaks(ctx, logs, prev, today)
	return state, stale, nil
}

// Progress builds the progress report for period ending at today and refreshes the streaks along the way.
func (s *Service) Progress(ctx context.Context, period habits.Period, today time.Time) (Progress, error) {
	today = habits.Day(today)
	selected := habits.ResolveRange(period, today)
	from := today.AddDate(0, 0, -streakLookback)
	for _, start := range []time.Time{selected.Start, habits.ResolveRange(habits.PeriodYear, today).Start} {
		if start.Before(from) {
			from = start
		}
	}

	logs, prev, err := s.loadForStreaks(ctx, from, today)
	if err != nil {
		return Progress{}, err
	}
	streaks, stale := s.refreshStreaks(ctx, logs, prev, today)

	idx := habits.NewLogIndex(logs)
	cleanStats := func(p habits.Period) habits.CleanDayStats {
		r := habits.ResolveRange(p, today)
		return habits.CleanDays(habits.FilterRange(logs, r), r.Days())
	}
	return Progress{
		Today:        today,
		Period:       period,
		Streaks:      streaks,
		Goals:        habits.WeeklyGoals(idx, today, s.quota),
		Week:         cleanStats(habits.PeriodWeek),
		Month:        cleanStats(habits.PeriodMonth),
		Year:         cleanStats(habits.PeriodYear),
		Selected:     habits.ComputePeriodStats(logs, selected),
		Calendar:     habits.BuildCalendar(idx, today, today),
		StreaksStale: stale,
	}, nil
}

// loadForStreaks loads the logs from from to today and the stored streak state concurrently.
func (s *Service) loadForStreaks(
	ctx context.Context,
	from, today time.Time,
) ([]habits.DailyLog, habits.StreakState, error) {
	var (
		logs []habits.DailyLog
		prev habits.StreakState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		logs, err = s.repo.logs.ListRange(gctx, from, today)
		return err
	})
	g.Go(func() error {
		var err error
		prev, err = s.repo.streaks.Get(gctx)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, habits.StreakState{}, errors.Wrap(err, "load streak inputs")
	}
	return logs, prev, nil
}

// refreshStreaks stores the streaks computed from logs. A storage failure keeps prev and reports it as stale.
func (s *Service) refreshStreaks(
	ctx context.Context,
	logs []habits.DailyLog,
	prev habits.StreakState,
	today time.Time,
) (habits.StreakState, bool) {
	next := habits.ComputeStreaks(prev, logs, s.strategy, today)
	if err := s.repo.streaks.Set(ctx, next); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "showing previous streaks",
			errors.SlogError(errors.Wrap(err, "store streaks", slog.Int("current", next.CurrentStreak))))
		return prev, true
	}
	return next, false
}

// Package tracker records daily habits for the authenticated user and turns them into progress reports.
package tracker

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
	"github.com/myrjola/habitapp/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

// streakLookback bounds how far back streaks are walked.
const streakLookback = 366

type Service struct {
	repo     *repository
	logger   *slog.Logger
	strategy habits.FitnessStrategy
	quota    habits.WeeklyQuota
	now      func() time.Time
}

// NewService creates a tracker persisting to db. strategy selects the fitness streak kept in the streak state.
func NewService(db *sqlite.Database, logger *slog.Logger, strategy habits.FitnessStrategy) *Service {
	return &Service{
		repo:     newRepository(db, logger),
		logger:   logger,
		strategy: strategy,
		quota:    habits.DefaultWeeklyQuota,
		now:      time.Now,
	}
}

// MealChoice is a catalog meal and whether the day has it.
type MealChoice struct {
	Meal     Meal
	Selected bool
	// ServedThisWeek counts the days of the week so far with this meal.
	ServedThisWeek int
}

// Day is everything the tracking page shows for one date.
type Day struct {
	Log           habits.DailyLog
	VariableMeals []MealChoice
	FixedMeals    []MealChoice
	Activities    []ActivityChoice
	// VariableMealLimitReached disables adding further variable meals.
	VariableMealLimitReached bool
}

type ActivityChoice struct {
	Type     habits.ActivityType
	Selected bool
}

// DailyLog returns the log of date or an empty log when nothing was recorded.
func (s *Service) DailyLog(ctx context.Context, date time.Time) (habits.DailyLog, error) {
	l, err := s.repo.logs.Get(ctx, date)
	if errors.Is(err, ErrNotFound) {
		return habits.NewDailyLog(date), nil
	}
	if err != nil {
		return habits.DailyLog{}, errors.Wrap(err, "get daily log")
	}
	return l, nil
}

// Day loads the tracking page content of date.
func (s *Service) Day(ctx context.Context, date time.Time) (Day, error) {
	var (
		week          []habits.DailyLog
		variableMeals []Meal
		fixedMeals    []Meal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		week, err = s.repo.logs.ListRange(gctx, habits.StartOfWeek(date), date)
		return err
	})
	g.Go(func() error {
		var err error
		variableMeals, err = s.repo.catalog.VariableMeals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		fixedMeals, err = s.repo.catalog.FixedMeals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Day{}, errors.Wrap(err, "load day", slog.String("date", habits.Key(date)))
	}

	l := habits.NewDailyLog(date)
	if found := habits.NewLogIndex(week).Get(date); found != nil {
		l = *found
	}
	d := Day{
		Log:                      l,
		VariableMeals:            make([]MealChoice, 0, len(variableMeals)),
		FixedMeals:               make([]MealChoice, 0, len(fixedMeals)),
		Activities:               nil,
		VariableMealLimitReached: len(l.VariableMeals) >= habits.MaxVariableMealsPerDay,
	}
	for _, m := range variableMeals {
		served := 0
		for _, wl := range week {
			if slices.Contains(wl.VariableMeals, m.ID) {
				served++
			}
		}
		d.VariableMeals = append(d.VariableMeals, MealChoice{
			Meal:           m,
			Selected:       slices.Contains(l.VariableMeals, m.ID),
			ServedThisWeek: served,
		})
	}
	for _, m := range fixedMeals {
		d.FixedMeals = append(d.FixedMeals, MealChoice{Meal: m, Selected: l.FixedMeals[m.ID], ServedThisWeek: 0})
	}
	for _, a := range habits.ToggleableActivities() {
		d.Activities = append(d.Activities, ActivityChoice{Type: a, Selected: habits.HasActivity(&l, a)})
	}
	return d, nil
}

// Week returns the days of the week containing today with their status.
func (s *Service) Week(ctx context.Context, today time.Time) ([7]habits.CalendarDay, error) {
	weekStart := habits.StartOfWeek(today)
	logs, err := s.repo.logs.ListRange(ctx, weekStart, weekStart.AddDate(0, 0, 6)) //nolint:mnd // Monday to Sunday.
	if err != nil {
		return [7]habits.CalendarDay{}, errors.Wrap(err, "list week", slog.String("week", habits.Key(weekStart)))
	}
	return habits.Week(habits.NewLogIndex(logs), today), nil
}

func (s *Service) ToggleVariableMeal(ctx context.Context, date time.Time, mealID string) error {
	meals, err := s.repo.catalog.VariableMeals(ctx)
	if err != nil {
		return errors.Wrap(err, "list variable meals")
	}
	if !slices.ContainsFunc(meals, func(m Meal) bool { return m.ID == mealID }) {
		return errors.Wrap(ErrInvalidInput, "unknown variable meal", slog.String("meal_id", mealID))
	}
	return s.updateLog(ctx, date, func(l *habits.DailyLog) (bool, error) {
		return true, l.ToggleVariableMeal(mealID)
	})
}

func (s *Service) ToggleFixedMeal(ctx context.Context, date time.Time, mealID string) error {
	meals, err := s.repo.catalog.FixedMeals(ctx)
	if err != nil {
		return errors.Wrap(err, "list fixed meals")
	}
	if !slices.ContainsFunc(meals, func(m Meal) bool { return m.ID == mealID }) {
		return errors.Wrap(ErrInvalidInput, "unknown fixed meal", slog.String("meal_id", mealID))
	}
	return s.updateLog(ctx, date, func(l *habits.DailyLog) (bool, error) {
		l.ToggleFixedMeal(mealID)
		return true, nil
	})
}

func (s *Service) AddCheatMeal(ctx context.Context, date time.Time, meal habits.CheatMeal) error {
	return s.updateLog(ctx, date, func(l *habits.DailyLog) (bool, error) {
		return true, l.AddCheatMeal(meal)
	})
}

func (s *Service) RemoveCheatMeal(ctx context.Context, date time.Time, index int) error {
	return s.updateLog(ctx, date, func(l *habits.DailyLog) (bool, error) {
		return true, l.RemoveCheatMeal(index)
	})
}

// ToggleFitnessActivity switches a user toggleable activity. Basketball training is recorded by
// CompleteBasketballSession only.
func (s *Service) ToggleFitnessActivity(ctx context.Context, date time.Time, activity habits.ActivityType) error {
	if !slices.Contains(habits.ToggleableActivities(), activity) {
		return errors.Wrap(ErrInvalidInput, "activity cannot be toggled", slog.String("activity", string(activity)))
	}
	return s.updateLog(ctx, date, func(l *habits.DailyLog) (bool, error) {
		l.ToggleActivity(activity, s.now())
		return true, nil
	})
}

func (s *Service) updateLog(ctx context.Context, date time.Time, fn func(l *habits.DailyLog) (bool, error)) error {
	if _, err := s.repo.logs.Update(ctx, date, fn); err != nil {
		return errors.Wrap(err, "update daily log", slog.String("date", habits.Key(date)))
	}
	return nil
}

package habits

import (
	"log/slog"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
)

// StreakRule describes a backward walk over consecutive qualifying days.
//
// Skip and PeriodStart are optional. When PeriodStart is set, PeriodMet must be set as well and is consulted once for
// every completed period the walk enters.
type StreakRule struct {
	Qualifies   func(*DailyLog) bool
	Skip        func(time.Time) bool
	PeriodStart func(time.Time) time.Time
	PeriodMet   func(idx *LogIndex, periodStart time.Time) bool
}

// Count returns the length of the streak ending at today.
//
// A skipped today neither seeds nor breaks the streak. Otherwise a today that does not qualify yields 0. The walk stops
// at the first non-qualifying day, at a completed period that misses its goal, or at the earliest indexed day.
func (r StreakRule) Count(idx *LogIndex, today time.Time) int {
	if idx.Len() == 0 {
		return 0
	}
	today = Day(today)
	count := 0
	if !r.skip(today) {
		if !r.Qualifies(idx.Get(today)) {
			return 0
		}
		count = 1
	}

	earliest := idx.Earliest()
	prev := today
	for day := today.AddDate(0, 0, -1); !day.Before(earliest); day = day.AddDate(0, 0, -1) {
		if r.PeriodStart != nil {
			if start := r.PeriodStart(day); !start.Equal(r.PeriodStart(prev)) && !r.PeriodMet(idx, start) {
				break
			}
		}
		prev = day
		if r.skip(day) {
			continue
		}
		if !r.Qualifies(idx.Get(day)) {
			break
		}
		count++
	}
	return count
}

func (r StreakRule) skip(day time.Time) bool {
	return r.Skip != nil && r.Skip(day)
}

// CleanMealStreak counts consecutive days without cheat meals.
func CleanMealStreak() StreakRule {
	return StreakRule{Qualifies: IsCleanDay, Skip: nil, PeriodStart: nil, PeriodMet: nil}
}

// WeekdayFitnessStreak counts consecutive weekdays with fitness activity. Weekends are passed over.
func WeekdayFitnessStreak() StreakRule {
	return StreakRule{Qualifies: HasFitnessActivity, Skip: IsWeekend, PeriodStart: nil, PeriodMet: nil}
}

// WeeklyGoalFitnessStreak counts consecutive days with fitness activity, broken by any completed week that misses
// quota.
func WeeklyGoalFitnessStreak(quota WeeklyQuota) StreakRule {
	return StreakRule{
		Qualifies:   HasFitnessActivity,
		Skip:        nil,
		PeriodStart: StartOfWeek,
		PeriodMet:   quota.Met,
	}
}

// WeeklyQuota is the minimum number of activities a week needs.
type WeeklyQuota struct {
	Weightlifting      int
	BasketballTraining int
}

// DefaultWeeklyQuota is three weightlifting and two basketball training sessions a week.
//
//nolint:gochecknoglobals // read-only defaults.
var DefaultWeeklyQuota = WeeklyQuota{Weightlifting: 3, BasketballTraining: 2}

// Count tallies the quota relevant activities of the seven days starting at weekStart.
func (q WeeklyQuota) Count(idx *LogIndex, weekStart time.Time) WeeklyQuota {
	var got WeeklyQuota
	week := DateRange{Start: weekStart, End: Day(weekStart).AddDate(0, 0, 6)} //nolint:mnd // seven day week.
	for d := range week.Dates() {
		l := idx.Get(d)
		got.Weightlifting += CountActivities(l, ActivityWeightlifting)
		got.BasketballTraining += CountActivities(l, ActivityBasketballTraining)
	}
	return got
}

// Met reports whether the week starting at weekStart satisfies q.
func (q WeeklyQuota) Met(idx *LogIndex, weekStart time.Time) bool {
	got := q.Count(idx, weekStart)
	return got.Weightlifting >= q.Weightlifting && got.BasketballTraining >= q.BasketballTraining
}

// FitnessStrategy selects which fitness streak is persisted.
type FitnessStrategy string

const (
	FitnessWeekdays   FitnessStrategy = "weekdays"
	FitnessWeeklyGoal FitnessStrategy = "weekly_goal"
)

var ErrUnknownFitnessStrategy = errors.NewSentinel("unknown fitness strategy")

func ParseFitnessStrategy(s string) (FitnessStrategy, error) {
	switch f := FitnessStrategy(s); f {
	case FitnessWeekdays, FitnessWeeklyGoal:
		return f, nil
	default:
		return "", errors.Wrap(ErrUnknownFitnessStrategy, "parse fitness strategy", slog.String("strategy", s))
	}
}

// Rule returns the streak rule for the strategy. Unknown strategies fall back to weekdays.
func (s FitnessStrategy) Rule() StreakRule {
	if s == FitnessWeeklyGoal {
		return WeeklyGoalFitnessStreak(DefaultWeeklyQuota)
	}
	return WeekdayFitnessStreak()
}

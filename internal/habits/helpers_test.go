package habits_test

import (
	"testing"
	"time"

	"github.com/myrjola/habitapp/internal/habits"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := habits.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

type logOption func(*habits.DailyLog)

func withCheat(name string) logOption {
	return func(l *habits.DailyLog) {
		l.CheatMeals = append(l.CheatMeals, habits.CheatMeal{Name: name, Emoji: ""})
	}
}

func withActivity(a habits.ActivityType) logOption {
	return func(l *habits.DailyLog) {
		l.FitnessActivities = append(l.FitnessActivities, habits.FitnessActivity{Type: a, Timestamp: l.Date})
	}
}

func withVariable(ids ...string) logOption {
	return func(l *habits.DailyLog) {
		l.VariableMeals = append(l.VariableMeals, ids...)
	}
}

func withFixed(ids ...string) logOption {
	return func(l *habits.DailyLog) {
		for _, id := range ids {
			l.FixedMeals[id] = true
		}
	}
}

func dayLog(t *testing.T, date string, opts ...logOption) habits.DailyLog {
	t.Helper()
	l := habits.NewDailyLog(mustDate(t, date))
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

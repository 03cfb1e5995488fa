package habits_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/habitapp/internal/habits"
)

func TestCleanMealStreak(t *testing.T) {
	tests := []struct {
		name  string
		logs  []habits.DailyLog
		today string
		want  int
	}{
		{
			name:  "no logs",
			logs:  nil,
			today: "2024-03-06",
			want:  0,
		},
		{
			name: "broken by a cheat meal",
			logs: []habits.DailyLog{
				dayLog(t, "2024-03-03", withCheat("pizza")),
				dayLog(t, "2024-03-04"),
				dayLog(t, "2024-03-05"),
				dayLog(t, "2024-03-06"),
			},
			today: "2024-03-06",
			want:  3,
		},
		{
			name: "cheat meal today",
			logs: []habits.DailyLog{
				dayLog(t, "2024-03-05"),
				dayLog(t, "2024-03-06", withCheat("pizza")),
			},
			today: "2024-03-06",
			want:  0,
		},
		{
			name: "nothing logged today",
			logs: []habits.DailyLog{
				dayLog(t, "2024-03-04"),
				dayLog(t, "2024-03-05"),
			},
			today: "2024-03-06",
			want:  0,
		},
		{
			name: "broken by a missing day",
			logs: []habits.DailyLog{
				dayLog(t, "2024-03-02"),
				dayLog(t, "2024-03-03"),
				dayLog(t, "2024-03-05"),
				dayLog(t, "2024-03-06"),
			},
			today: "2024-03-06",
			want:  2,
		},
		{
			name: "duplicate date keeps the last log",
			logs: []habits.DailyLog{
				dayLog(t, "2024-03-05"),
				dayLog(t, "2024-03-06"),
				dayLog(t, "2024-03-06", withCheat("cake")),
			},
			today: "2024-03-06",
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := habits.CleanMealStreak().Count(habits.NewLogIndex(tt.logs), mustDate(t, tt.today))
			if got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWeekdayFitnessStreak(t *testing.T) {
	lift := withActivity(habits.ActivityWeightlifting)
	tests := []struct {
		name  string
		logs  []habits.DailyLog
		today string
		want  int
	}{
		{
			name: "weekend today does not break the streak",
			logs: []habits.DailyLog{
				dayLog(t, "2024-03-06"),
				dayLog(t, "2024-03-07", lift),
				dayLog(t, "2024-03-08", lift),
			},
			today: "2024-03-09",
			want:  2,
		},
		{
			name: "weekend between weekdays is passed over",
			logs: []habits.DailyLog{
				dayLog(t, "2024-03-07"),
				dayLog(t, "2024-03-08", lift),
				dayLog(t, "2024-03-11", lift),
			},
			today: "2024-03-11",
			want:  2,
		},
		{
			name: "weekday today without activity",
			logs: []habits.DailyLog{
				dayLog(t, "2024-03-04", lift),
				dayLog(t, "2024-03-05", lift),
				dayLog(t, "2024-03-06"),
			},
			today: "2024-03-06",
			want:  0,
		},
		{
			name: "weekend activity does not count",
			logs: []habits.DailyLog{
				dayLog(t, "2024-03-08", lift),
				dayLog(t, "2024-03-09", lift),
				dayLog(t, "2024-03-10", lift),
				dayLog(t, "2024-03-11", lift),
			},
			today: "2024-03-11",
			want:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := habits.WeekdayFitnessStreak().Count(habits.NewLogIndex(tt.logs), mustDate(t, tt.today))
			if got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

// fitnessWeek returns a week of daily logs starting at monday with an activity every day. Weightlifting goes on Monday,
// Wednesday and Friday and basketball training on Tuesday and Thursday until lifts and trainings run out. Every other
// day is pickup basketball.
func fitnessWeek(t *testing.T, monday string, lifts, trainings int) []habits.DailyLog {
	t.Helper()
	start := mustDate(t, monday)
	logs := make([]habits.DailyLog, 0, 7)
	for i := range 7 {
		activity := habits.ActivityBasketballPickup
		switch i {
		case 0, 2, 4:
			if lifts > 0 {
				activity = habits.ActivityWeightlifting
				lifts--
			}
		case 1, 3:
			if trainings > 0 {
				activity = habits.ActivityBasketballTraining
				trainings--
			}
		}
		logs = append(logs, dayLog(t, habits.Key(start.AddDate(0, 0, i)), withActivity(activity)))
	}
	return logs
}

func TestWeeklyGoalFitnessStreak(t *testing.T) {
	pickup := withActivity(habits.ActivityBasketballPickup)
	thisWeek := func() []habits.DailyLog {
		return []habits.DailyLog{dayLog(t, "2024-03-11", pickup), dayLog(t, "2024-03-12", pickup)}
	}
	twoWeeksBack := fitnessWeek(t, "2024-02-26", 3, 2)
	twoWeeksBack[5] = dayLog(t, "2024-03-02")
	tests := []struct {
		name string
		logs []habits.DailyLog
		want int
	}{
		{
			name: "previous week met quota",
			logs: append(fitnessWeek(t, "2024-03-04", 3, 2), thisWeek()...),
			want: 9,
		},
		{
			name: "previous week missed basketball quota",
			logs: append(fitnessWeek(t, "2024-03-04", 3, 1), thisWeek()...),
			want: 2,
		},
		{
			name: "previous week missed weightlifting quota",
			logs: append(fitnessWeek(t, "2024-03-04", 2, 2), thisWeek()...),
			want: 2,
		},
		{
			name: "walk crosses two completed weeks",
			logs: append(append(twoWeeksBack, fitnessWeek(t, "2024-03-04", 3, 2)...), thisWeek()...),
			want: 10,
		},
		{
			name: "current week is not checked",
			logs: thisWeek(),
			want: 2,
		},
	}
	rule := habits.WeeklyGoalFitnessStreak(habits.DefaultWeeklyQuota)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rule.Count(habits.NewLogIndex(tt.logs), mustDate(t, "2024-03-12"))
			if got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseFitnessStrategy(t *testing.T) {
	if _, err := habits.ParseFitnessStrategy("monthly"); err == nil {
		t.Error("expected error for unknown strategy")
	}
	got, err := habits.ParseFitnessStrategy("weekly_goal")
	if err != nil || got != habits.FitnessWeeklyGoal {
		t.Errorf("ParseFitnessStrategy() = %q, %v", got, err)
	}
}

func TestStreakState_Advance(t *testing.T) {
	today := mustDate(t, "2024-03-06")
	var state habits.StreakState
	for _, step := range []struct{ clean, fitness int }{{1, 1}, {2, 0}, {0, 1}, {1, 2}} {
		next := state.Advance(step.clean, step.fitness, today)
		if next.LongestStreak < state.LongestStreak || next.LongestFitnessStreak < state.LongestFitnessStreak {
			t.Fatalf("longest streak decreased: %+v -> %+v", state, next)
		}
		state = next
	}
	want := habits.StreakState{
		CurrentStreak:        1,
		LongestStreak:        2,
		LastCleanDay:         today,
		FitnessStreak:        2,
		LongestFitnessStreak: 2,
		LastFitnessDay:       today,
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Errorf("Advance() mismatch (-want +got):\n%s", diff)
	}

	broken := state.Advance(0, 0, today)
	if !broken.LastCleanDay.IsZero() || !broken.LastFitnessDay.IsZero() {
		t.Errorf("expected cleared last days, got %+v", broken)
	}
}

func TestComputeStreaks(t *testing.T) {
	lift := withActivity(habits.ActivityWeightlifting)
	logs := []habits.DailyLog{
		dayLog(t, "2024-03-04", lift),
		dayLog(t, "2024-03-05", lift, withCheat("ice cream")),
		dayLog(t, "2024-03-06", lift),
	}
	prev := habits.StreakState{LongestStreak: 10} //nolint:exhaustruct // only the longest streak matters.
	got := habits.ComputeStreaks(prev, logs, habits.FitnessWeekdays, mustDate(t, "2024-03-06"))
	if got.CurrentStreak != 1 || got.FitnessStreak != 3 || got.LongestStreak != 10 || got.LongestFitnessStreak != 3 {
		t.Errorf("ComputeStreaks() = %+v", got)
	}
}

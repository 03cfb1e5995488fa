package habits

import "time"

type GoalID string

const (
	GoalCleanWeek          GoalID = "clean_week"
	GoalFitnessWeekdays    GoalID = "fitness_weekdays"
	GoalWeightliftingQuota GoalID = "weightlifting_quota"
	GoalBasketballQuota    GoalID = "basketball_quota"
)

// CleanWeekTarget is the number of clean days a week aims for.
const CleanWeekTarget = 6

const weekdaysPerWeek = 5

type Goal struct {
	ID        GoalID
	Current   int
	Target    int
	Completed bool
}

// Percentage is the progress towards Target capped at 100.
func (g Goal) Percentage() float64 {
	return min(ratio(g.Current, g.Target), percent)
}

// WeeklyGoals evaluates the goals of the week containing today, counting Monday up to and including today.
func WeeklyGoals(idx *LogIndex, today time.Time, quota WeeklyQuota) []Goal {
	week := DateRange{Start: StartOfWeek(today), End: Day(today)}
	var clean, fitnessWeekdays, weekdaysSoFar int
	for d := range week.Dates() {
		l := idx.Get(d)
		if IsCleanDay(l) {
			clean++
		}
		if !IsWeekend(d) {
			weekdaysSoFar++
			if HasFitnessActivity(l) {
				fitnessWeekdays++
			}
		}
	}
	got := quota.Count(idx, week.Start)

	return []Goal{
		{
			ID:        GoalCleanWeek,
			Current:   clean,
			Target:    CleanWeekTarget,
			Completed: clean >= CleanWeekTarget,
		},
		{
			ID:        GoalFitnessWeekdays,
			Current:   fitnessWeekdays,
			Target:    min(weekdaysSoFar, weekdaysPerWeek),
			Completed: weekdaysSoFar > 0 && fitnessWeekdays >= weekdaysSoFar,
		},
		{
			ID:        GoalWeightliftingQuota,
			Current:   got.Weightlifting,
			Target:    quota.Weightlifting,
			Completed: got.Weightlifting >= quota.Weightlifting,
		},
		{
			ID:        GoalBasketballQuota,
			Current:   got.BasketballTraining,
			Target:    quota.BasketballTraining,
			Completed: got.BasketballTraining >= quota.BasketballTraining,
		},
	}
}

package habits

import "time"

// StreakState is the persisted streak summary. A zero LastCleanDay or LastFitnessDay means no active streak.
type StreakState struct {
	CurrentStreak        int
	LongestStreak        int
	LastCleanDay         time.Time
	FitnessStreak        int
	LongestFitnessStreak int
	LastFitnessDay       time.Time
}

// Advance returns the state following s given freshly computed streak lengths. Longest streaks never decrease.
func (s StreakState) Advance(clean, fitness int, today time.Time) StreakState {
	next := StreakState{
		CurrentStreak:        clean,
		LongestStreak:        max(s.LongestStreak, clean),
		LastCleanDay:         time.Time{},
		FitnessStreak:        fitness,
		LongestFitnessStreak: max(s.LongestFitnessStreak, fitness),
		LastFitnessDay:       time.Time{},
	}
	if clean > 0 {
		next.LastCleanDay = Day(today)
	}
	if fitness > 0 {
		next.LastFitnessDay = Day(today)
	}
	return next
}

// ComputeStreaks runs the clean meal streak and the fitness streak of strategy over logs and advances prev.
func ComputeStreaks(prev StreakState, logs []DailyLog, strategy FitnessStrategy, today time.Time) StreakState {
	idx := NewLogIndex(logs)
	clean := CleanMealStreak().Count(idx, today)
	fitness := strategy.Rule().Count(idx, today)
	return prev.Advance(clean, fitness, today)
}

package habits

// IsCleanDay reports whether a recorded day has no cheat meals. A missing day is never clean.
func IsCleanDay(l *DailyLog) bool {
	return l != nil && len(l.CheatMeals) == 0
}

// HasFitnessActivity reports whether a recorded day has at least one activity of any kind.
func HasFitnessActivity(l *DailyLog) bool {
	return l != nil && len(l.FitnessActivities) > 0
}

func HasActivity(l *DailyLog, a ActivityType) bool {
	return CountActivities(l, a) > 0
}

func CountActivities(l *DailyLog, a ActivityType) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, f := range l.FitnessActivities {
		if f.Type == a {
			n++
		}
	}
	return n
}

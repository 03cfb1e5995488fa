package habits

import "strconv"

const (
	variableMealsPerDay = 2
	fixedMealsPerDay    = 5
	cheatMealsPerDay    = 2
	percent             = 100
)

type CleanDayStats struct {
	CleanDays  int
	TotalDays  int
	Percentage float64
}

// CleanDays counts the distinct clean dates among logs relative to totalDays.
func CleanDays(logs []DailyLog, totalDays int) CleanDayStats {
	mustNotBeNegative(totalDays)
	clean := make(map[string]struct{})
	for i := range logs {
		if IsCleanDay(&logs[i]) {
			clean[Key(logs[i].Date)] = struct{}{}
		}
	}
	n := min(len(clean), totalDays)
	return CleanDayStats{CleanDays: n, TotalDays: totalDays, Percentage: ratio(n, totalDays)}
}

// Metric is an achieved count against a target. Percentage is not capped and is 0 when Target is 0.
type Metric struct {
	Count      int
	Target     int
	Percentage float64
}

func newMetric(count, target int) Metric {
	return Metric{Count: count, Target: target, Percentage: ratio(count, target)}
}

// Metrics are the five tracked metrics over a number of days.
type Metrics struct {
	Days          int
	VariableMeals Metric
	FixedMeals    Metric
	Weightlifting Metric
	Basketball    Metric
	CheatMeals    Metric
}

// ComputeMetrics aggregates logs, which the caller has already restricted to a range of totalDays days.
func ComputeMetrics(logs []DailyLog, totalDays int) Metrics {
	mustNotBeNegative(totalDays)
	var variable, fixed, cheat int
	lifting := make(map[string]struct{})
	basketball := make(map[string]struct{})
	for i := range logs {
		l := &logs[i]
		variable += len(l.VariableMeals)
		fixed += l.FixedMealCount()
		cheat += len(l.CheatMeals)
		if HasActivity(l, ActivityWeightlifting) {
			lifting[Key(l.Date)] = struct{}{}
		}
		if HasActivity(l, ActivityBasketballTraining) {
			basketball[Key(l.Date)] = struct{}{}
		}
	}
	return Metrics{
		Days:          totalDays,
		VariableMeals: newMetric(variable, variableMealsPerDay*totalDays),
		FixedMeals:    newMetric(fixed, fixedMealsPerDay*totalDays),
		Weightlifting: newMetric(len(lifting), totalDays),
		Basketball:    newMetric(len(basketball), totalDays),
		CheatMeals:    newMetric(cheat, cheatMealsPerDay*totalDays),
	}
}

// FilterRange returns the logs whose date falls within r.
func FilterRange(logs []DailyLog, r DateRange) []DailyLog {
	var filtered []DailyLog
	for _, l := range logs {
		if r.Contains(l.Date) {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// PeriodStats bundles everything the progress view shows for one range.
type PeriodStats struct {
	Range   DateRange
	Clean   CleanDayStats
	Metrics Metrics
	Score   Score
}

func ComputePeriodStats(logs []DailyLog, r DateRange) PeriodStats {
	inRange := FilterRange(logs, r)
	metrics := ComputeMetrics(inRange, r.Days())
	return PeriodStats{
		Range:   r,
		Clean:   CleanDays(inRange, r.Days()),
		Metrics: metrics,
		Score:   ComputeScore(metrics),
	}
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * percent
}

func mustNotBeNegative(totalDays int) {
	if totalDays < 0 {
		panic("habits: negative day count " + strconv.Itoa(totalDays))
	}
}

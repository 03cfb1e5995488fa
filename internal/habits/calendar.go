package habits

import "time"

// DayStatus summarises a day for the calendar view.
type DayStatus struct {
	HasData       bool
	Clean         bool
	VariableMeals int
	FixedMeals    int
	CheatMeals    int
	Activities    int
}

// StatusOf summarises l. A nil log has no data.
func StatusOf(l *DailyLog) DayStatus {
	if l == nil {
		return DayStatus{}
	}
	return DayStatus{
		HasData:       true,
		Clean:         IsCleanDay(l),
		VariableMeals: len(l.VariableMeals),
		FixedMeals:    l.FixedMealCount(),
		CheatMeals:    len(l.CheatMeals),
		Activities:    len(l.FitnessActivities),
	}
}

type CalendarDay struct {
	Date    time.Time
	InMonth bool
	IsToday bool
	Future  bool
	Status  DayStatus
}

// Calendar is a month laid out in Monday-first weeks.
type Calendar struct {
	Month time.Time
	Weeks [][7]CalendarDay
}

// BuildCalendar lays out the month containing month. Leading and trailing days of adjacent months fill the first and
// last week.
func BuildCalendar(idx *LogIndex, month, today time.Time) Calendar {
	first := StartOfMonth(month)
	last := first.AddDate(0, 1, -1)
	today = Day(today)
	cal := Calendar{Month: first, Weeks: nil}
	for weekStart := StartOfWeek(first); !weekStart.After(last); weekStart = weekStart.AddDate(0, 0, 7) {
		cal.Weeks = append(cal.Weeks, calendarWeek(idx, weekStart, first.Month(), today))
	}
	return cal
}

// Week lays out the Monday-first week containing today.
func Week(idx *LogIndex, today time.Time) [7]CalendarDay {
	today = Day(today)
	return calendarWeek(idx, StartOfWeek(today), today.Month(), today)
}

func calendarWeek(idx *LogIndex, weekStart time.Time, month time.Month, today time.Time) [7]CalendarDay {
	var week [7]CalendarDay
	for i := range week {
		d := weekStart.AddDate(0, 0, i)
		week[i] = CalendarDay{
			Date:    d,
			InMonth: d.Month() == month,
			IsToday: d.Equal(today),
			Future:  d.After(today),
			Status:  StatusOf(idx.Get(d)),
		}
	}
	return week
}

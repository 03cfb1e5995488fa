package habits

import (
	"iter"
	"log/slog"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
)

// DateLayout is the ISO calendar date format used for keys, URLs and storage.
const DateLayout = time.DateOnly

const hoursPerDay = 24

var ErrUnknownPeriod = errors.NewSentinel("unknown period")

// Day reduces t to its calendar day in t's own location and returns it as midnight UTC.
//
// Every date in this package is such a civil date, which keeps day arithmetic free of DST surprises.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Key formats the calendar day of t as yyyy-MM-dd.
func Key(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// ParseDate parses a yyyy-MM-dd string into a civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parse date")
	}
	return t, nil
}

// StartOfWeek returns the Monday of t's ISO week.
func StartOfWeek(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7 //nolint:mnd // Monday based weekday index.
	return d.AddDate(0, 0, -offset)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Period is a symbolic selector for a date interval ending today.
type Period string

const (
	PeriodWeek        Period = "week"
	PeriodTwoWeeks    Period = "two_weeks"
	PeriodMonth       Period = "month"
	PeriodThreeMonths Period = "three_months"
	PeriodYear        Period = "year"
)

// Periods lists every period in display order.
func Periods() []Period {
	return []Period{PeriodWeek, PeriodTwoWeeks, PeriodMonth, PeriodThreeMonths, PeriodYear}
}

// ParsePeriod validates an untrusted period token.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", errors.Wrap(ErrUnknownPeriod, "parse period", slog.String("period", s))
}

// DateRange is an inclusive interval of civil dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ResolveRange maps p to the interval ending at the calendar day of today.
//
// It panics on a period outside [Periods] as that can only be a programming error, use [ParsePeriod] for input.
func ResolveRange(p Period, today time.Time) DateRange {
	end := Day(today)
	var start time.Time
	switch p {
	case PeriodWeek:
		start = StartOfWeek(end)
	case PeriodTwoWeeks:
		start = StartOfWeek(end).AddDate(0, 0, -7) //nolint:mnd // one week back.
	case PeriodMonth:
		start = StartOfMonth(end)
	case PeriodThreeMonths:
		// time.Date normalises month underflow into the previous year.
		start = time.Date(end.Year(), end.Month()-2, 1, 0, 0, 0, 0, time.UTC) //nolint:mnd // two months back.
	case PeriodYear:
		start = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		panic("habits: unknown period " + string(p))
	}
	return DateRange{Start: start, End: end}
}

// Days returns the inclusive number of days in r, or 0 if r is inverted.
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(Day(r.End).Sub(Day(r.Start)).Hours()/hoursPerDay) + 1
}

func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// Dates yields every day in r from Start to End.
func (r DateRange) Dates() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for d := Day(r.Start); !d.After(Day(r.End)); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Keys returns the ISO keys of every day in r.
func (r DateRange) Keys() []string {
	keys := make([]string, 0, r.Days())
	for d := range r.Dates() {
		keys = append(keys, Key(d))
	}
	return keys
}

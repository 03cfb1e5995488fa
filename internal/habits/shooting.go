package habits

import (
	"cmp"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
)

// ShotType is a drill of the shooting routine with a fixed number of attempts.
type ShotType struct {
	ID       string
	Name     string
	Emoji    string
	Attempts int
}

// BasketballSession is one completed shooting routine.
type BasketballSession struct {
	ID        int
	Date      time.Time
	Makes     map[string]int // by shot type ID
	Totals    ShotScore
	CreatedAt time.Time
}

type ShotScore struct {
	Makes    int
	Attempts int
	Score    float64
}

// ScoreShots validates makes against catalog and scores them.
//
// Only shot types with at least one make count towards the attempts, so a partially completed routine is scored on
// the drills actually shot.
func ScoreShots(makes map[string]int, catalog []ShotType) (ShotScore, error) {
	var s ShotScore
	for id, n := range makes {
		i := slices.IndexFunc(catalog, func(st ShotType) bool { return st.ID == id })
		if i < 0 {
			return ShotScore{}, errors.Wrap(ErrInvalidInput, "unknown shot type", slog.String("shot_type", id))
		}
		if n < 0 || n > catalog[i].Attempts {
			return ShotScore{}, errors.Wrap(ErrInvalidInput, "makes out of range",
				slog.String("shot_type", id), slog.Int("makes", n), slog.Int("attempts", catalog[i].Attempts))
		}
		if n > 0 {
			s.Makes += n
			s.Attempts += catalog[i].Attempts
		}
	}
	s.Score = round2(ratio(s.Makes, s.Attempts))
	return s, nil
}

// ScoreLevel buckets a shooting percentage for display.
type ScoreLevel string

const (
	ScoreHigh   ScoreLevel = "high"
	ScoreMedium ScoreLevel = "medium"
	ScoreLow    ScoreLevel = "low"
)

func LevelOf(score float64) ScoreLevel {
	switch {
	case score >= 70: //nolint:mnd // display threshold.
		return ScoreHigh
	case score >= 50: //nolint:mnd // display threshold.
		return ScoreMedium
	default:
		return ScoreLow
	}
}

// BestSession returns the session with the highest score. Ties go to the earliest in sessions.
func BestSession(sessions []BasketballSession) (BasketballSession, bool) {
	if len(sessions) == 0 {
		return BasketballSession{}, false
	}
	best := sessions[0]
	for _, s := range sessions[1:] {
		if s.Totals.Score > best.Totals.Score {
			best = s
		}
	}
	return best, true
}

// SessionsForDate returns the sessions on the calendar day of date in their original order.
func SessionsForDate(sessions []BasketballSession, date time.Time) []BasketballSession {
	return sessionsIn(sessions, DateRange{Start: date, End: date})
}

// LatestSessionForDate returns the most recently created session on date. Sessions created within the same
// millisecond are ordered by ID.
func LatestSessionForDate(sessions []BasketballSession, date time.Time) (BasketballSession, bool) {
	onDate := SessionsForDate(sessions, date)
	if len(onDate) == 0 {
		return BasketballSession{}, false
	}
	return slices.MaxFunc(onDate, func(a, b BasketballSession) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}), true
}

// Comparison contrasts the average session score of two ranges.
type Comparison struct {
	Current       float64
	Previous      float64
	CurrentCount  int
	PreviousCount int
	// Improvement is the relative change in percent, 0 without previous sessions.
	Improvement float64
}

func CompareAverages(sessions []BasketballSession, current, previous DateRange) Comparison {
	cur := sessionsIn(sessions, current)
	prev := sessionsIn(sessions, previous)
	c := Comparison{
		Current:       averageScore(cur),
		Previous:      averageScore(prev),
		CurrentCount:  len(cur),
		PreviousCount: len(prev),
		Improvement:   0,
	}
	if c.Previous > 0 {
		c.Improvement = (c.Current - c.Previous) / c.Previous * percent
	}
	return c
}

// ShotStat is the lifetime record of one shot type.
type ShotStat struct {
	Shot              ShotType
	Makes             int
	Attempts          int
	Sessions          int
	Percentage        float64
	AveragePerSession float64
}

// ShotStats aggregates sessions per shot type, strongest first. Shot types never attempted are left out.
func ShotStats(sessions []BasketballSession, catalog []ShotType) []ShotStat {
	var stats []ShotStat
	for _, st := range catalog {
		s := ShotStat{Shot: st, Makes: 0, Attempts: 0, Sessions: 0, Percentage: 0, AveragePerSession: 0}
		for _, session := range sessions {
			if n := session.Makes[st.ID]; n > 0 {
				s.Makes += n
				s.Attempts += st.Attempts
				s.Sessions++
			}
		}
		if s.Sessions == 0 {
			continue
		}
		s.Percentage = ratio(s.Makes, s.Attempts)
		s.AveragePerSession = float64(s.Makes) / float64(s.Sessions)
		stats = append(stats, s)
	}
	slices.SortStableFunc(stats, func(a, b ShotStat) int {
		return cmp.Compare(b.Percentage, a.Percentage)
	})
	return stats
}

// ShotChange is the change of a shot type's percentage between two windows.
type ShotChange struct {
	Shot     ShotType
	Recent   float64
	Previous float64
	Change   float64
}

// progressWindow is the length of the recent and previous window compared by ShotProgress.
const progressWindow = 14

// ShotProgress compares the last two weeks up to today with the two weeks before, most improved first.
//
// It returns nil unless there are at least two sessions and both windows have sessions. Shot types missing from
// either window are left out.
func ShotProgress(sessions []BasketballSession, catalog []ShotType, today time.Time) []ShotChange {
	const minSessions = 2
	if len(sessions) < minSessions {
		return nil
	}
	today = Day(today)
	recentStart := today.AddDate(0, 0, -progressWindow)
	recent := sessionsIn(sessions, DateRange{Start: recentStart, End: today})
	older := sessionsIn(sessions, DateRange{
		Start: recentStart.AddDate(0, 0, -progressWindow),
		End:   recentStart.AddDate(0, 0, -1),
	})
	if len(recent) == 0 || len(older) == 0 {
		return nil
	}

	var changes []ShotChange
	for _, st := range catalog {
		r, rOK := shotPercentage(recent, st)
		o, oOK := shotPercentage(older, st)
		if !rOK || !oOK {
			continue
		}
		changes = append(changes, ShotChange{Shot: st, Recent: r, Previous: o, Change: r - o})
	}
	slices.SortStableFunc(changes, func(a, b ShotChange) int {
		return cmp.Compare(b.Change, a.Change)
	})
	return changes
}

// BasketballReport is the statistics page content.
type BasketballReport struct {
	TotalSessions int
	Best          BasketballSession
	HasBest       bool
	Week          Comparison
	Month         Comparison
	Shots         []ShotStat
	Progress      []ShotChange
}

func BuildBasketballReport(sessions []BasketballSession, catalog []ShotType, today time.Time) BasketballReport {
	today = Day(today)
	weekStart := StartOfWeek(today)
	monthStart := StartOfMonth(today)
	best, hasBest := BestSession(sessions)
	return BasketballReport{
		TotalSessions: len(sessions),
		Best:          best,
		HasBest:       hasBest,
		Week: CompareAverages(sessions,
			DateRange{Start: weekStart, End: today},
			DateRange{Start: weekStart.AddDate(0, 0, -7), End: weekStart.AddDate(0, 0, -1)}), //nolint:mnd // a week.
		Month: CompareAverages(sessions,
			DateRange{Start: monthStart, End: today},
			DateRange{Start: monthStart.AddDate(0, -1, 0), End: monthStart.AddDate(0, 0, -1)}),
		Shots:    ShotStats(sessions, catalog),
		Progress: ShotProgress(sessions, catalog, today),
	}
}

func shotPercentage(sessions []BasketballSession, st ShotType) (float64, bool) {
	var makes, attempts int
	for _, s := range sessions {
		if n := s.Makes[st.ID]; n > 0 {
			makes += n
			attempts += st.Attempts
		}
	}
	if attempts == 0 {
		return 0, false
	}
	return ratio(makes, attempts), true
}

func sessionsIn(sessions []BasketballSession, r DateRange) []BasketballSession {
	var in []BasketballSession
	for _, s := range sessions {
		if r.Contains(s.Date) {
			in = append(in, s)
		}
	}
	return in
}

func averageScore(sessions []BasketballSession) float64 {
	if len(sessions) == 0 {
		return 0
	}
	var sum float64
	for _, s := range sessions {
		sum += s.Totals.Score
	}
	return sum / float64(len(sessions))
}

func round2(f float64) float64 {
	return math.Round(f*percent) / percent
}

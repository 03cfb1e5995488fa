package habits

import "time"

// LogIndex gives constant time access to daily logs by calendar day.
type LogIndex struct {
	byKey    map[string]*DailyLog
	earliest time.Time
}

// NewLogIndex indexes logs by date. When two logs share a date the later one in the slice wins.
func NewLogIndex(logs []DailyLog) *LogIndex {
	idx := &LogIndex{byKey: make(map[string]*DailyLog, len(logs)), earliest: time.Time{}}
	for i := range logs {
		l := &logs[i]
		idx.byKey[Key(l.Date)] = l
		if d := Day(l.Date); idx.earliest.IsZero() || d.Before(idx.earliest) {
			idx.earliest = d
		}
	}
	return idx
}

// Get returns the log for the calendar day of date or nil.
func (idx *LogIndex) Get(date time.Time) *DailyLog {
	return idx.byKey[Key(date)]
}

// Earliest returns the oldest indexed day or the zero time when the index is empty.
func (idx *LogIndex) Earliest() time.Time {
	return idx.earliest
}

func (idx *LogIndex) Len() int {
	return len(idx.byKey)
}

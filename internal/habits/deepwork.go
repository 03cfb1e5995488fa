package habits

import (
	"log/slog"
	"math"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
)

// TaskCompletionTarget is the share of completed tasks in percent considered on target.
const TaskCompletionTarget = 80

type DeepWorkTask struct {
	ID          int
	Date        time.Time
	Title       string
	Completed   bool
	CompletedAt time.Time
	Position    int
}

type TaskCompletion struct {
	Total      int
	Completed  int
	Percentage int
	OnTarget   bool
}

// ComputeTaskCompletion summarises the tasks dated within r.
func ComputeTaskCompletion(tasks []DeepWorkTask, r DateRange) TaskCompletion {
	var c TaskCompletion
	for _, t := range tasks {
		if !r.Contains(t.Date) {
			continue
		}
		c.Total++
		if t.Completed {
			c.Completed++
		}
	}
	c.Percentage = int(math.Round(ratio(c.Completed, c.Total)))
	c.OnTarget = c.Total > 0 && c.Percentage >= TaskCompletionTarget
	return c
}

// DeepWorkTarget is a planned amount of focused work in minutes.
type DeepWorkTarget int

const (
	Target90  DeepWorkTarget = 90
	Target180 DeepWorkTarget = 180
	Target270 DeepWorkTarget = 270
	Target360 DeepWorkTarget = 360
)

func DeepWorkTargets() []DeepWorkTarget {
	return []DeepWorkTarget{Target90, Target180, Target270, Target360}
}

func ParseDeepWorkTarget(minutes int) (DeepWorkTarget, error) {
	for _, t := range DeepWorkTargets() {
		if int(t) == minutes {
			return t, nil
		}
	}
	return 0, errors.Wrap(ErrInvalidInput, "parse deep work target", slog.Int("minutes", minutes))
}

// DeepWorkSession tracks the minutes logged against the target of a day. A zero Target means no target was chosen.
type DeepWorkSession struct {
	Date          time.Time
	Target        DeepWorkTarget
	LoggedMinutes int
}

// Progress is the logged share of the target in percent, capped at 100.
func (s DeepWorkSession) Progress() float64 {
	return min(ratio(s.LoggedMinutes, int(s.Target)), percent)
}

func (s DeepWorkSession) Remaining() int {
	return max(0, int(s.Target)-s.LoggedMinutes)
}

// LogMinutes adds minutes to the session. The total never drops below zero.
func (s *DeepWorkSession) LogMinutes(minutes int) {
	s.LoggedMinutes = max(0, s.LoggedMinutes+minutes)
}

package habits

import (
	"log/slog"
	"slices"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
)

// ActivityType names a kind of fitness activity.
type ActivityType string

const (
	ActivityWeightlifting      ActivityType = "weightlifting"
	ActivityBasketballPickup   ActivityType = "basketball_pickup"
	ActivityBasketballTraining ActivityType = "basketball_training"
)

// ToggleableActivities are the activities a user can switch on and off on the tracking page.
// Basketball training is only recorded by completing a shooting session.
func ToggleableActivities() []ActivityType {
	return []ActivityType{ActivityWeightlifting, ActivityBasketballPickup}
}

// MaxVariableMealsPerDay caps how many variable meals a single day may record.
const MaxVariableMealsPerDay = 2

var (
	ErrVariableMealLimit = errors.NewSentinel("variable meal limit reached")
	ErrUnknownActivity   = errors.NewSentinel("unknown activity")
	ErrInvalidInput      = errors.NewSentinel("invalid input")
)

func ParseActivityType(s string) (ActivityType, error) {
	switch a := ActivityType(s); a {
	case ActivityWeightlifting, ActivityBasketballPickup, ActivityBasketballTraining:
		return a, nil
	default:
		return "", errors.Wrap(ErrUnknownActivity, "parse activity", slog.String("activity", s))
	}
}

type CheatMeal struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji,omitempty"`
}

type FitnessActivity struct {
	Type      ActivityType `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
}

// DailyLog is everything recorded for one calendar day.
type DailyLog struct {
	Date              time.Time
	VariableMeals     []string
	FixedMeals        map[string]bool
	CheatMeals        []CheatMeal
	FitnessActivities []FitnessActivity
}

// NewDailyLog returns an empty log for the calendar day of date.
func NewDailyLog(date time.Time) DailyLog {
	return DailyLog{
		Date:              Day(date),
		VariableMeals:     []string{},
		FixedMeals:        map[string]bool{},
		CheatMeals:        []CheatMeal{},
		FitnessActivities: []FitnessActivity{},
	}
}

// ToggleVariableMeal adds mealID to the day or removes it if already present.
func (l *DailyLog) ToggleVariableMeal(mealID string) error {
	if i := slices.Index(l.VariableMeals, mealID); i >= 0 {
		l.VariableMeals = slices.Delete(l.VariableMeals, i, i+1)
		return nil
	}
	if len(l.VariableMeals) >= MaxVariableMealsPerDay {
		return errors.Wrap(ErrVariableMealLimit, "toggle variable meal", slog.String("meal_id", mealID))
	}
	l.VariableMeals = append(l.VariableMeals, mealID)
	return nil
}

func (l *DailyLog) ToggleFixedMeal(mealID string) {
	if l.FixedMeals == nil {
		l.FixedMeals = map[string]bool{}
	}
	l.FixedMeals[mealID] = !l.FixedMeals[mealID]
}

// FixedMealCount counts the fixed meals marked as eaten.
func (l *DailyLog) FixedMealCount() int {
	n := 0
	for _, eaten := range l.FixedMeals {
		if eaten {
			n++
		}
	}
	return n
}

func (l *DailyLog) AddCheatMeal(meal CheatMeal) error {
	if meal.Name == "" {
		return errors.Wrap(ErrInvalidInput, "cheat meal name is empty")
	}
	l.CheatMeals = append(l.CheatMeals, meal)
	return nil
}

func (l *DailyLog) RemoveCheatMeal(index int) error {
	if index < 0 || index >= len(l.CheatMeals) {
		return errors.Wrap(ErrInvalidInput, "cheat meal index out of range", slog.Int("index", index))
	}
	l.CheatMeals = slices.Delete(l.CheatMeals, index, index+1)
	return nil
}

// ToggleActivity removes every activity of type a or adds one stamped at now.
func (l *DailyLog) ToggleActivity(a ActivityType, now time.Time) {
	if HasActivity(l, a) {
		l.FitnessActivities = slices.DeleteFunc(l.FitnessActivities, func(f FitnessActivity) bool {
			return f.Type == a
		})
		return
	}
	l.FitnessActivities = append(l.FitnessActivities, FitnessActivity{Type: a, Timestamp: now})
}

// AddActivityOnce records a unless the day already has it. It reports whether the log changed.
func (l *DailyLog) AddActivityOnce(a ActivityType, now time.Time) bool {
	if HasActivity(l, a) {
		return false
	}
	l.FitnessActivities = append(l.FitnessActivities, FitnessActivity{Type: a, Timestamp: now})
	return true
}

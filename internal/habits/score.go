package habits

import "math"

// Targets are the percentages at which a metric earns its full score.
type Targets struct {
	VariableMeals float64
	FixedMeals    float64
	Weightlifting float64
	Basketball    float64
	CheatMeals    float64
}

// Weights of each metric in the total. They sum to 1.
type Weights struct {
	VariableMeals float64
	FixedMeals    float64
	Weightlifting float64
	Basketball    float64
	CheatMeals    float64
}

//nolint:gochecknoglobals // read-only defaults.
var (
	DefaultTargets = Targets{
		VariableMeals: 85,
		FixedMeals:    85,
		Weightlifting: 42,
		Basketball:    28,
		CheatMeals:    21.4,
	}
	DefaultWeights = Weights{
		VariableMeals: 0.25,
		FixedMeals:    0.25,
		Weightlifting: 0.20,
		Basketball:    0.15,
		CheatMeals:    0.15,
	}
)

// Score holds per metric scores in [0, 100] and their weighted Total.
type Score struct {
	VariableMeals float64
	FixedMeals    float64
	Weightlifting float64
	Basketball    float64
	CheatMeals    float64
	Total         float64
}

// ComputeScore scores m against [DefaultTargets] weighted by [DefaultWeights].
func ComputeScore(m Metrics) Score {
	return ComputeScoreWith(m, DefaultTargets, DefaultWeights)
}

func ComputeScoreWith(m Metrics, t Targets, w Weights) Score {
	s := Score{
		VariableMeals: positiveScore(m.VariableMeals.Percentage, t.VariableMeals),
		FixedMeals:    positiveScore(m.FixedMeals.Percentage, t.FixedMeals),
		Weightlifting: positiveScore(m.Weightlifting.Percentage, t.Weightlifting),
		Basketball:    positiveScore(m.Basketball.Percentage, t.Basketball),
		CheatMeals:    cheatScore(m.CheatMeals.Percentage, t.CheatMeals),
		Total:         0,
	}
	s.Total = s.VariableMeals*w.VariableMeals +
		s.FixedMeals*w.FixedMeals +
		s.Weightlifting*w.Weightlifting +
		s.Basketball*w.Basketball +
		s.CheatMeals*w.CheatMeals
	return s
}

// Rounded rounds every component to the nearest integer for display.
func (s Score) Rounded() Score {
	return Score{
		VariableMeals: math.Round(s.VariableMeals),
		FixedMeals:    math.Round(s.FixedMeals),
		Weightlifting: math.Round(s.Weightlifting),
		Basketball:    math.Round(s.Basketball),
		CheatMeals:    math.Round(s.CheatMeals),
		Total:         math.Round(s.Total),
	}
}

func positiveScore(pct, target float64) float64 {
	return min(percent, pct/target*percent)
}

// cheatScore halves the score at target and reaches 0 at twice the target.
func cheatScore(pct, target float64) float64 {
	const penalty = 50
	return max(0, percent-pct/target*penalty)
}

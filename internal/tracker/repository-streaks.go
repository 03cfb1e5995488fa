package tracker

import (
	"context"
	"database/sql"

	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
)

type streakRepository struct {
	baseRepository
}

// Get returns the stored streak state or ErrNotFound before the first refresh.
func (r *streakRepository) Get(ctx context.Context) (habits.StreakState, error) {
	var (
		s                      habits.StreakState
		lastClean, lastFitness sql.NullString
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `SELECT current_streak,
       longest_streak,
       last_clean_day,
       fitness_streak,
       longest_fitness_streak,
       last_fitness_day
FROM streaks
WHERE user_id = ?`, contexthelpers.AuthenticatedUserID(ctx)).Scan(
		&s.CurrentStreak, &s.LongestStreak, &lastClean, &s.FitnessStreak, &s.LongestFitnessStreak, &lastFitness)
	if errors.Is(err, sql.ErrNoRows) {
		return habits.StreakState{}, ErrNotFound
	}
	if err != nil {
		return habits.StreakState{}, errors.Wrap(err, "query streaks")
	}
	if s.LastCleanDay, err = parseNullDate(lastClean); err != nil {
		return habits.StreakState{}, err
	}
	if s.LastFitnessDay, err = parseNullDate(lastFitness); err != nil {
		return habits.StreakState{}, err
	}
	return s, nil
}

// Set stores s, replacing any previous state.
func (r *streakRepository) Set(ctx context.Context, s habits.StreakState) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `INSERT INTO streaks (user_id,
                     current_streak,
                     longest_streak,
                     last_clean_day,
                     fitness_streak,
                     longest_fitness_streak,
                     last_fitness_day)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET current_streak         = excluded.current_streak,
                                    longest_streak         = excluded.longest_streak,
                                    last_clean_day         = excluded.last_clean_day,
                                    fitness_streak         = excluded.fitness_streak,
                                    longest_fitness_streak = excluded.longest_fitness_streak,
                                    last_fitness_day       = excluded.last_fitness_day,
                                    updated                = STRFTIME('%Y-%m-%dT%H:%M:%fZ')`,
		contexthelpers.AuthenticatedUserID(ctx),
		s.CurrentStreak,
		s.LongestStreak,
		nullDate(s.LastCleanDay),
		s.FitnessStreak,
		s.LongestFitnessStreak,
		nullDate(s.LastFitnessDay),
	)
	if err != nil {
		return errors.Wrap(err, "upsert streaks")
	}
	return nil
}

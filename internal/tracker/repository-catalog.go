package tracker

import (
	"context"
	"database/sql"

	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
)

// Meal is a catalog entry of the tracking page.
type Meal struct {
	ID    string
	Name  string
	Emoji string
	// WeeklyServings is the planned number of servings a week, only set for variable meals.
	WeeklyServings int
}

// catalogRepository reads the static catalogs loaded from fixtures. They are shared by all users.
type catalogRepository struct {
	baseRepository
}

func (r *catalogRepository) VariableMeals(ctx context.Context) ([]Meal, error) {
	return queryList(ctx, r.db.ReadOnly,
		`SELECT id, name, emoji, weekly_servings FROM variable_meals ORDER BY position`,
		func(s scanner) (Meal, error) {
			var m Meal
			err := s.Scan(&m.ID, &m.Name, &m.Emoji, &m.WeeklyServings)
			return m, err //nolint:wrapcheck // wrapped by queryList.
		})
}

func (r *catalogRepository) FixedMeals(ctx context.Context) ([]Meal, error) {
	return queryList(ctx, r.db.ReadOnly,
		`SELECT id, name, emoji FROM fixed_meals ORDER BY position`,
		func(s scanner) (Meal, error) {
			var m Meal
			err := s.Scan(&m.ID, &m.Name, &m.Emoji)
			return m, err //nolint:wrapcheck // wrapped by queryList.
		})
}

func (r *catalogRepository) ShotTypes(ctx context.Context) ([]habits.ShotType, error) {
	return queryList(ctx, r.db.ReadOnly,
		`SELECT id, name, emoji, attempts FROM shot_types ORDER BY position`,
		func(s scanner) (habits.ShotType, error) {
			var st habits.ShotType
			err := s.Scan(&st.ID, &st.Name, &st.Emoji, &st.Attempts)
			return st, err //nolint:wrapcheck // wrapped by queryList.
		})
}

// queryList runs query and scans every row with scan.
func queryList[T any](
	ctx context.Context,
	db *sql.DB,
	query string,
	scan func(scanner) (T, error),
	args ...any,
) (_ []T, err error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer closeRows(rows, &err)
	var list []T
	for rows.Next() {
		var item T
		if item, err = scan(rows); err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		list = append(list, item)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate")
	}
	return list, nil
}

package main

import (
	"net/http"

	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/habits"
	"golang.org/x/sync/errgroup"
)

type homeTemplateData struct {
	BaseTemplateData
	Streaks habits.StreakState
	// StreaksStale is set when the refreshed streaks could not be stored and the previous state is shown.
	StreaksStale bool
	// Days is the current week, Monday first.
	Days [7]habits.CalendarDay
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Streaks:          habits.StreakState{},
		StreaksStale:     false,
		Days:             [7]habits.CalendarDay{},
	}

	if data.Authenticated {
		today := contexthelpers.Today(r.Context())
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			data.Streaks, data.StreaksStale, err = app.tracker.RefreshStreaks(ctx, today)
			return err
		})
		g.Go(func() error {
			var err error
			data.Days, err = app.tracker.Week(ctx, today)
			return err
		})
		if err := g.Wait(); err != nil {
			app.serverError(w, r, err)
			return
		}
	}

	app.render(w, r, http.StatusOK, "home", data)
}

package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/habits"
	"github.com/myrjola/habitapp/internal/tracker"
)

type progressTemplateData struct {
	BaseTemplateData
	Progress tracker.Progress
	Periods  []habits.Period
}

// periodFromQuery reads the ?range selector. Missing or unknown values select the current week.
func (app *application) periodFromQuery(r *http.Request) habits.Period {
	raw := r.URL.Query().Get("range")
	if raw == "" {
		return habits.PeriodWeek
	}
	period, err := habits.ParsePeriod(raw)
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "falling back to week", slog.String("range", raw))
		return habits.PeriodWeek
	}
	return period
}

func (app *application) progressGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	progress, err := app.tracker.Progress(ctx, app.periodFromQuery(r), contexthelpers.Today(ctx))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data := progressTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Progress:         progress,
		Periods:          habits.Periods(),
	}
	app.render(w, r, http.StatusOK, "progress", data)
}

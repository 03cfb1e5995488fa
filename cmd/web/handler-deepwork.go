package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
	"github.com/myrjola/habitapp/internal/tracker"
)

type deepWorkTemplateData struct {
	BaseTemplateData
	dayNav
	Day     tracker.DeepWorkDay
	Targets []habits.DeepWorkTarget
}

func (app *application) deepWorkGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	day, err := app.tracker.DeepWorkDay(r.Context(), date)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data := deepWorkTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		dayNav:           newDayNav(r, date),
		Day:              day,
		Targets:          habits.DeepWorkTargets(),
	}
	app.render(w, r, http.StatusOK, "deep-work", data)
}

type deepWorkStatsTemplateData struct {
	BaseTemplateData
	dayNav
	Stats   tracker.DeepWorkStats
	Periods []habits.Period
	Target  int
}

func (app *application) deepWorkStatsGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	stats, err := app.tracker.DeepWorkStats(r.Context(), app.periodFromQuery(r), contexthelpers.Today(r.Context()))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data := deepWorkStatsTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		dayNav:           newDayNav(r, date),
		Stats:            stats,
		Periods:          habits.Periods(),
		Target:           habits.TaskCompletionTarget,
	}
	app.render(w, r, http.StatusOK, "deep-work-stats", data)
}

// deepWorkMutation parses the date, applies mutate and returns to the deep work page of the date.
func (app *application) deepWorkMutation(
	w http.ResponseWriter,
	r *http.Request,
	mutate func(date time.Time) error,
) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	if err := mutate(date); err != nil {
		app.handleError(w, r, err)
		return
	}
	redirect(w, r, "/deep-work/"+habits.Key(date))
}

// deepWorkTaskMutation additionally parses the task id path parameter.
func (app *application) deepWorkTaskMutation(
	w http.ResponseWriter,
	r *http.Request,
	mutate func(id int) error,
) {
	id, ok := app.parseIntParam(w, r, "id")
	if !ok {
		return
	}
	app.deepWorkMutation(w, r, func(time.Time) error {
		return mutate(id)
	})
}

func formInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue(name)))
	if err != nil {
		return 0, errors.Wrap(tracker.ErrInvalidInput, "form value is not a number")
	}
	return n, nil
}

func (app *application) deepWorkTaskAddPOST(w http.ResponseWriter, r *http.Request) {
	app.deepWorkMutation(w, r, func(date time.Time) error {
		_, err := app.tracker.AddTask(r.Context(), date, r.PostFormValue("title"))
		return err
	})
}

func (app *application) deepWorkTaskTogglePOST(w http.ResponseWriter, r *http.Request) {
	app.deepWorkTaskMutation(w, r, func(id int) error {
		return app.tracker.ToggleTask(r.Context(), id)
	})
}

func (app *application) deepWorkTaskUpdatePOST(w http.ResponseWriter, r *http.Request) {
	app.deepWorkTaskMutation(w, r, func(id int) error {
		return app.tracker.RenameTask(r.Context(), id, r.PostFormValue("title"))
	})
}

func (app *application) deepWorkTaskMovePOST(w http.ResponseWriter, r *http.Request) {
	app.deepWorkTaskMutation(w, r, func(id int) error {
		var up bool
		switch r.FormValue("direction") {
		case "up":
			up = true
		case "down":
		default:
			return errors.Wrap(tracker.ErrInvalidInput, "unknown move direction")
		}
		return app.tracker.MoveTask(r.Context(), id, up)
	})
}

func (app *application) deepWorkTaskDeletePOST(w http.ResponseWriter, r *http.Request) {
	app.deepWorkTaskMutation(w, r, func(id int) error {
		return app.tracker.DeleteTask(r.Context(), id)
	})
}

func (app *application) deepWorkTargetPOST(w http.ResponseWriter, r *http.Request) {
	app.deepWorkMutation(w, r, func(date time.Time) error {
		minutes, err := formInt(r, "target")
		if err != nil {
			return err
		}
		return app.tracker.SetTarget(r.Context(), date, minutes)
	})
}

func (app *application) deepWorkMinutesPOST(w http.ResponseWriter, r *http.Request) {
	app.deepWorkMutation(w, r, func(date time.Time) error {
		minutes, err := formInt(r, "minutes")
		if err != nil {
			return err
		}
		return app.tracker.LogMinutes(r.Context(), date, minutes)
	})
}

func (app *application) deepWorkNotePOST(w http.ResponseWriter, r *http.Request) {
	app.deepWorkMutation(w, r, func(date time.Time) error {
		return app.tracker.SaveNote(r.Context(), date, r.PostFormValue("note"))
	})
}

package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
	"github.com/myrjola/habitapp/internal/tracker"
)

// makesFieldPrefix prefixes the form field carrying the makes of a shot type, e.g. "makes_midrange_cs".
const makesFieldPrefix = "makes_"

type basketballTemplateData struct {
	BaseTemplateData
	dayNav
	Day tracker.BasketballDay
}

func (app *application) basketballGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	day, err := app.tracker.BasketballDay(r.Context(), date)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data := basketballTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		dayNav:           newDayNav(r, date),
		Day:              day,
	}
	app.render(w, r, http.StatusOK, "basketball", data)
}

// parseMakes collects the makes_<shot type> fields. Blank fields count as zero makes and are left out.
func parseMakes(r *http.Request) (map[string]int, error) {
	if err := r.ParseForm(); err != nil {
		return nil, errors.Wrap(err, "parse form")
	}
	makes := make(map[string]int)
	for field, values := range r.PostForm {
		shotID, found := strings.CutPrefix(field, makesFieldPrefix)
		if !found || len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(values[0]))
		if err != nil {
			return nil, errors.Wrap(tracker.ErrInvalidInput, "makes is not a number", slog.String("field", field))
		}
		makes[shotID] = n
	}
	return makes, nil
}

func (app *application) basketballCompletePOST(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	makes, err := parseMakes(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if _, err = app.tracker.CompleteBasketballSession(r.Context(), date, makes); err != nil {
		app.handleError(w, r, err)
		return
	}
	redirect(w, r, "/basketball/"+habits.Key(date))
}

type basketballStatsTemplateData struct {
	BaseTemplateData
	Today  time.Time
	Report habits.BasketballReport
}

func (app *application) basketballStatsGET(w http.ResponseWriter, r *http.Request) {
	today := contexthelpers.Today(r.Context())
	report, err := app.tracker.BasketballReport(r.Context(), today)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data := basketballStatsTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Today:            today,
		Report:           report,
	}
	app.render(w, r, http.StatusOK, "basketball-stats", data)
}

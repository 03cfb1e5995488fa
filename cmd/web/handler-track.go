package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/habits"
	"github.com/myrjola/habitapp/internal/tracker"
)

// dayNav links a day page to its neighbours.
type dayNav struct {
	Date     time.Time
	DateKey  string
	Previous string
	Next     string
	IsToday  bool
}

func newDayNav(r *http.Request, date time.Time) dayNav {
	return dayNav{
		Date:     date,
		DateKey:  habits.Key(date),
		Previous: habits.Key(date.AddDate(0, 0, -1)),
		Next:     habits.Key(date.AddDate(0, 0, 1)),
		IsToday:  date.Equal(contexthelpers.Today(r.Context())),
	}
}

type trackTemplateData struct {
	BaseTemplateData
	dayNav
	Day           tracker.Day
	MaxVariable   int
	CheatMealsMax int
}

func (app *application) trackGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	day, err := app.tracker.Day(r.Context(), date)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data := trackTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		dayNav:           newDayNav(r, date),
		Day:              day,
		MaxVariable:      habits.MaxVariableMealsPerDay,
		CheatMealsMax:    maxCheatMealNameLength,
	}
	app.render(w, r, http.StatusOK, "track", data)
}

// trackMutation parses the date, applies mutate and returns to the tracking page of the date.
func (app *application) trackMutation(
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
	redirect(w, r, "/track/"+habits.Key(date))
}

func (app *application) trackVariableMealTogglePOST(w http.ResponseWriter, r *http.Request) {
	app.trackMutation(w, r, func(date time.Time) error {
		return app.tracker.ToggleVariableMeal(r.Context(), date, r.PathValue("id"))
	})
}

func (app *application) trackFixedMealTogglePOST(w http.ResponseWriter, r *http.Request) {
	app.trackMutation(w, r, func(date time.Time) error {
		return app.tracker.ToggleFixedMeal(r.Context(), date, r.PathValue("id"))
	})
}

const maxCheatMealNameLength = 100

func (app *application) trackCheatMealAddPOST(w http.ResponseWriter, r *http.Request) {
	app.trackMutation(w, r, func(date time.Time) error {
		name := strings.TrimSpace(r.PostFormValue("name"))
		if len([]rune(name)) > maxCheatMealNameLength {
			name = string([]rune(name)[:maxCheatMealNameLength])
		}
		meal := habits.CheatMeal{Name: name, Emoji: strings.TrimSpace(r.PostFormValue("emoji"))}
		return app.tracker.AddCheatMeal(r.Context(), date, meal)
	})
}

func (app *application) trackCheatMealDeletePOST(w http.ResponseWriter, r *http.Request) {
	index, ok := app.parseIntParam(w, r, "index")
	if !ok {
		return
	}
	app.trackMutation(w, r, func(date time.Time) error {
		return app.tracker.RemoveCheatMeal(r.Context(), date, index)
	})
}

func (app *application) trackFitnessTogglePOST(w http.ResponseWriter, r *http.Request) {
	app.trackMutation(w, r, func(date time.Time) error {
		activity, err := habits.ParseActivityType(r.PathValue("activity"))
		if err != nil {
			return err
		}
		return app.tracker.ToggleFitnessActivity(r.Context(), date, activity)
	})
}

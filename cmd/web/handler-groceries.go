package main

import (
	"net/http"

	"github.com/myrjola/habitapp/internal/tracker"
)

type groceriesTemplateData struct {
	BaseTemplateData
	List tracker.GroceryList
}

func (app *application) groceriesGET(w http.ResponseWriter, r *http.Request) {
	list, err := app.tracker.Groceries(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data := groceriesTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		List:             list,
	}
	app.render(w, r, http.StatusOK, "groceries", data)
}

func (app *application) groceryTogglePOST(w http.ResponseWriter, r *http.Request) {
	if err := app.tracker.ToggleGroceryItem(r.Context(), r.PathValue("key")); err != nil {
		app.handleError(w, r, err)
		return
	}
	redirect(w, r, "/groceries")
}

func (app *application) groceriesResetPOST(w http.ResponseWriter, r *http.Request) {
	if err := app.tracker.ResetGroceries(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	redirect(w, r, "/groceries")
}

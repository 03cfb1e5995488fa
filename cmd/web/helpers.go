package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
	"github.com/myrjola/habitapp/internal/tracker"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.render(w, r, http.StatusInternalServerError, "error", newBaseTemplateData(r))
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusNotFound, "not-found", newBaseTemplateData(r))
}

// handleError maps rejected input to 422 Unprocessable Entity and missing records to 404 Not Found. Anything else is a
// server error.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tracker.ErrInvalidInput), errors.Is(err, habits.ErrVariableMealLimit):
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "rejected input", errors.SlogError(err))
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
	case errors.Is(err, tracker.ErrNotFound), errors.Is(err, habits.ErrUnknownActivity):
		app.notFound(w, r)
	default:
		app.serverError(w, r, err)
	}
}

// redirect detects if the request is originating from a fetch API call or a top-level navigation and points the user
// to the correct URL.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("Sec-Fetch-Dest") == "empty" {
		w.Header().Set("Content-Location", path)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, path, http.StatusSeeOther)
}

// parseDateParam parses the "date" path parameter. On failure it responds with the not found page and returns false.
func (app *application) parseDateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	date, err := habits.ParseDate(r.PathValue("date"))
	if err != nil {
		app.notFound(w, r)
		return time.Time{}, false
	}
	return date, true
}

// parseIntParam parses the integer path parameter name. On failure it responds with the not found page and returns
// false.
func (app *application) parseIntParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil || n < 0 {
		app.notFound(w, r)
		return 0, false
	}
	return n, true
}

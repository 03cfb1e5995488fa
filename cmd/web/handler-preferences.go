package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/errors"
)

type preferencesTemplateData struct {
	BaseTemplateData
	Timezone string
}

func (app *application) preferencesGET(w http.ResponseWriter, r *http.Request) {
	data := preferencesTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Timezone:         contexthelpers.Location(r.Context()).String(),
	}
	app.render(w, r, http.StatusOK, "preferences", data)
}

// timezonePOST stores the IANA timezone deciding the caller's current day.
func (app *application) timezonePOST(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PostFormValue("timezone"))
	if _, err := time.LoadLocation(name); err != nil || name == "" || name == "Local" {
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "rejected timezone", slog.String("timezone", name))
		http.Error(w, "Invalid timezone", http.StatusBadRequest)
		return
	}
	setPreferenceCookie(w, timezoneCookie, name)
	redirect(w, r, "/preferences")
}

func (app *application) deleteUserPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := app.webAuthnHandler.DeleteUser(ctx); err != nil {
		app.serverError(w, r, errors.Wrap(err, "delete user"))
		return
	}
	if err := app.webAuthnHandler.Logout(ctx); err != nil {
		app.serverError(w, r, errors.Wrap(err, "logout after user deletion"))
		return
	}
	redirect(w, r, "/")
}

// exportUserDataGET streams a SQLite database holding only the caller's rows.
func (app *application) exportUserDataGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dir, err := os.MkdirTemp("", "habitapp-export-")
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "create export dir"))
		return
	}
	defer func() {
		if removeErr := os.RemoveAll(dir); removeErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "remove export dir failed",
				errors.SlogError(errors.Wrap(removeErr, "remove export dir", slog.String("dir", dir))))
		}
	}()

	exportPath, err := app.exporter.ExportUserData(ctx, contexthelpers.AuthenticatedUserID(ctx), dir)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "export user data"))
		return
	}
	file, err := os.Open(exportPath)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "open export file"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	w.Header().Set("Content-Type", "application/x-sqlite3")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(exportPath)+`"`)
	if _, err = io.Copy(w, file); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "stream export failed",
			errors.SlogError(errors.Wrap(err, "copy export", slog.String("path", exportPath))))
	}
}

package main

import (
	"net/http"
	"strings"

	"github.com/myrjola/habitapp/internal/i18n"
)

const (
	secondsPerMinute = 60
	minutesPerHour   = 60
	hoursPerDay      = 24
	daysPerYear      = 365
)

// isRelativePath checks if a path is a relative path without scheme or host and doesn't allow ambiguous slashes.
func isRelativePath(path string) bool {
	if strings.Contains(path, "://") || strings.HasPrefix(path, "//") {
		return false
	}
	// Accept paths that start with /, but not if the second character is / or \.
	if strings.HasPrefix(path, "/") {
		if len(path) == 1 || (path[1] != '/' && path[1] != '\\') {
			return true
		}
	}
	return false
}

// returnPath is the page a preference form should go back to. Only relative paths are accepted to prevent open
// redirects.
func returnPath(r *http.Request) string {
	if p := r.PostFormValue("return_to"); isRelativePath(p) {
		return p
	}
	return "/"
}

// setPreferenceCookie stores a long-lived preference readable by localeContext.
func setPreferenceCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{ //nolint:exhaustruct // defaults are fine for the rest.
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   daysPerYear * hoursPerDay * minutesPerHour * secondsPerMinute,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// setLanguagePOST handles the POST request to set the user's language preference.
func (app *application) setLanguagePOST(w http.ResponseWriter, r *http.Request) {
	lang := r.PostFormValue("language")
	if !i18n.IsSupported(i18n.Language(lang)) {
		http.Error(w, "Invalid language", http.StatusBadRequest)
		return
	}

	setPreferenceCookie(w, languageCookie, lang)

	// 303 See Other turns the POST into a GET.
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

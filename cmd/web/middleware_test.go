package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/i18n"
)

func Test_application_timeout(t *testing.T) {
	tests := []struct {
		name     string
		sleep    time.Duration
		timesOut bool
	}{
		{name: "completes within timeout", sleep: 500 * time.Millisecond, timesOut: false},
		{name: "times out", sleep: 3 * time.Second, timesOut: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				app := &application{ //nolint:exhaustruct // only the logger is needed.
					logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
				}
				handler := app.timeout(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					select {
					case <-time.After(tt.sleep):
						w.WriteHeader(http.StatusOK)
					case <-r.Context().Done():
					}
				}))
				w := httptest.NewRecorder()

				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

				if tt.timesOut {
					if w.Code != http.StatusServiceUnavailable {
						t.Errorf("Expected status 503 on timeout, got %d", w.Code)
					}
					if !strings.Contains(w.Body.String(), "Timeout") {
						t.Errorf("Expected timeout message in response body, got: %s", w.Body.String())
					}
				} else if w.Code != http.StatusOK {
					t.Errorf("Expected status 200, got %d", w.Code)
				}
			})
		})
	}
}

func Test_application_localeContext(t *testing.T) {
	helsinki, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Fatalf("Failed to load location: %v", err)
	}
	app := &application{ //nolint:exhaustruct // only the locale dependencies are needed.
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultLocation: helsinki,
	}

	tests := []struct {
		name     string
		cookies  []*http.Cookie
		wantLang i18n.Language
		wantLoc  string
	}{
		{
			name:     "defaults",
			cookies:  nil,
			wantLang: i18n.English,
			wantLoc:  "Europe/Helsinki",
		},
		{
			name: "cookies",
			cookies: []*http.Cookie{
				{Name: languageCookie, Value: "es"},           //nolint:exhaustruct // test cookie.
				{Name: timezoneCookie, Value: "America/Lima"}, //nolint:exhaustruct // test cookie.
			},
			wantLang: i18n.Spanish,
			wantLoc:  "America/Lima",
		},
		{
			name: "invalid cookies are ignored",
			cookies: []*http.Cookie{
				{Name: languageCookie, Value: "xx"},           //nolint:exhaustruct // test cookie.
				{Name: timezoneCookie, Value: "Mars/Olympus"}, //nolint:exhaustruct // test cookie.
			},
			wantLang: i18n.English,
			wantLoc:  "Europe/Helsinki",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				gotLang i18n.Language
				gotLoc  string
			)
			handler := app.localeContext(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				gotLang = contexthelpers.Language(r.Context())
				gotLoc = contexthelpers.Location(r.Context()).String()
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, c := range tt.cookies {
				req.AddCookie(c)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			if gotLang != tt.wantLang {
				t.Errorf("language = %q, want %q", gotLang, tt.wantLang)
			}
			if gotLoc != tt.wantLoc {
				t.Errorf("location = %q, want %q", gotLoc, tt.wantLoc)
			}
		})
	}
}

func Test_isRelativePath(t *testing.T) {
	tests := map[string]bool{
		"/":                    true,
		"/track/2024-03-05":    true,
		"//evil.example":       false,
		"/\\evil.example":      false,
		"https://evil.example": false,
		"track":                false,
	}
	for path, want := range tests {
		if got := isRelativePath(path); got != want {
			t.Errorf("isRelativePath(%q) = %v, want %v", path, got, want)
		}
	}
}

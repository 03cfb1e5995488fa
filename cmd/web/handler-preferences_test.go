package main

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/habitapp/internal/e2etest"
	"github.com/myrjola/habitapp/internal/testhelpers"
)

func Test_application_preferences(t *testing.T) {
	var (
		ctx = t.Context()
		doc *goquery.Document
	)
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	t.Run("Requires authentication", func(t *testing.T) {
		resp, getErr := client.Get(ctx, "/preferences")
		if getErr != nil {
			t.Fatalf("Failed to get preferences: %v", getErr)
		}
		_ = resp.Body.Close()
		if got, want := resp.Request.URL.Path, "/"; got != want {
			t.Errorf("Expected redirect to %q, got %q", want, got)
		}
	})

	if _, err = client.Register(ctx); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	t.Run("Default timezone", func(t *testing.T) {
		doc, err = client.GetDoc(ctx, "/preferences")
		if err != nil {
			t.Fatalf("Failed to get preferences: %v", err)
		}
		if got, _ := doc.Find("#timezone-input").Attr("value"); got != "UTC" {
			t.Errorf("Expected UTC, got %q", got)
		}
	})

	t.Run("Change timezone", func(t *testing.T) {
		doc, err = client.SubmitForm(ctx, doc, "/preferences/timezone", map[string]string{"Timezone": "Pacific/Kiritimati"})
		if err != nil {
			t.Fatalf("Failed to change timezone: %v", err)
		}
		if got, _ := doc.Find("#timezone-input").Attr("value"); got != "Pacific/Kiritimati" {
			t.Errorf("Expected Pacific/Kiritimati, got %q", got)
		}
		_, err = client.SubmitForm(ctx, doc, "/preferences/timezone", map[string]string{"Timezone": "Mars/Olympus"})
		if !containsStatusError(err, 400) {
			t.Errorf("Expected 400 for an unknown timezone, got %v", err)
		}
	})

	t.Run("Export data", func(t *testing.T) {
		trackDoc, getErr := client.GetDoc(ctx, "/track/2024-03-05")
		if getErr != nil {
			t.Fatalf("Failed to get track page: %v", getErr)
		}
		if _, err = client.SubmitForm(ctx, trackDoc, "/track/2024-03-05/fixed-meals/banana/toggle", nil); err != nil {
			t.Fatalf("Failed to toggle meal: %v", err)
		}

		resp, getErr := client.Get(ctx, "/preferences/export-data")
		if getErr != nil {
			t.Fatalf("Failed to export: %v", getErr)
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		if got := resp.Header.Get("Content-Type"); got != "application/x-sqlite3" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "attachment") {
			t.Errorf("Content-Disposition = %q", got)
		}
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			t.Fatalf("Failed to read export: %v", readErr)
		}
		if !bytes.HasPrefix(body, []byte("SQLite format 3\x00")) {
			t.Error("Expected a SQLite database file")
		}
	})

	t.Run("Logout", func(t *testing.T) {
		if doc, err = client.Logout(ctx); err != nil {
			t.Fatalf("Failed to logout: %v", err)
		}
		checkButtonPresence(t, doc, "Sign in", 1)
		if doc, err = client.Login(ctx); err != nil {
			t.Fatalf("Failed to login: %v", err)
		}
	})

	t.Run("Delete user", func(t *testing.T) {
		var count int
		if err = server.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
			t.Fatalf("Failed to count users: %v", err)
		}
		if count != 1 {
			t.Fatalf("Expected 1 user, got %d", count)
		}

		doc, err = client.GetDoc(ctx, "/preferences")
		if err != nil {
			t.Fatalf("Failed to get preferences: %v", err)
		}
		if doc, err = client.SubmitForm(ctx, doc, "/preferences/delete-user", nil); err != nil {
			t.Fatalf("Failed to delete user: %v", err)
		}
		checkButtonPresence(t, doc, "Sign in", 1)

		for table, want := range map[string]int{"users": 0, "daily_logs": 0, "credentials": 0} {
			if err = server.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
				t.Fatalf("Failed to count %s: %v", table, err)
			}
			if count != want {
				t.Errorf("Expected %d rows in %s after deletion, got %d", want, table, count)
			}
		}
	})
}

package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/habitapp/internal/e2etest"
	"github.com/myrjola/habitapp/internal/testhelpers"
)

func Test_application_track(t *testing.T) {
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
		resp, getErr := client.Get(ctx, "/track/2024-03-05")
		if getErr != nil {
			t.Fatalf("Failed to get track page: %v", getErr)
		}
		_ = resp.Body.Close()
		if got, want := resp.Request.URL.Path, "/"; got != want {
			t.Errorf("Expected redirect to %q, got %q", want, got)
		}
	})

	if _, err = client.Register(ctx); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	t.Run("Empty day", func(t *testing.T) {
		doc, err = client.GetDoc(ctx, "/track/2024-03-05")
		if err != nil {
			t.Fatalf("Failed to get track page: %v", err)
		}
		if got := doc.Find("#variable-meals form").Length(); got != 6 {
			t.Errorf("Expected 6 variable meals, got %d", got)
		}
		if got := doc.Find("#fixed-meals form").Length(); got != 5 {
			t.Errorf("Expected 5 fixed meals, got %d", got)
		}
		if got := doc.Find("#fitness form").Length(); got != 2 {
			t.Errorf("Expected 2 toggleable activities, got %d", got)
		}
		if doc.Find("button[aria-pressed='true']").Length() != 0 {
			t.Error("Expected nothing selected on an empty day")
		}
		if prev, _ := doc.Find("a[rel='prev']").Attr("href"); prev != "/track/2024-03-04" {
			t.Errorf("Expected previous day link, got %q", prev)
		}
	})

	t.Run("Toggle meals and training", func(t *testing.T) {
		for _, action := range []string{
			"/track/2024-03-05/variable-meals/tuna_rice/toggle",
			"/track/2024-03-05/variable-meals/chicken_pumpkin/toggle",
			"/track/2024-03-05/fixed-meals/shake/toggle",
			"/track/2024-03-05/fitness/weightlifting/toggle",
		} {
			if doc, err = client.SubmitForm(ctx, doc, action, nil); err != nil {
				t.Fatalf("Failed to submit %s: %v", action, err)
			}
		}

		for _, action := range []string{
			"/track/2024-03-05/variable-meals/tuna_rice/toggle",
			"/track/2024-03-05/variable-meals/chicken_pumpkin/toggle",
			"/track/2024-03-05/fixed-meals/shake/toggle",
			"/track/2024-03-05/fitness/weightlifting/toggle",
		} {
			if !doc.Find("form[action='" + action + "'] button").Is("[aria-pressed='true']") {
				t.Errorf("Expected %s to be selected", action)
			}
		}
		if !doc.Find("form[action='/track/2024-03-05/variable-meals/lentil_burgers/toggle'] button").Is("[disabled]") {
			t.Error("Expected further variable meals to be disabled at the daily limit")
		}
		if got := strings.TrimSpace(doc.Find("#day-status").Text()); got != "Clean day" {
			t.Errorf("Expected a clean day, got %q", got)
		}
	})

	t.Run("Variable meal limit is enforced", func(t *testing.T) {
		_, err = client.SubmitForm(ctx, doc, "/track/2024-03-05/variable-meals/lentil_burgers/toggle", nil)
		if !containsStatusError(err, 422) {
			t.Errorf("Expected 422 for a third variable meal, got %v", err)
		}
	})

	t.Run("Cheat meals", func(t *testing.T) {
		doc, err = client.SubmitForm(ctx, doc, "/track/2024-03-05/cheat-meals",
			map[string]string{"Name": "Pizza", "Emoji": "🍕"})
		if err != nil {
			t.Fatalf("Failed to add cheat meal: %v", err)
		}
		if got := doc.Find("#cheat-meals .cheat-name").Text(); got != "Pizza" {
			t.Errorf("Expected cheat meal Pizza, got %q", got)
		}
		if got := strings.TrimSpace(doc.Find("#day-status").Text()); got != "Not a clean day" {
			t.Errorf("Expected the cheat meal to break the clean day, got %q", got)
		}

		doc, err = client.SubmitForm(ctx, doc, "/track/2024-03-05/cheat-meals/0/delete", nil)
		if err != nil {
			t.Fatalf("Failed to delete cheat meal: %v", err)
		}
		if got := doc.Find("#cheat-meals .cheat-name").Length(); got != 0 {
			t.Errorf("Expected no cheat meals after delete, got %d", got)
		}
	})

	t.Run("Blank cheat meal is rejected", func(t *testing.T) {
		_, err = client.SubmitForm(ctx, doc, "/track/2024-03-05/cheat-meals", map[string]string{"Name": "  "})
		if !containsStatusError(err, 422) {
			t.Errorf("Expected 422 for a blank cheat meal, got %v", err)
		}
	})

	t.Run("Served this week", func(t *testing.T) {
		doc, err = client.GetDoc(ctx, "/track/2024-03-06")
		if err != nil {
			t.Fatalf("Failed to get next day: %v", err)
		}
		served := doc.Find("form[action='/track/2024-03-06/variable-meals/tuna_rice/toggle'] .served").Text()
		if served != "1/2" {
			t.Errorf("Expected tuna rice served once this week, got %q", served)
		}
	})

	t.Run("Invalid dates", func(t *testing.T) {
		for _, path := range []string{"/track/2024-02-30", "/track/not-a-date"} {
			resp, getErr := client.Get(ctx, path)
			if getErr != nil {
				t.Fatalf("GET %s: %v", path, getErr)
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("GET %s: expected status 404, got %d", path, resp.StatusCode)
			}
		}
	})

	t.Run("Invalid mutations", func(t *testing.T) {
		tests := map[string]int{
			"/track/2024-03-05/fitness/yoga/toggle":                http.StatusNotFound,
			"/track/2024-03-05/fitness/basketball_training/toggle": http.StatusUnprocessableEntity,
			"/track/2024-03-05/cheat-meals/9/delete":               http.StatusUnprocessableEntity,
			"/track/2024-03-05/variable-meals/caviar/toggle":       http.StatusUnprocessableEntity,
		}
		for action, want := range tests {
			_, postErr := client.SubmitForm(ctx, fakeFormDoc(t, action), action, nil)
			if !containsStatusError(postErr, want) {
				t.Errorf("POST %s: expected status %d, got %v", action, want, postErr)
			}
		}
	})
}

// fakeFormDoc returns a document with an empty form posting to action.
func fakeFormDoc(t *testing.T, action string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<form method="post" action="` + action + `"></form>`))
	if err != nil {
		t.Fatalf("Failed to build form document: %v", err)
	}
	return doc
}

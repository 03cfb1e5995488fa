package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/habitapp/internal/e2etest"
	"github.com/myrjola/habitapp/internal/testhelpers"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "HABITAPP_SQLITE_URL":
		return ":memory:", true
	case "HABITAPP_ADDR":
		return "localhost:0", true
	default:
		return "", false
	}
}

func Test_application_home(t *testing.T) {
	var (
		ctx = t.Context()
		doc *goquery.Document
	)
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	client := server.Client()

	t.Run("Initial state", func(t *testing.T) {
		doc, err = client.GetDoc(ctx, "/")
		if err != nil {
			t.Fatalf("Failed to get document: %v", err)
		}

		checkButtonPresence(t, doc, "Sign in", 1)
		checkButtonPresence(t, doc, "Register", 1)
		if doc.Find("nav").Length() != 0 {
			t.Error("Expected no navigation for anonymous users")
		}
	})

	t.Run("After registration", func(t *testing.T) {
		doc, err = client.Register(ctx)
		if err != nil {
			t.Fatalf("Failed to register: %v", err)
		}

		checkButtonPresence(t, doc, "Sign in", 0)
		checkButtonPresence(t, doc, "Register", 0)
		if got := doc.Find(".week .day").Length(); got != 7 {
			t.Errorf("Expected 7 days in the week overview, got %d", got)
		}
		if got := doc.Find(".week .day.today").Length(); got != 1 {
			t.Errorf("Expected today to be highlighted once, got %d", got)
		}
		if got := strings.TrimSpace(doc.Find("#clean-streak strong").Text()); got != "0" {
			t.Errorf("Expected a fresh clean streak of 0, got %q", got)
		}
	})

	t.Run("After logout", func(t *testing.T) {
		doc, err = client.Logout(ctx)
		if err != nil {
			t.Fatalf("Failed to logout: %v", err)
		}

		checkButtonPresence(t, doc, "Sign in", 1)
		checkButtonPresence(t, doc, "Register", 1)
	})

	t.Run("After login", func(t *testing.T) {
		doc, err = client.Login(ctx)
		if err != nil {
			t.Fatalf("Failed to login: %v", err)
		}

		checkButtonPresence(t, doc, "Sign in", 0)
		checkButtonPresence(t, doc, "Register", 0)
	})
}

func Test_application_language(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	doc, err := client.GetDoc(ctx, "/privacy")
	if err != nil {
		t.Fatalf("Failed to get privacy page: %v", err)
	}
	doc, err = client.SubmitForm(ctx, doc, "/language", map[string]string{"Language": "es"})
	if err != nil {
		t.Fatalf("Failed to switch language: %v", err)
	}

	if got, want := doc.Url.Path, "/privacy"; got != want {
		t.Errorf("Expected to return to %q, got %q", want, got)
	}
	if lang, _ := doc.Find("html").Attr("lang"); lang != "es" {
		t.Errorf("Expected html lang es, got %q", lang)
	}

	doc, err = client.GetDoc(ctx, "/")
	if err != nil {
		t.Fatalf("Failed to get home: %v", err)
	}
	checkButtonPresence(t, doc, "Iniciar sesión", 1)
}

func checkButtonPresence(t *testing.T, doc *goquery.Document, buttonText string, expectedCount int) {
	t.Helper()
	count := doc.Find("button:contains('" + buttonText + "')").Length()
	if count != expectedCount {
		t.Errorf("Expected %d '%s' button(s), but found %d", expectedCount, buttonText, count)
	}
}

func Test_crossOriginProtection(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	maliciousClient, err := e2etest.NewClientWithSecFetchSite(
		server.URL(),
		"localhost",
		server.URL(),
		"cross-site",
	)
	if err != nil {
		t.Fatalf("Failed to create malicious client: %v", err)
	}

	doc, err := maliciousClient.GetDoc(ctx, "/")
	if err != nil {
		t.Fatalf("Failed to get home page: %v", err)
	}

	_, err = maliciousClient.SubmitForm(ctx, doc, "/api/registration/start", nil)
	if err == nil {
		t.Error("Expected cross-origin form submission to be blocked, but it succeeded")
	}
	if !containsStatusError(err, 403) {
		t.Errorf("Expected status error 403 for blocked request, got: %v", err)
	}
}

// containsStatusError checks if the error contains a specific HTTP status code.
func containsStatusError(err error, statusCode int) bool {
	return err != nil && strings.Contains(err.Error(), fmt.Sprintf("status code: %d", statusCode))
}

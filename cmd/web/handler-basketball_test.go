package main

import (
	"strings"
	"testing"

	"github.com/myrjola/habitapp/internal/e2etest"
	"github.com/myrjola/habitapp/internal/testhelpers"
)

func Test_application_basketball(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()
	if _, err = client.Register(ctx); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	doc, err := client.GetDoc(ctx, "/basketball/2024-03-05")
	if err != nil {
		t.Fatalf("Failed to get basketball page: %v", err)
	}
	if got := doc.Find("#shooting-form .shot").Length(); got != 8 {
		t.Errorf("Expected 8 shot types, got %d", got)
	}
	if doc.Find("#latest-session").Length() != 0 {
		t.Error("Expected no session before completing one")
	}

	t.Run("Complete session", func(t *testing.T) {
		doc, err = client.SubmitForm(ctx, doc, "/basketball/2024-03-05/complete", map[string]string{
			"Midrange C&S": "20",
			"Tiros Libres": "40",
		})
		if err != nil {
			t.Fatalf("Failed to complete session: %v", err)
		}
		// 60 makes out of 75 attempts.
		if got := strings.TrimSpace(doc.Find("#latest-session h2").Text()); got != "80%" {
			t.Errorf("Expected score 80%%, got %q", got)
		}
		if !doc.Find("#latest-session").HasClass("score-high") {
			t.Error("Expected a high score level")
		}
		if got, _ := doc.Find("#makes-midrange_cs").Attr("value"); got != "20" {
			t.Errorf("Expected the form to be prefilled with the latest makes, got %q", got)
		}
	})

	t.Run("Training is recorded on the tracking page", func(t *testing.T) {
		trackDoc, getErr := client.GetDoc(ctx, "/track/2024-03-05")
		if getErr != nil {
			t.Fatalf("Failed to get track page: %v", getErr)
		}
		if got := trackDoc.Find("#fitness a[href='/basketball/2024-03-05']").Length(); got != 1 {
			t.Errorf("Expected a link to the shooting page, got %d", got)
		}
	})

	t.Run("Too many makes are rejected", func(t *testing.T) {
		_, err = client.SubmitForm(ctx, doc, "/basketball/2024-03-05/complete", map[string]string{
			"Midrange C&S": "26",
		})
		if !containsStatusError(err, 422) {
			t.Errorf("Expected 422, got %v", err)
		}
	})

	t.Run("Second session replaces the latest", func(t *testing.T) {
		doc, err = client.SubmitForm(ctx, doc, "/basketball/2024-03-05/complete", map[string]string{
			"Midrange C&S": "25",
			"Tiros Libres": "0",
		})
		if err != nil {
			t.Fatalf("Failed to complete session: %v", err)
		}
		if got := strings.TrimSpace(doc.Find("#latest-session h2").Text()); got != "100%" {
			t.Errorf("Expected score 100%%, got %q", got)
		}
		if got := strings.TrimSpace(doc.Find("#latest-session .session-count").Text()); got != "2 sessions" {
			t.Errorf("Expected 2 sessions, got %q", got)
		}
	})

	t.Run("Statistics", func(t *testing.T) {
		statsDoc, getErr := client.GetDoc(ctx, "/basketball/stats")
		if getErr != nil {
			t.Fatalf("Failed to get statistics: %v", getErr)
		}
		if got := strings.TrimSpace(statsDoc.Find("#total-sessions").Text()); got != "2 sessions" {
			t.Errorf("Expected 2 sessions, got %q", got)
		}
		if got := strings.TrimSpace(statsDoc.Find("#best-session h2").Text()); got != "Best: 100%" {
			t.Errorf("Expected best score 100%%, got %q", got)
		}
		if got := statsDoc.Find("#shots tr[data-shot]").Length(); got != 2 {
			t.Errorf("Expected stats for the 2 shot types attempted, got %d", got)
		}
	})
}

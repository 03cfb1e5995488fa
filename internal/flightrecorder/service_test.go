package flightrecorder_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/myrjola/habitapp/internal/flightrecorder"
	"github.com/myrjola/habitapp/internal/testhelpers"
)

func newRecorder(t *testing.T, cooldown time.Duration) (*flightrecorder.Recorder, string) {
	t.Helper()
	dir := t.TempDir()
	r, err := flightrecorder.New(testhelpers.NewLogger(testhelpers.NewWriter(t)), flightrecorder.Config{
		Dir:      dir,
		MinAge:   0,
		MaxBytes: 0,
		Cooldown: cooldown,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err = r.Start(t.Context()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		r.Stop(t.Context())
	})
	return r, dir
}

func TestRecorder_Capture(t *testing.T) {
	r, dir := newRecorder(t, 0)

	r.Capture(t.Context(), "timeout")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read trace directory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d trace files, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "timeout-") || !strings.HasSuffix(name, ".trace") {
		t.Errorf("unexpected trace file name %s", name)
	}
}

func TestRecorder_Capture_cooldown(t *testing.T) {
	r, dir := newRecorder(t, time.Hour)

	r.Capture(t.Context(), "timeout")
	r.Capture(t.Context(), "timeout")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read trace directory: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d trace files, want the cooldown to skip the second capture", len(entries))
	}
}

func TestNew_requiresDir(t *testing.T) {
	_, err := flightrecorder.New(testhelpers.NewLogger(testhelpers.NewWriter(t)), flightrecorder.Config{
		Dir: "", MinAge: 0, MaxBytes: 0, Cooldown: 0,
	})
	if err == nil {
		t.Error("expected an error without a traces directory")
	}
}

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/habitapp/internal/logging"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	parent := logging.WithAttrs(context.Background(), slog.String("trace_id", "abc"))
	child := logging.WithAttrs(parent, slog.Int("user_id", 1))
	sibling := logging.WithAttrs(parent, slog.Int("user_id", 2))

	logger.InfoContext(child, "child")
	logger.InfoContext(sibling, "sibling")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(lines), buf.String())
	}
	for i, want := range []string{"trace_id=abc user_id=1", "trace_id=abc user_id=2"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d: expected %q to contain %q", i, lines[i], want)
		}
	}
	if got := len(logging.Attrs(parent)); got != 1 {
		t.Errorf("parent context attrs mutated, got %d attrs", got)
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	h, err := logging.NewHandler(&buf, logging.FormatJSON, "warn")
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	logger := slog.New(h)
	ctx := logging.WithAttrs(t.Context(), slog.String("uri", "/progress"))
	logger.InfoContext(ctx, "dropped")
	logger.WarnContext(ctx, "kept")

	var got map[string]any
	if err = json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	delete(got, "time")
	want := map[string]any{"level": "WARN", "msg": "kept", "uri": "/progress"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("log record mismatch (-want +got):\n%s", diff)
	}

	if _, err = logging.NewHandler(&buf, "xml", "info"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err = logging.NewHandler(&buf, logging.FormatText, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

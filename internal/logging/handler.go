package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format selects the slog output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// NewHandler builds the application's log handler writing to w.
//
// level is parsed with [slog.Level.UnmarshalText], e.g. "debug", "info" or "warn+2".
func NewHandler(w io.Writer, format Format, level string) (*ContextHandler, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{
		AddSource:   false,
		Level:       lvl,
		ReplaceAttr: nil,
	}
	switch format {
	case FormatText:
		return NewContextHandler(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return NewContextHandler(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

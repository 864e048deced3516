// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// New builds a logger writing to w. format is "text" or "json"; level is
// any level slog understands ("debug", "info", "warn", "error", "info+2").
func New(w io.Writer, level, format, app string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler

	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}

	return slog.New(handler).With("app", app), nil
}

// Setup is New followed by slog.SetDefault.
func Setup(w io.Writer, level, format, app string) error {
	logger, err := New(w, level, format, app)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	return nil
}

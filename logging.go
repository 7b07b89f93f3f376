package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
	}
}

// newLogger builds the process logger. Diagnostics go to w (stderr in
// normal use) so results on stdout stay clean for piping.
func newLogger(w io.Writer, lc LogConfig) *slog.Logger {
	level, _ := parseLevel(lc.Level)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if lc.JSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

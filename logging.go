package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newLogger writes to path when set, otherwise to fallback. A nil fallback
// discards everything. The returned close func must be called on exit.
func newLogger(path string, verbose bool, fallback io.Writer) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if path == "" {
		if fallback == nil {
			return discardLogger(), func() error { return nil }, nil
		}
		return slog.New(slog.NewTextHandler(fallback, opts)), func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return slog.New(slog.NewTextHandler(f, opts)), f.Close, nil
}

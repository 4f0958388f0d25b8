package app

import (
	"io"
	"log/slog"

	"github.com/Arsen1987144/joycity-marketplace/internal/config"
)

// SetupLogging installs the default slog logger described by cfg.
// verbose forces debug level.
func SetupLogging(w io.Writer, cfg config.LogSection, verbose bool) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

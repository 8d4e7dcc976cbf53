// Package logger builds the process-wide structured logger.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON slog logger with the level taken from
// XS2GATE_LOG_LEVEL (debug, info, warn, error; default info).
func New() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("XS2GATE_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

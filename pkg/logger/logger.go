package logger

import (
	"log/slog"
	"os"
)

// NewHandler creates a slog handler writing JSON to stdout.
// A nil opts falls back to the level from LOG_LEVEL (debug|warn|error, default info).
func NewHandler(opts *slog.HandlerOptions) slog.Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{Level: levelFromEnv()}
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func levelFromEnv() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

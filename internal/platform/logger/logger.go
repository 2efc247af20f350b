package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Level is bumped to debug
// via STATUTORY_LOG_DEBUG for local troubleshooting.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("STATUTORY_LOG_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

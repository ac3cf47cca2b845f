package logging

import (
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
// Development builds also emit debug records.
func Setup(production bool) {
	slog.SetDefault(slog.New(NewStdoutHandler(production)))
}

func NewStdoutHandler(production bool) slog.Handler {
	level := slog.LevelDebug
	if production {
		level = slog.LevelInfo
	}
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}

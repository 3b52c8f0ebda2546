package logger

import (
	"log/slog"
	"os"
)

// New returns a structured stdout logger. Format is "json" for production or
// "text" for local development.
func New(format string) *slog.Logger {
	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, nil)
	default:
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	return slog.New(handler)
}

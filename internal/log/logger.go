package log

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// New builds the process logger: colored tint output for local development,
// JSON everywhere else, both wrapped by ContextHandler.
func New(w io.Writer, local bool, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if local {
		inner = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(NewContextHandler(inner))
}

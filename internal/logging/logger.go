package logging

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with the small convenience surface used across
// the project.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a logger. Development mode writes human-readable text at
// debug level; production writes JSON at info level.
func NewLogger(isDevelopment bool) *Logger {
	var handler slog.Handler
	if isDevelopment {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{slog.New(handler)}
}

// WithFields returns a child logger that always includes the given fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for key, value := range fields {
		args = append(args, key, value)
	}
	return &Logger{l.Logger.With(args...)}
}

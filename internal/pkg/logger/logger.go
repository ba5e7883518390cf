package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger writes JSON lines tagged with the owning service and, per call site, an action.
type Logger struct {
	*slog.Logger
}

// New builds a JSON logger for service writing to stdout.
func New(service string) *Logger {
	return NewWithWriter(service, os.Stdout)
}

func NewWithWriter(service string, w io.Writer) *Logger {
	hostname, _ := os.Hostname()
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{slog.New(h).With("service", service, "hostname", hostname)}
}

// Discard returns a logger that drops everything; used by tests.
func Discard() *Logger {
	return &Logger{slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

// Action scopes subsequent records to a named operation.
func (l *Logger) Action(action string) *Logger {
	return &Logger{l.With("action", action)}
}

// Request attaches the chi request id carried by ctx, if any.
func (l *Logger) Request(ctx context.Context) *Logger {
	if id := middleware.GetReqID(ctx); id != "" {
		return &Logger{l.With("request_id", id)}
	}
	return l
}

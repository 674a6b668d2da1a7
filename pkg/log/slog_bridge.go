package log

import (
	"context"
	stdlog "log"
	"log/slog"
	"strings"
)

// bridgeHandler adapts a Logger to the slog.Handler interface so libraries
// speaking log/slog can be routed through Moor's logger.
type bridgeHandler struct {
	logger Logger
	attrs  []slog.Attr
}

// NewSlogLogger returns a *slog.Logger that forwards records to logger.
func NewSlogLogger(logger Logger) *slog.Logger {
	return slog.New(&bridgeHandler{logger: logger})
}

func (h *bridgeHandler) Enabled(_ context.Context, level slog.Level) bool {
	return fromSlogLevel(level) >= h.logger.GetLevel()
}

func (h *bridgeHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]Field, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields = append(fields, Field{Key: a.Key, Value: a.Value.Any()})
	}
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, Field{Key: a.Key, Value: a.Value.Any()})
		return true
	})
	switch fromSlogLevel(r.Level) {
	case DebugLevel:
		h.logger.Debug(r.Message, fields...)
	case WarnLevel:
		h.logger.Warn(r.Message, fields...)
	case ErrorLevel:
		h.logger.Error(r.Message, fields...)
	default:
		h.logger.Info(r.Message, fields...)
	}
	return nil
}

func (h *bridgeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &bridgeHandler{logger: h.logger, attrs: merged}
}

func (h *bridgeHandler) WithGroup(name string) slog.Handler {
	// Groups are flattened; Moor's field space is flat by convention.
	return h
}

func fromSlogLevel(level slog.Level) Level {
	switch {
	case level < slog.LevelInfo:
		return DebugLevel
	case level < slog.LevelWarn:
		return InfoLevel
	case level < slog.LevelError:
		return WarnLevel
	default:
		return ErrorLevel
	}
}

// stdLogWriter forwards stdlib log lines into a Logger at info level.
type stdLogWriter struct {
	logger Logger
}

func (w stdLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if msg != "" {
		w.logger.Info(msg)
	}
	return len(p), nil
}

// RedirectStdLog routes the stdlib default logger (used by Pebble, among
// others) through the given Logger.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdLogWriter{logger: logger})
}

// Package log provides structured logging for Moor components.
//
// Loggers are constructed explicitly and passed by dependency injection;
// there is no package-level default. The Field-based API keeps call sites
// allocation-lean:
//
//	logger := log.NewLogger(log.WithLevel(log.InfoLevel))
//	logger = logger.With(log.Component("anchors"))
//	logger.Info("record accepted", log.Uint64("seq", seq), log.Str("submitter", sub))
//
// A slog.Handler bridge is available for libraries that speak log/slog, and
// RedirectStdLog captures stdlib log output (Pebble uses it) at info level.
package log

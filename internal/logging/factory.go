package logging

import "io"

// New returns a Logger for the named backend ("slog" or "zap").
func New(w io.Writer, backend, level, format string) Logger {
	if backend == "zap" {
		return NewZapLoggerTo(w, level, format)
	}
	return NewSlogLoggerTo(w, level, format)
}

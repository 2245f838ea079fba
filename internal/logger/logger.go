// Package logger wraps zerolog with the constructors used across the
// booking API. Embedding zerolog.Logger exposes the full zerolog API, so
// application code calls Info()/Error() directly on *Logger.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// New builds a JSON logger writing to stdout. The service label lets logs
// from different processes (API server, queue consumer) be told apart.
func New(service string) *Logger {
	l := zerolog.New(os.Stdout).With().
		Str("service", service).
		Timestamp().
		Logger()
	return &Logger{l}
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	l := zerolog.Nop()
	return &Logger{l}
}

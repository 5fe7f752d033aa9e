// Package logging defines the minimal structured-logging interface used by
// the derivation engine. Implementations can wrap slog, zap, zerolog, etc.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "unit derived", "doi", doi, "files", n)
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning for unusual but non-fatal conditions, such as an
	// unknown access category or a dropped duplicate record.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value
	// pairs, typically the current unit id.
	With(args ...any) Logger
}

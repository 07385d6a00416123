// Package logging provides structured logging built on log/slog.
//
// A single Logger is created at startup from the logging section of the
// configuration and threaded through the application via With, which
// adds component-scoped default attributes.
package logging

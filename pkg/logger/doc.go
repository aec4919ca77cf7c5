// Package logger builds configured slog loggers and provides typed
// attribute constructors for the identifiers that recur across the
// notification pipeline.
package logger

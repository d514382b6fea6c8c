// Package logger provides structured logging for kvmesh.
//
// It wraps log/slog:
//
//   - logger.go: handler construction, runtime level, default logger
//   - context.go: loggers and connection ids carried in a context
//   - redact.go: masking of stored payloads and secrets
//
// Components that only need a *slog.Logger get one through Slog; the
// redaction and level settings apply either way.
package logger

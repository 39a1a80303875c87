// Package log provides slog loggers that never write a taxpayer ID.
//
// SecureHandler wraps any slog.Handler. It masks:
//   - attributes with sensitive keys such as cpf, search_key or authorization
//   - any 11-digit taxpayer ID (bare or formatted) found inside messages,
//     string values and error values
//   - bearer and basic credentials
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, "text", log.LevelFor(verbose, slog.LevelWarn))
//	logger.Info("lookup started", "cpf", key) // cpf=***REDACTED***
package log

// Package log builds the slog loggers used across the crawler and the
// CLI. Console output goes through a colorized tint handler; every
// handler is wrapped so credential-bearing attributes (cookies,
// authorization headers, tokens) never reach the log output.
package log

// Package logging provides structured logging on top of log/slog.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Context-aware logging with run identifiers
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	ctx := logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "recycling finished", "outputs", 3)  // includes run_id
//
// Components take a *slog.Logger; pass logger.Slog() so context fields are
// kept. Observer logs the rule loader and aggregation engine events.
package logging

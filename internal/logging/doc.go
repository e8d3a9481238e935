// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr by default so command output on stdout stays clean.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Sandbox ready", zap.String("sandbox_id", id))
//	h, _ := harden.New(vm, harden.WithLogger(logger.Hardener()))
package logging

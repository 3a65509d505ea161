// Package logging provides structured logging for Dinodia Core.
//
// It wraps the standard log/slog package so every part of the
// application logs with the same shape and default fields.
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8080)
//	logger.Error("hub call failed", "error", err)
//
// Never log hub access tokens or JWT secrets. Log the household id and
// entity id instead; those are enough to correlate with the audit trail.
package logging

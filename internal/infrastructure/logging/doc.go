// Package logging provides structured logging for Gray Logic Remote.
//
// It wraps log/slog so every component logs the same way: JSON for
// deployment, text for development, with service and version attached to
// every record.
//
// Configuration (remote.yaml):
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	connLogger := logger.With("component", "connection")
//	connLogger.Info("connected", "address", addr)
//
// Never log MQTT passwords or InfluxDB tokens.
package logging

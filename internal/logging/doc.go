// Package logging provides structured logging for carlink.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the engine. It provides both general logging
// functions and specialized functions for protocol-specific logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps, message parsing, heartbeats)
//   - Info: Normal operations (connections, state changes, phone events)
//   - Warn: Non-fatal issues (dropped messages, frame gaps, retries)
//   - Error: Fatal issues (startup failures, exhausted reconnects)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Phone plugged",
//	    zap.String("phone_type", "CarPlay"),
//	    zap.Bool("wifi", true),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
// State machine transitions:
//
//	logging.LogStateChange("Opening", "AwaitingPhone", "")
//	logging.LogStateChange("Paired", "Reconnecting", "usb read: EOF")
//
// Dongle protocol messages:
//
//	logging.LogMessage("received", msgType.String(), payload)
//	logging.LogMessage("sent", msgType.String(), payload)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is configured (neither argument nor CARLINK_LOG_LEVEL), the
// package installs a nop logger so library consumers get no unexpected output.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging

package interfaces

// Logger defines the interface for logging throughout the application.
// The default implementation is backed by logrus; tests plug in recorders.
//
// Example usage:
//
//	logger.Info("Regenerating deck thumbnail", map[string]interface{}{
//		"deck_id": 42,
//		"reason":  "hash_mismatch",
//	})
//
//	logger.Error("Deck fetch failed", map[string]interface{}{
//		"deck_id": 42,
//		"error":   err.Error(),
//	})
type Logger interface {
	// Debug logs a debug level message with optional structured fields.
	// Debug messages are typically used for detailed troubleshooting information.
	Debug(msg string, fields map[string]interface{})

	// Info logs an info level message with optional structured fields.
	// Info messages are used for general informational messages.
	Info(msg string, fields map[string]interface{})

	// Warn logs a warning level message with optional structured fields.
	// Warning messages indicate potential issues that don't prevent operation.
	Warn(msg string, fields map[string]interface{})

	// Error logs an error level message with optional structured fields.
	// Error messages indicate failures that need attention.
	Error(msg string, fields map[string]interface{})
}
// NopLogger discards every message
type NopLogger struct{}

func (NopLogger) Debug(msg string, fields map[string]interface{}) {}
func (NopLogger) Info(msg string, fields map[string]interface{})  {}
func (NopLogger) Warn(msg string, fields map[string]interface{})  {}
func (NopLogger) Error(msg string, fields map[string]interface{}) {}

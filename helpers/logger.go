package helpers

import (
	"sjsage522/listingwatch/logger"
)

// LoggerInterface defines the interface for logger implementations
type LoggerInterface interface {
	LogError(source string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger forwards to a structured logger
type Logger struct {
	log *logger.Logger
}

// NewLoggerWith wraps an existing structured logger
func NewLoggerWith(l *logger.Logger) *Logger {
	return &Logger{log: l}
}

// LogError logs an error with the source that produced it
func (l *Logger) LogError(source string, err error) {
	l.log.Error().Str("source", source).Err(err).Msg("operation failed")
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

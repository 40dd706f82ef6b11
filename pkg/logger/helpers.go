package logger

import (
	"github.com/rs/zerolog"
)

// Package-level helpers targeting the global logger

// Debug logs a debug message on the global logger
func Debug(msg string) {
	GetLogger().Debug(msg)
}

// Info logs an info message on the global logger
func Info(msg string) {
	GetLogger().Info(msg)
}

// Warn logs a warning message on the global logger
func Warn(msg string) {
	GetLogger().Warn(msg)
}

// Error logs an error message on the global logger
func Error(msg string) {
	GetLogger().Error(msg)
}

// WithField returns the global logger with a field attached
func WithField(key string, value interface{}) Logger {
	return GetLogger().WithField(key, value)
}

// WithFields returns the global logger with fields attached
func WithFields(fields map[string]interface{}) Logger {
	return GetLogger().WithFields(fields)
}

// WithError returns the global logger with an error attached
func WithError(err error) Logger {
	return GetLogger().WithError(err)
}

// LogRequest logs HTTP request information at a level matching the status
func LogRequest(method, url string, statusCode int, duration float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration,
	}

	switch {
	case statusCode >= 500:
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		GetLogger().WarnWithFields("HTTP request client error", fields)
	default:
		GetLogger().InfoWithFields("HTTP request completed", fields)
	}
}

// LogFetchProgress logs comment fetch progress
func LogFetchProgress(shortcode string, pages, estimated, comments int) {
	GetLogger().InfoWithFields("fetch progress", map[string]interface{}{
		"shortcode":       shortcode,
		"pages":           pages,
		"estimated_pages": estimated,
		"comments":        comments,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }

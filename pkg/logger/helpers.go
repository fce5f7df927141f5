package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogRequest logs the outcome of a feed API request
func LogRequest(log Logger, url string, statusCode int, durationMs int64) {
	fields := map[string]interface{}{
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 500:
		log.ErrorWithFields("feed request server error", fields)
	case statusCode >= 400:
		log.WarnWithFields("feed request client error", fields)
	default:
		log.DebugWithFields("feed request completed", fields)
	}
}

// LogPage logs the extraction result of one feed page
func LogPage(log Logger, page, records, skipped int, oldest, newest *string) {
	log.InfoWithFields("page extracted", map[string]interface{}{
		"page":    page,
		"records": records,
		"skipped": skipped,
		"oldest":  oldest,
		"newest":  newest,
	})
}

// LogCheckpointWrite logs a checkpoint flush to the store
func LogCheckpointWrite(log Logger, key string, crawledPages int, newest *string) {
	log.DebugWithFields("checkpoint persisted", map[string]interface{}{
		"key":           key,
		"crawled_pages": crawledPages,
		"newest":        newest,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }

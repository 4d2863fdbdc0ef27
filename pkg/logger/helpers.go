package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// LogDownload records the terminal outcome of one message
func LogDownload(l Logger, chat string, messageID int, kind, outcome string, err error) {
	fields := map[string]interface{}{
		"chat":       chat,
		"message_id": messageID,
		"media_type": kind,
		"outcome":    outcome,
	}

	entry := l.WithFields(fields)
	switch {
	case err != nil:
		entry.WithError(err).Error("Download failed")
	case outcome == "skipped":
		entry.Debug("Download skipped")
	default:
		entry.Debug("Download completed")
	}
}

// LogRateLimit records a server-requested pause
func LogRateLimit(l Logger, operation string, wait time.Duration) {
	l.WithFields(map[string]interface{}{
		"operation":   operation,
		"retry_after": wait,
		"action":      "rate_limited",
	}).Warn("Rate limit reached, backing off")
}

// LogScanProgress records how many candidates a scan has found so far
func LogScanProgress(l Logger, chat string, scanned, matched, limit int) {
	percentage := 0.0
	if limit > 0 {
		percentage = float64(scanned) / float64(limit) * 100
	}

	l.WithFields(map[string]interface{}{
		"chat":       chat,
		"scanned":    scanned,
		"matched":    matched,
		"limit":      limit,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	}).Debug("Scan progress")
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	entry := l.WithField("component", component)
	if len(config) > 0 {
		entry = entry.WithFields(config)
	}
	entry.Info("Component started")
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

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
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

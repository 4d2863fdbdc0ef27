// Package logger wraps zerolog behind a small structured logging interface.
//
// Console output is colorized and written to stderr. When a log file is
// configured, JSON lines are appended to it instead.
//
//	log, err := logger.New(&config.LoggingConfig{Level: "info"})
//	log.WithField("chat", "@channel").Info("Scan started")
//	logger.LogRateLimit(log, "messages.getHistory", 30*time.Second)
//
// TestLogger captures messages in memory for assertions in tests.
package logger

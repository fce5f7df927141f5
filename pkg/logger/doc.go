// Package logger provides the structured logging interface used across the crawler.
//
// It wraps zerolog. Console output is written to stderr so that stdout only
// carries the run summary; a log file can be added through LoggingConfig.File.
//
// Basic Usage:
//
//	import "sinacrawler/pkg/logger"
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	err := logger.Initialize(cfg)
//
//	logger.Info("crawler starting")
//	logger.WithField("uid", "1669879400").Info("crawl started")
//	logger.WithError(err).Error("page fetch failed")
//
// Every crawl attaches run-scoped fields once and reuses the child logger:
//
//	log := logger.GetLogger().WithFields(map[string]interface{}{
//	    "run_id": runID,
//	    "uid":    uid,
//	})
//	logger.LogPage(log, page, records, skipped, oldest, newest)
//
// Tests use NewTestLogger to assert on captured messages, or NewNopLogger
// when output does not matter.
package logger

// Package storage provides the per-run append log for extracted records.
//
// A RunLog is an append-only newline-delimited JSON file owned by exactly one
// crawl session. Each Append writes one record straight to the file, so the
// session never holds more than the current page in memory. A finished run
// closes the log and hands its path to the exporter; an aborted run discards
// it.
//
// Usage:
//
//	runLog, err := storage.OpenRunLog(outputDir, "sina", uid, runID)
//	if err != nil {
//	    return err
//	}
//	defer runLog.Discard() // no-op once the log has been removed
//
//	if err := runLog.Append(record); err != nil {
//	    return err
//	}
package storage

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RunLog is an append-only NDJSON file for one crawl run
type RunLog struct {
	path string

	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
	count   int
	closed  bool
	removed bool
}

// RunLogName returns the temp log file name for a run
func RunLogName(platform, uid, runID string) string {
	return fmt.Sprintf("tmp-%s-%s-%s.ndjson", platform, uid, runID)
}

// OpenRunLog creates the run's log under dir, creating dir if needed
func OpenRunLog(dir, platform, uid, runID string) (*RunLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, RunLogName(platform, uid, runID))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)

	return &RunLog{
		path:    path,
		file:    file,
		encoder: encoder,
	}, nil
}

// Append writes v as one JSON line
func (l *RunLog) Append(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return errors.New("run log is closed")
	}
	if err := l.encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to append to run log: %w", err)
	}
	l.count++
	return nil
}

// Close flushes the log to disk. It is safe to call more than once.
func (l *RunLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	syncErr := l.file.Sync()
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close run log: %w", err)
	}
	if syncErr != nil {
		return fmt.Errorf("failed to sync run log: %w", syncErr)
	}
	return nil
}

// Discard closes and deletes the log. It is a no-op after a previous Discard.
func (l *RunLog) Discard() error {
	if err := l.Close(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.removed {
		return nil
	}
	l.removed = true

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove run log: %w", err)
	}
	return nil
}

// Path returns the log file path
func (l *RunLog) Path() string {
	return l.path
}

// Count returns the number of records appended so far
func (l *RunLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

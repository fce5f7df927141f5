package checkpoint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"sinacrawler/pkg/logger"
)

// FileStore keeps one JSON file per key in a directory
type FileStore struct {
	dir    string
	logger logger.Logger
}

// NewFileStore creates dir if needed
func NewFileStore(dir string, log logger.Logger) (*FileStore, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}
	return &FileStore{dir: dir, logger: log}, nil
}

// path maps a key such as sina:42:his to <dir>/sina_42_his.json
func (s *FileStore) path(key string) string {
	name := strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(key)
	return filepath.Join(s.dir, name+".json")
}

// Get reads the file stored for key
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read checkpoint file: %w", err)
	}
	return string(data), true, nil
}

// Set replaces the file for key atomically
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.path(key)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	if _, err := file.WriteString(value); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	// Ensure data is written to disk
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	s.logger.DebugWithFields("checkpoint file written", map[string]interface{}{
		"path": path,
	})
	return nil
}

// Delete removes the file for key
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}

// DefaultDirectory returns the platform data directory for checkpoint files
func DefaultDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "sinacrawler")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "sinacrawler")
	default:
		// Use XDG_DATA_HOME if set, otherwise ~/.local/share
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "sinacrawler")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "sinacrawler")
		}
	}

	return filepath.Join(dataDir, "checkpoints"), nil
}

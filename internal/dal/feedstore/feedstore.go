package feedstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store writes assembled feed documents into the local export directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the export directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Write saves the feed under the export directory and returns the full path.
// A failed directory creation is logged and execution continues; the write
// itself then reports the underlying problem.
func (s *Store) Write(fileName string, body []byte) (string, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			slog.Error("Failed to create export directory", "dir", s.dir, "error", err)
		}
	}

	path := filepath.Join(s.dir, fileName)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write feed file: %w", err)
	}

	return path, nil
}

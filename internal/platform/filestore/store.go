package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cofinco/backoffice/internal/domain/document"
)

// Storage keeps the document in a JSON file. Writes go to a temporary file
// that is renamed over the target so a crash never leaves a partial document.
type Storage struct {
	path string
}

// New creates a file storage at path. Parent directories are created on first write.
func New(path string) *Storage {
	return &Storage{path: path}
}

// Read implements document.Storage
func (s *Storage) Read(ctx context.Context) ([]byte, error) {
	body, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, document.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return body, nil
}

// Write implements document.Storage
func (s *Storage) Write(ctx context.Context, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

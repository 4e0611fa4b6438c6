package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leadlens/leadlens/internal/assess"
)

// LocalStore writes archived payloads to a directory on disk.
type LocalStore struct {
	dir    string
	prefix string
}

// NewLocalStore creates a LocalStore rooted at dir.
func NewLocalStore(dir, prefix string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &LocalStore{dir: dir, prefix: prefix}, nil
}

// Archive writes the payload body to <dir>/<key>.
func (s *LocalStore) Archive(_ context.Context, payload assess.RawPayload) (string, error) {
	key := Key(s.prefix, payload)
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}
	if err := os.WriteFile(path, payload.Body, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return key, nil
}

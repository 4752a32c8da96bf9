package backup

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// FSConfig holds filesystem store settings.
type FSConfig struct {
	Dir string `yaml:"dir"`
}

// FSStore keeps staged payloads as files under a single directory.
// Keys are path-escaped so an opaque key can never escape the directory.
type FSStore struct {
	dir string
}

// NewFSStore creates the backing directory if needed.
func NewFSStore(cfg FSConfig) (*FSStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("backup dir is not set")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup dir: %w", err)
	}
	return &FSStore{dir: cfg.Dir}, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key))
}

// Write stages the payload via a temp file and rename, so a crash mid-write
// never leaves a truncated backup under the key.
func (s *FSStore) Write(ctx context.Context, key string, r io.Reader) error {
	tmp, err := os.CreateTemp(s.dir, ".staging-*")
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close staging file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("failed to commit staging file: %w", err)
	}
	return nil
}

// Read opens the staged payload.
func (s *FSStore) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open backup: %w", err)
	}
	return f, nil
}

// Delete removes the staged payload.
func (s *FSStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		return fmt.Errorf("failed to remove backup: %w", err)
	}
	return nil
}

// Ping checks that the backing directory is still accessible.
func (s *FSStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("backup dir unavailable: %w", err)
	}
	return nil
}

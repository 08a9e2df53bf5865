// Package jsonfile provides a storage backend that keeps each document in its
// own JSON file inside a data directory.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sbertone/inventario/internal/infrastructure/config"
	"github.com/sbertone/inventario/internal/infrastructure/storage"
)

// Repository implements storage.Backend on top of plain files.
type Repository struct {
	dir string
}

// NewRepository creates a JSON file repository rooted at cfg.DataDir.
func NewRepository(cfg config.StorageConfig) (*Repository, error) {
	if cfg.DataDir == "" {
		return nil, errors.New("data directory is required")
	}
	return &Repository{dir: cfg.DataDir}, nil
}

// Dir returns the data directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Close does nothing; files are opened per operation.
func (r *Repository) Close() error {
	return nil
}

// EnsureSchema creates the data directory and any missing document with its
// empty default. Existing documents are left untouched.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	for _, name := range storage.Documents {
		_, err := os.Stat(r.path(name))
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", name, err)
		}
		if err := r.WriteDocument(ctx, name, storage.EmptyDocument(name)); err != nil {
			return err
		}
	}
	return nil
}

// ReadDocument returns the file contents, or nil if the file does not exist.
func (r *Repository) ReadDocument(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(r.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// WriteDocument replaces a file atomically: the bytes go to a temporary file
// in the same directory which is then renamed over the target.
func (r *Repository) WriteDocument(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, r.path(name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

func (r *Repository) path(name string) string {
	return filepath.Join(r.dir, name)
}

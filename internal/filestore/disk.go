package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore writes under a local directory. Used when ENV=local.
type DiskStore struct {
	dir string
}

func NewDisk(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (d *DiskStore) path(name string) string {
	return filepath.Join(d.dir, filepath.Base(name))
}

func (d *DiskStore) Put(_ context.Context, name string, body io.Reader, _ int64, _ string) error {
	f, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(f.Name(), d.path(name)); err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}
	return nil
}

func (d *DiskStore) Delete(_ context.Context, name string) error {
	if err := os.Remove(d.path(name)); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"medichart/pkg/platform/sentinel"
)

// Filesystem stores one JSON file per key under a root directory. Writes go
// through a temp file and rename so a crash mid-save never leaves a
// half-written collection behind.
type Filesystem struct {
	root string
}

func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		return nil, fmt.Errorf("snapshot root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot root: %w", err)
	}
	return &Filesystem{root: root}, nil
}

func (f *Filesystem) path(key string) string {
	return filepath.Join(f.root, key+".json")
}

func (f *Filesystem) Load(_ context.Context, key string) ([]byte, bool, error) {
	blob, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return blob, true, nil
}

func (f *Filesystem) Save(_ context.Context, key string, blob []byte) error {
	tmp, err := os.CreateTemp(f.root, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close snapshot %s: %w", key, err)
	}
	if err := os.Rename(name, f.path(key)); err != nil {
		os.Remove(name)
		return fmt.Errorf("commit snapshot %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return nil
}

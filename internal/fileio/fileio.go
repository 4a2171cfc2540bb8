// Package fileio holds the small file helpers shared by the on-disk stores:
// reads that treat a missing file as empty, and whole-file writes that go
// through a temp file and a rename so readers never see a partial file.
package fileio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadFile returns the contents of path. A missing file yields nil, nil.
func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// WriteFile writes b to a temp file next to path, then atomically replaces path.
func WriteFile(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// CopyFile copies src to dst through WriteFile semantics.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	b, err := io.ReadAll(in)
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}
	if err := WriteFile(dst, b, 0o644); err != nil {
		return 0, fmt.Errorf("write copy: %w", err)
	}
	return int64(len(b)), nil
}

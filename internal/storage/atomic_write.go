// Package storage writes the files treetick owns, the config file among
// them, so that concurrent writers and crashes never leave them torn.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrWouldBlock is returned by [TryLock] when another process holds the
// lock.
var ErrWouldBlock = errors.New("storage: lock is held by another process")

// RenameError is returned by [AtomicWriteFile] when the final rename fails.
// The temporary file has been removed by then.
type RenameError struct {
	tempPath string
	err      error
}

func (e RenameError) Error() string {
	return fmt.Sprintf("storage: rename %s: %v", e.tempPath, e.err)
}

func (e RenameError) Unwrap() error { return e.err }

// TempPath returns the path of the temporary file that could not be renamed.
func (e RenameError) TempPath() string { return e.tempPath }

// AtomicWriteFile replaces path with data via a temporary file in the same
// directory, creating parent directories as needed. Readers see either the
// old or the new content.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: sync temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("storage: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return RenameError{tempPath: tmpPath, err: err}
	}
	return nil
}

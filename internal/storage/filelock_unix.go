//go:build !windows

package storage

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// acquireFileLock opens path and takes a non-blocking exclusive flock on it.
var acquireFileLock = func(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrWouldBlock
		}
		return nil, fmt.Errorf("storage: flock %s: %w", path, err)
	}
	return f, nil
}

func releaseFileLock(f *os.File) error {
	// LOCK_UN only fails for a bad descriptor, which Close reports too.
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	return f.Close()
}

package storage

import (
	"context"
	"errors"
	"os"
	"time"
)

// Lock is an exclusive advisory lock held on a lock file. The file itself
// is left in place on unlock, since removing it would race with a process
// that has just opened it.
type Lock struct {
	file *os.File
}

// TryLock takes the lock at path without waiting, creating the file if
// needed. It returns [ErrWouldBlock] if the lock is held elsewhere.
func TryLock(path string) (*Lock, error) {
	f, err := acquireFileLock(path)
	if err != nil {
		return nil, err
	}
	return &Lock{file: f}, nil
}

// AcquireLock retries [TryLock] every interval until it succeeds, fails for
// another reason, or ctx is done.
func AcquireLock(ctx context.Context, path string, interval time.Duration) (*Lock, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		l, err := TryLock(path)
		if !errors.Is(err, ErrWouldBlock) {
			return l, err
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(err, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Unlock releases the lock. It is safe to call more than once.
func (l *Lock) Unlock() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := releaseFileLock(l.file)
	l.file = nil
	return err
}

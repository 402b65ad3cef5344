// Package lock guards a sweep against concurrent harness instances and
// writes report files atomically.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the sweep lock.
var ErrLocked = errors.New("another sweep holds the lock")

// Sweep is an exclusive, non-blocking lock on a file.
type Sweep struct {
	flock *flock.Flock
	path  string
}

// Acquire takes the lock at path or fails with ErrLocked. The parent
// directory must exist.
func Acquire(path string) (*Sweep, error) {
	fl := flock.New(path)
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return &Sweep{flock: fl, path: path}, nil
}

// Path returns the lock file path.
func (s *Sweep) Path() string {
	return s.path
}

// Release unlocks. The file is left in place: removing it would let a
// waiter lock an orphaned inode. Safe to call on nil.
func (s *Sweep) Release() error {
	if s == nil {
		return nil
	}
	if err := s.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", s.path, err)
	}
	return nil
}

// AtomicWrite writes data to path via a temp file in the same directory
// and a rename, so readers never see a partial file.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		tempFile = nil
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		tempFile = nil
		os.Remove(tempPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		tempFile = nil
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}

// Package lock serializes work per key across goroutines and processes
// using advisory file locks.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrLocked is returned by TryLock when another holder owns the lock.
var ErrLocked = errors.New("lock is held by another process")

// retryDelay is how often a blocked Lock re-tries the file lock.
const retryDelay = 50 * time.Millisecond

// namespace derives stable lock file names from arbitrary keys.
var namespace = uuid.MustParse("6f1f4c1e-2f0e-4c55-9a53-6b8f0a3d2c71")

// Locker hands out per-key file locks under a directory.
type Locker struct {
	dir string
}

// New returns a Locker keeping its lock files in dir.
func New(dir string) *Locker {
	return &Locker{dir: dir}
}

// Path returns the lock file used for key.
func (l *Locker) Path(key string) string {
	return filepath.Join(l.dir, uuid.NewSHA1(namespace, []byte(key)).String()+".lock")
}

// Lock blocks until the lock for key is held or ctx is done.
// The returned function releases it.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	fl, err := l.file(key)
	if err != nil {
		return nil, err
	}
	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock for %q: %w", key, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquiring lock for %q: %w", key, ErrLocked)
	}
	return func() { _ = fl.Unlock() }, nil
}

// TryLock takes the lock for key without waiting.
func (l *Locker) TryLock(key string) (func(), error) {
	fl, err := l.file(key)
	if err != nil {
		return nil, err
	}
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock for %q: %w", key, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquiring lock for %q: %w", key, ErrLocked)
	}
	return func() { _ = fl.Unlock() }, nil
}

func (l *Locker) file(key string) (*flock.Flock, error) {
	if err := os.MkdirAll(l.dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	return flock.New(l.Path(key)), nil
}

// CLAUDE:SUMMARY Advisory per-file exclusive lock with timeout-bounded polling, used to serialize in-place adoc edits.
// Package filelock guards in-place edits to shared source files.
//
// Multiple converter processes may fix overlapping include graphs
// concurrently; the only shared mutable resource is an .adoc file reachable
// from more than one document. Each such file is serialized through an
// advisory lock on a sidecar file next to it.
//
// The lock is advisory: only cooperating processes are excluded. The OS
// releases the lock when the holding process dies, so a stale sidecar file
// never blocks acquisition — only the lock itself matters, never the file's
// existence.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrTimeout is returned when the lock cannot be acquired within the
// configured window.
var ErrTimeout = errors.New("filelock: acquire timed out")

const (
	// DefaultTimeout bounds how long Acquire polls before giving up.
	DefaultTimeout = 30 * time.Second
	// DefaultPoll is the retry interval between acquisition attempts.
	DefaultPoll = 100 * time.Millisecond
)

// Handle is a held lock. Release it exactly once.
type Handle struct {
	fl       *flock.Flock
	released bool
}

// SidecarPath returns the lock-file path guarding target:
// ".<basename>.lock" in the same directory.
func SidecarPath(target string) string {
	dir, base := filepath.Split(target)
	return filepath.Join(dir, "."+base+".lock")
}

// Acquire takes the exclusive advisory lock for path, retrying every poll
// until timeout elapses. Non-positive timeout or poll fall back to the
// defaults. The returned Handle is not reentrant.
func Acquire(ctx context.Context, path string, timeout, poll time.Duration) (*Handle, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if poll <= 0 {
		poll = DefaultPoll
	}

	fl := flock.New(SidecarPath(path))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok, err := fl.TryLockContext(ctx, poll)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, path, timeout)
		}
		return nil, fmt.Errorf("filelock: %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, path, timeout)
	}
	return &Handle{fl: fl}, nil
}

// Release unlocks and best-effort deletes the sidecar file. Deletion failure
// is ignored: the next acquirer only contends on the advisory lock, and a
// leftover sidecar carries no state.
func (h *Handle) Release() error {
	if h == nil || h.released {
		return nil
	}
	h.released = true
	if err := h.fl.Unlock(); err != nil {
		return fmt.Errorf("filelock: release %s: %w", h.fl.Path(), err)
	}
	_ = os.Remove(h.fl.Path())
	return nil
}

// Path returns the sidecar lock-file path.
func (h *Handle) Path() string { return h.fl.Path() }

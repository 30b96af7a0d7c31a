package adocfix

import (
	"context"
	"time"

	"github.com/hazyhaar/adoctext/filelock"
)

// acquireForTest grabs the lock for path the way a concurrent worker would.
func acquireForTest(path string) (*filelock.Handle, error) {
	return filelock.Acquire(context.Background(), path, time.Second, 10*time.Millisecond)
}

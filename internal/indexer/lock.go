package indexer

import "context"

// BuildLock is a binary lock guarding the index build. Unlike sync.Mutex a
// waiter can give up when its context is cancelled.
type BuildLock struct {
	ch chan struct{}
}

// NewBuildLock creates an unlocked BuildLock
func NewBuildLock() *BuildLock {
	return &BuildLock{ch: make(chan struct{}, 1)}
}

// Acquire blocks until the lock is held or ctx is done
func (l *BuildLock) Acquire(ctx context.Context) error {
	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *BuildLock) TryAcquire() bool {
	select {
	case l.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *BuildLock) Release() {
	select {
	case <-l.ch:
	default:
		panic("indexer: release of unlocked BuildLock")
	}
}

// IsLocked reports whether a build currently holds the lock
func (l *BuildLock) IsLocked() bool {
	return len(l.ch) == 1
}

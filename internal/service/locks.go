package service

import "sync"

// taskLockStripes is the number of mutex stripes guarding task writes.
// Writes to the same task always map to the same stripe, so read-modify-write
// sequences on a single task are serialized without a global lock.
const taskLockStripes = 64

// taskLocks provides per-task write serialization via striped mutexes.
type taskLocks struct {
	stripes [taskLockStripes]sync.Mutex
}

// lock acquires the stripe for the given task ID and returns the mutex
// so callers can `defer locks.lock(id).Unlock()`.
func (l *taskLocks) lock(id int64) *sync.Mutex {
	mu := &l.stripes[uint64(id)%taskLockStripes]
	mu.Lock()
	return mu
}

package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is a process-local Locker for single-instance deployments.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]memoryEntry
	seq   uint64
	clock func() time.Time
}

type memoryEntry struct {
	token   uint64
	expires time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memoryEntry), clock: time.Now}
}

func (l *MemoryLocker) Obtain(_ context.Context, key string, ttl time.Duration) (Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return nil, ErrNotObtained
	}
	l.seq++
	l.held[key] = memoryEntry{token: l.seq, expires: now.Add(ttl)}
	return &memoryLock{owner: l, key: key, token: l.seq}, nil
}

type memoryLock struct {
	owner *MemoryLocker
	key   string
	token uint64
}

func (l *memoryLock) Release(context.Context) error {
	l.owner.mu.Lock()
	defer l.owner.mu.Unlock()
	if e, ok := l.owner.held[l.key]; ok && e.token == l.token {
		delete(l.owner.held, l.key)
	}
	return nil
}

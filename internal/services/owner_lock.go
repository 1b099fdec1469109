package services

import (
	"context"
	"sync"
)

// OwnerLocker serializes the check-then-insert sequence of one owner. The
// returned unlock func is safe to call more than once.
type OwnerLocker interface {
	Lock(ctx context.Context, ownerID uint) (func(), error)
}

type ownerLockEntry struct {
	slot chan struct{}
	refs int
}

// LocalOwnerLocker is an in-process OwnerLocker for single-instance
// deployments.
type LocalOwnerLocker struct {
	mu      sync.Mutex
	entries map[uint]*ownerLockEntry
}

func NewLocalOwnerLocker() *LocalOwnerLocker {
	return &LocalOwnerLocker{
		entries: make(map[uint]*ownerLockEntry),
	}
}

func (locker *LocalOwnerLocker) Lock(ctx context.Context, ownerID uint) (func(), error) {
	entry := locker.acquireEntry(ownerID)

	select {
	case entry.slot <- struct{}{}:
	case <-ctx.Done():
		locker.releaseEntry(ownerID, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.slot
			locker.releaseEntry(ownerID, entry)
		})
	}, nil
}

func (locker *LocalOwnerLocker) acquireEntry(ownerID uint) *ownerLockEntry {
	locker.mu.Lock()
	defer locker.mu.Unlock()

	entry, ok := locker.entries[ownerID]
	if !ok {
		entry = &ownerLockEntry{slot: make(chan struct{}, 1)}
		locker.entries[ownerID] = entry
	}
	entry.refs++
	return entry
}

func (locker *LocalOwnerLocker) releaseEntry(ownerID uint, entry *ownerLockEntry) {
	locker.mu.Lock()
	defer locker.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(locker.entries, ownerID)
	}
}

func (locker *LocalOwnerLocker) activeOwners() int {
	locker.mu.Lock()
	defer locker.mu.Unlock()
	return len(locker.entries)
}

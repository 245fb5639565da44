// Package ss implements the storage server: the write-lock table, undo
// ring, checkpoint store, sentence/word write engine, and the dual NM-facing
// / client-facing dispatcher.
package ss

import "sync"

// fileLock is a single file's exclusive write-lock entry. Created lazily on
// first write attempt and never destroyed. Owner tracks which
// connection currently holds it, so a later EOF on that same connection
// can release it.
type fileLock struct {
	mu     sync.Mutex
	locked bool
	owner  uint64 // connection id of the current holder, 0 if unlocked
}

// LockTable is a two-level write-lock structure: a list-mutex to
// find-or-create a file's lock entry, then a per-entry mutex
// to flip its flag. Locks are never held across network I/O.
type LockTable struct {
	mu    sync.Mutex
	locks map[string]*fileLock
}

func NewLockTable() *LockTable {
	return &LockTable{locks: make(map[string]*fileLock)}
}

func (t *LockTable) entry(filename string) *fileLock {
	t.mu.Lock()
	defer t.mu.Unlock()
	fl, ok := t.locks[filename]
	if !ok {
		fl = &fileLock{}
		t.locks[filename] = fl
	}
	return fl
}

// TryAcquire attempts to take filename's exclusive write lock on behalf of
// connID. Returns false if another connection already holds it.
func (t *LockTable) TryAcquire(filename string, connID uint64) bool {
	fl := t.entry(filename)
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.locked {
		return false
	}
	fl.locked = true
	fl.owner = connID
	return true
}

// Release unconditionally frees filename's lock, regardless of owner. Used
// once Phase 2 completes (successfully or not).
func (t *LockTable) Release(filename string) {
	fl := t.entry(filename)
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.locked = false
	fl.owner = 0
}

// ReleaseIfOwnedBy releases filename's lock only if connID currently holds
// it. Used when a connection's read returns EOF between Phase 1 and Phase
// 2: the lock must not be released out from under a different, later
// writer who has since acquired it.
func (t *LockTable) ReleaseIfOwnedBy(filename string, connID uint64) {
	fl := t.entry(filename)
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.locked && fl.owner == connID {
		fl.locked = false
		fl.owner = 0
	}
}

// IsLocked reports whether filename is currently write-locked, used by
// READ/STREAM to reject with SENTENCE_LOCKED.
func (t *LockTable) IsLocked(filename string) bool {
	fl := t.entry(filename)
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.locked
}

// ActiveLockCount reports how many files are currently write-locked. Used
// only by metrics.
func (t *LockTable) ActiveLockCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, fl := range t.locks {
		fl.mu.Lock()
		if fl.locked {
			n++
		}
		fl.mu.Unlock()
	}
	return n
}

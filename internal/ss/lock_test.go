package ss

import "testing"

func TestLockTableExclusiveAcquire(t *testing.T) {
	lt := NewLockTable()
	if !lt.TryAcquire("a.txt", 1) {
		t.Fatal("first acquire should succeed")
	}
	if lt.TryAcquire("a.txt", 2) {
		t.Fatal("second acquire should fail while locked")
	}
	lt.Release("a.txt")
	if !lt.TryAcquire("a.txt", 2) {
		t.Fatal("acquire should succeed after release")
	}
}

func TestLockTableReleaseIfOwnedByIgnoresOtherOwner(t *testing.T) {
	lt := NewLockTable()
	lt.TryAcquire("a.txt", 1)
	lt.Release("a.txt")
	lt.TryAcquire("a.txt", 2)

	lt.ReleaseIfOwnedBy("a.txt", 1) // stale owner, must not release connID 2's lock
	if !lt.IsLocked("a.txt") {
		t.Fatal("lock held by connID 2 should not have been released by connID 1")
	}

	lt.ReleaseIfOwnedBy("a.txt", 2)
	if lt.IsLocked("a.txt") {
		t.Fatal("lock should be released by its actual owner")
	}
}

func TestLockTableIndependentFiles(t *testing.T) {
	lt := NewLockTable()
	if !lt.TryAcquire("a.txt", 1) {
		t.Fatal("a.txt acquire should succeed")
	}
	if !lt.TryAcquire("b.txt", 2) {
		t.Fatal("b.txt acquire should succeed independently of a.txt")
	}
}

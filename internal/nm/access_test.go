package nm

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newTestAccessTable(t *testing.T) *AccessTable {
	t.Helper()
	return NewAccessTable(filepath.Join(t.TempDir(), "access.db"))
}

func TestAccessTableCreateOwnerIsEntryZero(t *testing.T) {
	at := newTestAccessTable(t)
	if err := at.CreateOwner("a.txt", "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	owner, ok := at.Owner("a.txt")
	if !ok || owner != "alice" {
		t.Fatalf("got owner %q, %v; want alice, true", owner, ok)
	}
	if !at.IsOwner("a.txt", "alice") {
		t.Fatal("alice should be recognized as owner")
	}
	if !at.CheckAccess("a.txt", "alice", AccessWrite) {
		t.Fatal("owner should implicitly have WRITE access")
	}
}

func TestAccessTableCreateOwnerRejectsDuplicate(t *testing.T) {
	at := newTestAccessTable(t)
	at.CreateOwner("a.txt", "alice")
	if err := at.CreateOwner("a.txt", "bob"); err == nil {
		t.Fatal("expected an error creating a second access record for the same file")
	}
}

func TestAccessTableGrantAndCheckAccess(t *testing.T) {
	at := newTestAccessTable(t)
	at.CreateOwner("b.txt", "alice")

	if at.CheckAccess("b.txt", "bob", AccessRead) {
		t.Fatal("bob should have no access before being granted any")
	}
	if err := at.Grant("b.txt", "bob", AccessRead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !at.CheckAccess("b.txt", "bob", AccessRead) {
		t.Fatal("bob should have READ access after grant")
	}
	if at.CheckAccess("b.txt", "bob", AccessWrite) {
		t.Fatal("bob should not have WRITE access when granted only READ")
	}
}

func TestAccessTableGrantUpdatesExistingEntry(t *testing.T) {
	at := newTestAccessTable(t)
	at.CreateOwner("b.txt", "alice")
	at.Grant("b.txt", "bob", AccessRead)
	at.Grant("b.txt", "bob", AccessWrite)

	if !at.CheckAccess("b.txt", "bob", AccessWrite) {
		t.Fatal("bob's re-grant to WRITE should take effect")
	}
}

func TestAccessTableRevokeRemovesNonOwnerEntry(t *testing.T) {
	at := newTestAccessTable(t)
	at.CreateOwner("b.txt", "alice")
	at.Grant("b.txt", "bob", AccessRead)

	if err := at.Revoke("b.txt", "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if at.CheckAccess("b.txt", "bob", AccessRead) {
		t.Fatal("bob should have no access after revoke")
	}
}

func TestAccessTableDeleteRemovesRecord(t *testing.T) {
	at := newTestAccessTable(t)
	at.CreateOwner("a.txt", "alice")
	if err := at.Delete("a.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if at.Exists("a.txt") {
		t.Fatal("a.txt should have no access record after Delete")
	}
	if at.CheckAccess("a.txt", "alice", AccessRead) {
		t.Fatal("a file with no access record must deny access")
	}
}

func TestAccessTableAllUsersDedupes(t *testing.T) {
	at := newTestAccessTable(t)
	at.CreateOwner("a.txt", "alice")
	at.CreateOwner("b.txt", "alice")
	at.Grant("b.txt", "bob", AccessRead)

	users := at.AllUsers()
	seen := map[string]int{}
	for _, u := range users {
		seen[u]++
	}
	if seen["alice"] != 1 || seen["bob"] != 1 {
		t.Fatalf("expected alice and bob exactly once each, got %v", seen)
	}
}

// TestAccessTablePersistenceRoundTrip checks that an
// access-control table persisted and reloaded is byte-equivalent.
func TestAccessTablePersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.db")

	at := NewAccessTable(path)
	at.CreateOwner("a.txt", "alice")
	at.CreateOwner("b.txt", "alice")
	at.Grant("b.txt", "bob", AccessRead)

	reloaded := NewAccessTable(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reloaded.IsOwner("a.txt", "alice") {
		t.Fatal("a.txt owner should survive reload")
	}
	if !reloaded.CheckAccess("b.txt", "bob", AccessRead) {
		t.Fatal("b.txt's grant to bob should survive reload")
	}
	if reloaded.CheckAccess("b.txt", "bob", AccessWrite) {
		t.Fatal("bob's level should remain READ after reload")
	}

	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reloaded.path = filepath.Join(t.TempDir(), "access-copy.db")
	if err := reloaded.Save(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resaved, err := os.ReadFile(reloaded.path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(original, resaved) {
		t.Fatal("re-saved access table should be byte-identical to the original file")
	}
}

func TestAccessTableLoadMissingFileIsNotError(t *testing.T) {
	at := NewAccessTable(filepath.Join(t.TempDir(), "does-not-exist.db"))
	if err := at.Load(); err != nil {
		t.Fatalf("loading a missing access file should not error: %v", err)
	}
}

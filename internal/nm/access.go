package nm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

// AccessLevel is an access-control entry's permission level.
type AccessLevel int32

const (
	AccessRead  AccessLevel = 0
	AccessWrite AccessLevel = 1
)

// AccessEntry is one (username, level) grant. Position 0 in a file's entry
// slice is always the owner, who implicitly holds AccessWrite.
type AccessEntry struct {
	Username string
	Level    AccessLevel
}

const (
	accessFilenameWidth = 256
	accessUsernameWidth = 64
	accessRecordWidth   = accessFilenameWidth + accessUsernameWidth + 4
)

// AccessTable is the NM's in-memory access-control database, persisted
// atomically to a single flat file. A single mutex is held for the
// duration of every query and update.
type AccessTable struct {
	mu      sync.Mutex
	entries map[string][]AccessEntry
	order   []string // filenames in first-seen order: fixes persistence order
	path    string
}

func NewAccessTable(path string) *AccessTable {
	return &AccessTable{
		entries: make(map[string][]AccessEntry),
		path:    path,
	}
}

// Load reads the flat access-control file if it exists. A missing file is
// not an error: a fresh naming server starts with an empty table.
func (t *AccessTable) Load() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("nm: load access table: %w", err)
	}
	if len(data) < 4 {
		return fmt.Errorf("nm: access table file %q truncated", t.path)
	}

	count := binary.BigEndian.Uint32(data[:4])
	data = data[4:]

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make(map[string][]AccessEntry)
	t.order = nil

	for i := uint32(0); i < count; i++ {
		start := int(i) * accessRecordWidth
		end := start + accessRecordWidth
		if end > len(data) {
			return fmt.Errorf("nm: access table file %q truncated at record %d", t.path, i)
		}
		rec := data[start:end]

		filename := fixedStringFromBytes(rec[:accessFilenameWidth])
		username := fixedStringFromBytes(rec[accessFilenameWidth : accessFilenameWidth+accessUsernameWidth])
		level := AccessLevel(int32(binary.BigEndian.Uint32(rec[accessFilenameWidth+accessUsernameWidth:])))

		if _, ok := t.entries[filename]; !ok {
			t.order = append(t.order, filename)
		}
		t.entries[filename] = append(t.entries[filename], AccessEntry{Username: username, Level: level})
	}

	return nil
}

// Save rewrites the entire table to disk atomically: write to a temp file
// in the same directory, then rename over the real path.
func (t *AccessTable) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

func (t *AccessTable) saveLocked() error {
	var buf bytes.Buffer

	count := 0
	for _, filename := range t.order {
		count += len(t.entries[filename])
	}

	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(count))
	buf.Write(header)

	for _, filename := range t.order {
		for _, e := range t.entries[filename] {
			rec := make([]byte, accessRecordWidth)
			putFixedStringBytes(rec[:accessFilenameWidth], filename)
			putFixedStringBytes(rec[accessFilenameWidth:accessFilenameWidth+accessUsernameWidth], e.Username)
			binary.BigEndian.PutUint32(rec[accessFilenameWidth+accessUsernameWidth:], uint32(e.Level))
			buf.Write(rec)
		}
	}

	tmpPath := t.path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("nm: write access table temp file: %w", err)
	}
	if err := os.Rename(tmpPath, t.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("nm: rename access table file: %w", err)
	}
	return nil
}

func fixedStringFromBytes(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return string(b)
	}
	return string(b[:i])
}

func putFixedStringBytes(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// CreateOwner establishes filename's access record with owner as entry 0,
// failing if the file already has one.
func (t *AccessTable) CreateOwner(filename, owner string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[filename]; ok {
		return fmt.Errorf("nm: access record for %q already exists", filename)
	}
	t.entries[filename] = []AccessEntry{{Username: owner, Level: AccessWrite}}
	t.order = append(t.order, filename)
	return t.saveLocked()
}

// Delete removes filename's access record. The trie is untouched here;
// see FileIndex for the stale-entry behavior that follows.
func (t *AccessTable) Delete(filename string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[filename]; !ok {
		return fmt.Errorf("nm: no access record for %q", filename)
	}
	delete(t.entries, filename)
	for i, name := range t.order {
		if name == filename {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return t.saveLocked()
}

// Grant adds or updates target's access level for filename. Owner-only
// enforcement is the caller's responsibility.
func (t *AccessTable) Grant(filename, target string, level AccessLevel) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, ok := t.entries[filename]
	if !ok {
		return fmt.Errorf("nm: no access record for %q", filename)
	}
	for i, e := range entries {
		if e.Username == target {
			entries[i].Level = level
			t.entries[filename] = entries
			return t.saveLocked()
		}
	}
	t.entries[filename] = append(entries, AccessEntry{Username: target, Level: level})
	return t.saveLocked()
}

// Revoke removes target's non-owner entry from filename's record.
func (t *AccessTable) Revoke(filename, target string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, ok := t.entries[filename]
	if !ok {
		return fmt.Errorf("nm: no access record for %q", filename)
	}
	for i, e := range entries {
		if i == 0 {
			continue // owner entry is never removed via REM_ACCESS
		}
		if e.Username == target {
			t.entries[filename] = append(entries[:i], entries[i+1:]...)
			return t.saveLocked()
		}
	}
	return fmt.Errorf("nm: %q has no access entry for %q", filename, target)
}

// Owner returns filename's entry-0 username.
func (t *AccessTable) Owner(filename string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries, ok := t.entries[filename]
	if !ok || len(entries) == 0 {
		return "", false
	}
	return entries[0].Username, true
}

// IsOwner reports whether user is filename's entry-0 owner.
func (t *AccessTable) IsOwner(filename, user string) bool {
	owner, ok := t.Owner(filename)
	return ok && owner == user
}

// CheckAccess denies when the file has no record; otherwise a matching
// entry whose level is >= required allows.
func (t *AccessTable) CheckAccess(filename, user string, required AccessLevel) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, ok := t.entries[filename]
	if !ok {
		return false
	}
	for _, e := range entries {
		if e.Username == user && e.Level >= required {
			return true
		}
	}
	return false
}

// Exists reports whether filename currently has an access record.
func (t *AccessTable) Exists(filename string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[filename]
	return ok
}

// AllUsers returns every username appearing in any access record, deduped,
// for LIST_USERS.
func (t *AccessTable) AllUsers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, entries := range t.entries {
		for _, e := range entries {
			if !seen[e.Username] {
				seen[e.Username] = true
				out = append(out, e.Username)
			}
		}
	}
	return out
}

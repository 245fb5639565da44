package ss

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/distfs/distfs/internal/errs"
)

// Store persists file content to disk under a storage directory, one file
// per filename, with atomic writes (temp file + rename) so a crash mid-write
// never leaves a half-written file readable. Built on afero so tests can
// swap in an in-memory filesystem instead of touching the real disk.
type Store struct {
	fs   afero.Fs
	root string

	mu sync.Mutex
}

func NewStore(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, root: root}
}

func (s *Store) path(filename string) string {
	return filepath.Join(s.root, filepath.Base(filename))
}

// Create writes an initially empty file, failing if it already exists.
func (s *Store) Create(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("ss: create storage dir: %w", err)
	}
	if exists, _ := afero.Exists(s.fs, s.path(filename)); exists {
		return errs.NewExists(filename)
	}
	return afero.WriteFile(s.fs, s.path(filename), nil, 0o644)
}

// Read returns a file's full content.
func (s *Store) Read(filename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path(filename))
	if err != nil {
		return "", errs.NewNotFound(filename)
	}
	return string(data), nil
}

// Write atomically replaces filename's content.
func (s *Store) Write(filename, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(filename) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("ss: write temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path(filename)); err != nil {
		return fmt.Errorf("ss: rename into place: %w", err)
	}
	return nil
}

// Delete removes filename from disk.
func (s *Store) Delete(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path(filename)); err != nil {
		return errs.NewNotFound(filename)
	}
	return nil
}

// Exists reports whether filename has been created on this store.
func (s *Store) Exists(filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, _ := afero.Exists(s.fs, s.path(filename))
	return ok
}

// folderPath maps a client-supplied folder path to a real directory under
// the storage root. The path is rooted and cleaned first so ".." segments
// cannot escape the root.
func (s *Store) folderPath(p string) string {
	clean := filepath.Clean("/" + strings.TrimSpace(p))
	return filepath.Join(s.root, clean)
}

// CreateFolder makes the folder (and any missing parents) under the
// storage root.
func (s *Store) CreateFolder(p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.folderPath(p), 0o755); err != nil {
		return fmt.Errorf("ss: create folder: %w", err)
	}
	return nil
}

// ViewFolder lists a folder's entries, directories marked with a trailing
// slash.
func (s *Store) ViewFolder(p string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := afero.ReadDir(s.fs, s.folderPath(p))
	if err != nil {
		return nil, errs.NewNotFound(p)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return names, nil
}

// MoveToFolder relocates filename into folder p, keeping its base name.
func (s *Store) MoveToFolder(filename, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dst := filepath.Join(s.folderPath(p), filepath.Base(filename))
	if err := s.fs.Rename(s.path(filename), dst); err != nil {
		return errs.NewNotFound(filename)
	}
	return nil
}

// List returns every filename currently on disk, for registration ingest.
// A missing storage directory (a brand-new SS that has never created a
// file) is not an error: it reports no files.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ss: list storage dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

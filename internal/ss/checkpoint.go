package ss

import (
	"fmt"
	"sync"
	"time"

	"github.com/distfs/distfs/internal/errs"
)

// maxCheckpointsPerFile bounds how many tagged snapshots one file keeps.
const maxCheckpointsPerFile = 50

// Checkpoint is one named snapshot of a file's content.
type Checkpoint struct {
	Tag       string
	Content   string
	Username  string
	CreatedAt time.Time
}

// CheckpointStore holds per-file, tag-unique, capacity-bounded checkpoint
// lists. Tags are unique within a file but not across files; REVERT does not
// push an undo entry.
type CheckpointStore struct {
	mu    sync.Mutex
	byKey map[string][]Checkpoint // filename -> checkpoints, oldest first
}

func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{byKey: make(map[string][]Checkpoint)}
}

// Create adds a new checkpoint for filename. Fails if tag already exists for
// this file, or if the file already holds maxCheckpointsPerFile checkpoints.
func (c *CheckpointStore) Create(filename, tag, content, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.byKey[filename]
	for _, cp := range list {
		if cp.Tag == tag {
			return errs.NewExists(fmt.Sprintf("%s@%s", filename, tag))
		}
	}
	if len(list) >= maxCheckpointsPerFile {
		return errs.NewInvalidCommand()
	}
	c.byKey[filename] = append(list, Checkpoint{
		Tag:       tag,
		Content:   content,
		Username:  username,
		CreatedAt: time.Now(),
	})
	return nil
}

// View returns the checkpoint content for filename/tag.
func (c *CheckpointStore) View(filename, tag string) (Checkpoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cp := range c.byKey[filename] {
		if cp.Tag == tag {
			return cp, true
		}
	}
	return Checkpoint{}, false
}

// List returns one human-readable line per checkpoint in creation order:
// tag, creation time, and author.
func (c *CheckpointStore) List(filename string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.byKey[filename]
	lines := make([]string, len(list))
	for i, cp := range list {
		lines[i] = fmt.Sprintf("%s  %s  %s", cp.Tag, cp.CreatedAt.Format(time.ANSIC), cp.Username)
	}
	return lines
}

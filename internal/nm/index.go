package nm

import (
	"container/list"
	"sync"
)

// lruCache is a filename->SS-id LRU, capacity-bounded, move-to-front on
// both read and write. Eviction is strictly count-based: the least
// recently touched entry goes when the cache exceeds capacity.
type lruCache struct {
	maxEntries int

	mu    sync.Mutex
	ll    *list.List
	items map[string]*list.Element
}

type lruEntry struct {
	filename string
	ssID     string
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
	}
}

// add inserts or updates filename, moving it to the front and evicting the
// tail if the cache is now over capacity.
func (c *lruCache) add(filename, ssID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.items[filename]; ok {
		c.ll.MoveToFront(ele)
		ele.Value.(*lruEntry).ssID = ssID
		return
	}

	ele := c.ll.PushFront(&lruEntry{filename: filename, ssID: ssID})
	c.items[filename] = ele

	if c.ll.Len() > c.maxEntries {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).filename)
		}
	}
}

// get returns the cached SS id for filename and moves it to the front on
// hit; reads and updates both refresh recency.
func (c *lruCache) get(filename string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, ok := c.items[filename]
	if !ok {
		return "", false
	}
	c.ll.MoveToFront(ele)
	return ele.Value.(*lruEntry).ssID, true
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// snapshot returns filename->ssID for every cached entry as a map, so the
// recency order is not kept. Used only by the admin debug endpoint.
func (c *lruCache) snapshot() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, c.ll.Len())
	for e := c.ll.Front(); e != nil; e = e.Next() {
		entry := e.Value.(*lruEntry)
		out[entry.filename] = entry.ssID
	}
	return out
}

// trieNode is one byte-level node of the 256-way radix trie over filename
// bytes. An array of 256 child pointers is used instead of a map to give
// O(len(filename)) lookups with no hashing.
type trieNode struct {
	children [256]*trieNode
	ssID     string
	terminal bool
}

// trie maps filename -> SS id. It is append-only: DELETE never removes a
// terminal node, so a deleted name may still resolve to a stale SS until
// a later CREATE overwrites it.
type trie struct {
	mu   sync.Mutex
	root *trieNode
}

func newTrie() *trie {
	return &trie{root: &trieNode{}}
}

func (t *trie) insert(filename, ssID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	for i := 0; i < len(filename); i++ {
		b := filename[i]
		if node.children[b] == nil {
			node.children[b] = &trieNode{}
		}
		node = node.children[b]
	}
	node.terminal = true
	node.ssID = ssID
}

func (t *trie) lookup(filename string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	for i := 0; i < len(filename); i++ {
		b := filename[i]
		node = node.children[b]
		if node == nil {
			return "", false
		}
	}
	if !node.terminal {
		return "", false
	}
	return node.ssID, true
}

// FileIndex is the single entry point that resolves a filename to its
// hosting SS, in three steps: LRU, then trie, then a linear scan fallback
// against the registry. Lock ordering is LRU -> trie -> SS list; no more
// than one of those locks is held at a time, and never across network I/O.
type FileIndex struct {
	lru      *lruCache
	trie     *trie
	registry *Registry
}

// lruCapacity bounds the resolution cache.
const lruCapacity = 100

func NewFileIndex(registry *Registry) *FileIndex {
	return &FileIndex{
		lru:      newLRUCache(lruCapacity),
		trie:     newTrie(),
		registry: registry,
	}
}

// Resolve implements find_file_ss(name): LRU hit returns immediately without
// touching the trie; a trie hit populates the LRU; a miss falls back to a
// linear scan over the registry's SS file lists, populating both the trie
// and the LRU on success.
func (fi *FileIndex) Resolve(filename string) (*StorageServer, bool) {
	if ssID, ok := fi.lru.get(filename); ok {
		if ss, ok := fi.registry.GetStorageServer(ssID); ok {
			metrics.cacheHits.Inc()
			return ss, true
		}
		// Registry entry vanished underneath a stale cache hit; fall through
		// to the authoritative scan rather than report a dangling SS.
	}
	metrics.cacheMisses.Inc()

	if ssID, ok := fi.trie.lookup(filename); ok {
		if ss, ok := fi.registry.GetStorageServer(ssID); ok {
			fi.lru.add(filename, ssID)
			return ss, true
		}
	}

	if ss, ok := fi.registry.FindFileOwnerSS(filename); ok {
		fi.trie.insert(filename, ss.ID)
		fi.lru.add(filename, ss.ID)
		return ss, true
	}

	return nil, false
}

// Insert registers a newly created file's location, called on successful
// CREATE ingest.
func (fi *FileIndex) Insert(filename, ssID string) {
	fi.trie.insert(filename, ssID)
	fi.lru.add(filename, ssID)
}

// LRULen reports the current LRU occupancy, for metrics/tests.
func (fi *FileIndex) LRULen() int { return fi.lru.len() }

// LRUSnapshot exposes the LRU's current contents for the admin debug
// endpoint.
func (fi *FileIndex) LRUSnapshot() map[string]string { return fi.lru.snapshot() }

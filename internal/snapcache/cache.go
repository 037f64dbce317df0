// Package snapcache memoizes parsed graph snapshots by content hash,
// so watch-driven reloads of an unchanged file skip the decode and
// validation work. Rejections are cached too: a broken file that
// keeps firing watch events is rejected once and answered from the
// cache after that.
package snapcache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/recera/seurat/pkg/graph"
)

// DefaultMaxEntries bounds the cache when no limit is given.
const DefaultMaxEntries = 64

// Stats tracks cache performance counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}

type entry struct {
	snap *graph.Snapshot // pristine prototype, never handed out
	err  error
	seq  uint64
}

// Cache is a bounded in-memory snapshot cache. Get hands out deep
// copies, so callers own what they receive and the cached prototype
// never accumulates layout state.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	max     int
	seq     uint64
	stats   Stats
}

// New creates a cache holding at most max snapshots. Non-positive max
// takes DefaultMaxEntries.
func New(max int) *Cache {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Cache{
		entries: make(map[string]*entry, max),
		max:     max,
	}
}

// Key returns the content hash used to index data.
func Key(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Load returns the parsed snapshot for data, from cache when the
// bytes have been seen before. The returned snapshot is a fresh copy
// on every call.
func (c *Cache) Load(data []byte) (*graph.Snapshot, error) {
	key := Key(data)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.seq++
		e.seq = c.seq
		c.stats.Hits++
		snap, err := e.snap, e.err
		c.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return snap.Clone(), nil
	}
	c.stats.Misses++
	c.mu.Unlock()

	snap, err := graph.Parse(data)

	c.mu.Lock()
	c.seq++
	c.entries[key] = &entry{snap: snap, err: err, seq: c.seq}
	c.evictLocked()
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return snap.Clone(), nil
}

// evictLocked drops least recently used entries until the cache fits.
func (c *Cache) evictLocked() {
	for len(c.entries) > c.max {
		var victim string
		var oldest uint64
		for key, e := range c.entries {
			if victim == "" || e.seq < oldest {
				victim = key
				oldest = e.seq
			}
		}
		delete(c.entries, victim)
		c.stats.Evictions++
	}
}

// Stats returns a copy of the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.stats
	st.Entries = len(c.entries)
	return st
}

// Len returns the number of cached snapshots.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry. Counters keep accumulating.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry, c.max)
}

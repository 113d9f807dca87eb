package cache

import (
	"sync"

	"github.com/flowlens/flowlens/engine/core"
)

// LRU is a capacity-bounded analysis cache with least-recently-used
// eviction. A capacity of zero or less disables eviction entirely. Safe
// for concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*lruEntry
	head     *lruEntry // Most recently used.
	tail     *lruEntry // Least recently used.
	hits     int64
	misses   int64
}

// lruEntry is a doubly-linked list node for recency tracking
type lruEntry struct {
	key    string
	result *core.AnalysisResult
	prev   *lruEntry
	next   *lruEntry
}

// NewLRU creates a cache holding at most capacity results. Pass zero or
// a negative capacity for unbounded growth.
func NewLRU(capacity int) *LRU {
	return &LRU{
		capacity: capacity,
		entries:  make(map[string]*lruEntry),
	}
}

// Get returns the stored result for the pair, marking it most recently
// used on a hit.
func (c *LRU) Get(profileID, content string) (*core.AnalysisResult, bool) {
	key := Key(profileID, content)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.moveToFront(entry)
	return entry.result, true
}

// Put stores a result for the pair, evicting the least recently used
// entry once the capacity is exceeded. A nil result is ignored.
func (c *LRU) Put(profileID, content string, result *core.AnalysisResult) {
	if result == nil {
		return
	}
	key := Key(profileID, content)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.result = result
		c.moveToFront(entry)
		return
	}

	entry := &lruEntry{key: key, result: result}
	c.entries[key] = entry
	c.addToFront(entry)

	if c.capacity > 0 && len(c.entries) > c.capacity {
		c.evictTail()
	}
}

// Clear drops every entry and resets the recency list. Counters survive
// so hit rates stay meaningful across clears.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*lruEntry)
	c.head = nil
	c.tail = nil
}

// Len returns the current entry count
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:     c.hits,
		Misses:   c.misses,
		Entries:  len(c.entries),
		Capacity: c.capacity,
	}
}

func (c *LRU) moveToFront(entry *lruEntry) {
	if entry == c.head {
		return
	}
	c.removeFromList(entry)
	c.addToFront(entry)
}

func (c *LRU) addToFront(entry *lruEntry) {
	entry.prev = nil
	entry.next = c.head
	if c.head != nil {
		c.head.prev = entry
	}
	c.head = entry
	if c.tail == nil {
		c.tail = entry
	}
}

func (c *LRU) removeFromList(entry *lruEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}
}

func (c *LRU) evictTail() {
	if c.tail == nil {
		return
	}
	victim := c.tail
	c.removeFromList(victim)
	delete(c.entries, victim.key)
}

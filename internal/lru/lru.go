// Package lru implements a fixed-capacity least-recently-used cache
// with O(1) get and put. It memoizes expensive per-entry rendering
// precomputation (search-highlight segmentation) for the UI layer.
package lru

// node is an intrusive doubly-linked list element ordered by recency.
type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// Cache maps K to V, evicting the least-recently-used pair once the
// capacity is reached. The zero value is not usable; call New.
type Cache[K comparable, V any] struct {
	capacity int
	items    map[K]*node[K, V]
	head     *node[K, V] // most recently used
	tail     *node[K, V] // least recently used

	hits      uint64
	misses    uint64
	evictions uint64
}

// Stats holds cache effectiveness counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// New returns a cache holding at most capacity pairs. A capacity below
// one is clamped to one.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]*node[K, V], capacity),
	}
}

// Get returns the cached value for key. A hit promotes the pair to
// most-recently-used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	n, ok := c.items[key]
	if !ok {
		var zero V
		c.misses++
		return zero, false
	}
	c.hits++
	c.moveToFront(n)
	return n.value, true
}

// Put inserts or updates key. Inserting into a full cache evicts
// exactly one pair, the least-recently-used, first.
func (c *Cache[K, V]) Put(key K, value V) {
	if n, ok := c.items[key]; ok {
		n.value = value
		c.moveToFront(n)
		return
	}
	if len(c.items) >= c.capacity {
		c.evict()
	}
	n := &node[K, V]{key: key, value: value}
	c.items[key] = n
	c.pushFront(n)
}

// Len reports how many pairs are currently cached.
func (c *Cache[K, V]) Len() int { return len(c.items) }

// Stats returns a snapshot of the hit/miss/eviction counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{Hits: c.hits, Misses: c.misses, Evictions: c.evictions, Size: len(c.items)}
}

// Clear drops all cached pairs. Counters are kept.
func (c *Cache[K, V]) Clear() {
	c.items = make(map[K]*node[K, V], c.capacity)
	c.head = nil
	c.tail = nil
}

func (c *Cache[K, V]) evict() {
	lru := c.tail
	if lru == nil {
		return
	}
	c.unlink(lru)
	delete(c.items, lru.key)
	c.evictions++
}

func (c *Cache[K, V]) moveToFront(n *node[K, V]) {
	if c.head == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

func (c *Cache[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *Cache[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}

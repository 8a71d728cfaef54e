// Package cache provides a bounded, thread-safe key/value cache.
//
// Two eviction policies are offered. LRU evicts the least recently accessed
// entry and is used for compiled templates. FIFO evicts the oldest inserted
// entry regardless of access and is used for compiled regular expressions,
// where reads vastly outnumber inserts and must not take the write lock.
//
// # Example
//
//	c := cache.New[string, *regexp.Regexp](1000, cache.FIFO)
//	re, err := c.GetOrCreate(pattern, func() (*regexp.Regexp, error) {
//	    return regexp.Compile(pattern)
//	})
package cache

import (
	"container/list"
	"sync"
)

// Policy selects the eviction strategy of a Cache.
type Policy uint8

const (
	// LRU evicts the least recently used entry.
	LRU Policy = iota
	// FIFO evicts the oldest inserted entry.
	FIFO
)

const defaultCapacity = 256

// entry is the payload of a list element.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a bounded cache. Once the capacity is reached, inserting a new key
// evicts one entry according to the cache policy.
//
// A Cache is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.RWMutex
	capacity int
	policy   Policy
	ll       *list.List
	items    map[K]*list.Element
}

// New creates a cache with the given capacity and policy.
// If capacity <= 0, a default of 256 is used.
func New[K comparable, V any](capacity int, policy Policy) *Cache[K, V] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Cache[K, V]{
		capacity: capacity,
		policy:   policy,
		ll:       list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Get retrieves a value from the cache.
// Under LRU the entry is moved to the front of the recency list.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	// FIFO never reorders, and an entry already at the front needs no promotion.
	skip := ok && (c.policy == FIFO || c.ll.Front() == el)
	var v V
	if ok {
		v = el.Value.(*entry[K, V]).value
	}
	c.mu.RUnlock()
	if !ok || skip {
		return v, ok
	}

	// Promote under write lock; re-check in case of concurrent eviction.
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok = c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry[K, V]).value, true
}

// Set inserts or replaces a value.
// If at capacity, one entry is evicted first.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *Cache[K, V]) setLocked(key K, value V) {
	if el, ok := c.items[key]; ok {
		el.Value.(*entry[K, V]).value = value
		if c.policy == LRU {
			c.ll.MoveToFront(el)
		}
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry[K, V]{key: key, value: value})
	c.items[key] = el
}

// GetOrCreate returns the cached value for key, or calls create to build it,
// caches the result and returns it. Errors are not cached.
//
// create runs outside the lock, so two goroutines missing on the same key may
// both build a value; the first one stored wins.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		return el.Value.(*entry[K, V]).value, nil
	}
	c.setLocked(key, v)
	return v, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[K]*list.Element, c.capacity)
}

// evictLocked removes the entry at the back of the list: the least recently
// used one under LRU, the oldest one under FIFO.
// Must be called with c.mu held for writing.
func (c *Cache[K, V]) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
}

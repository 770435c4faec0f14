// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package record

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// lruCache is a thread-safe, fixed-size LRU cache.
//
// Description:
//
//	Evicts the least recently used entry when capacity is reached.
//	Uses container/list for O(1) access, promotion, and eviction.
//	Both Get and Set promote the entry to most-recently-used.
//
// Thread Safety: All methods are safe for concurrent use.
type lruCache[K comparable, V any] struct {
	mu       sync.RWMutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // Front = most recent, Back = least recent

	// Stats (atomic for lock-free reads)
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// lruEntry holds the key-value pair in the list.
type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// newLRUCache creates an LRU cache with the given capacity.
// Capacity must be > 0; non-positive values fall back to 100.
func newLRUCache[K comparable, V any](capacity int) *lruCache[K, V] {
	if capacity <= 0 {
		capacity = 100
	}
	return &lruCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

// get retrieves a value and moves it to the front of the LRU list.
//
// Outputs:
//   - V: The value (zero value if not found).
//   - bool: True if the key was found.
func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		c.hits.Add(1)
		return elem.Value.(*lruEntry[K, V]).value, true
	}

	c.misses.Add(1)
	var zero V
	return zero, false
}

// set adds or updates a value. Existing keys are updated in place and
// promoted; when the cache is full the least recently used entry is
// evicted first.
func (c *lruCache[K, V]) set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*lruEntry[K, V]).value = value
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	entry := &lruEntry[K, V]{key: key, value: value}
	elem := c.order.PushFront(entry)
	c.items[key] = elem
}

// contains reports whether the key is cached without promoting it or
// touching the hit/miss counters.
func (c *lruCache[K, V]) contains(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[key]
	return ok
}

// purge clears all entries and resets hit/miss/eviction counters.
func (c *lruCache[K, V]) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*list.Element, c.capacity)
	c.order.Init()
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// len returns the number of entries in the cache.
func (c *lruCache[K, V]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// stats returns hit/miss counters since creation or last purge.
// Lock-free.
func (c *lruCache[K, V]) stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// evictionCount returns the number of capacity evictions since creation
// or last purge. Lock-free.
func (c *lruCache[K, V]) evictionCount() int64 {
	return c.evictions.Load()
}

// evictOldest removes the least recently used entry.
// Caller must hold the write lock.
func (c *lruCache[K, V]) evictOldest() {
	if elem := c.order.Back(); elem != nil {
		c.removeElement(elem)
		c.evictions.Add(1)
	}
}

// removeElement removes an element from both the list and map.
// Caller must hold the write lock.
func (c *lruCache[K, V]) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	entry := elem.Value.(*lruEntry[K, V])
	delete(c.items, entry.key)
}

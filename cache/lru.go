// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

import (
	"container/list"
	"sync"
)

// entry is one cached value and the key it is filed under.
type entry[V any] struct {
	key   string
	value V
}

// LRU is a least-recently-used cache with a fixed capacity.  The cache
// can be safely accessed from multiple goroutines.
type LRU[V any] struct {
	size      int
	lock      sync.RWMutex
	evictList *list.List
	index     map[string]*list.Element
}

// NewLRU creates an empty cache holding at most size items.
func NewLRU[V any](size int) *LRU[V] {
	return &LRU[V]{
		size:      size,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Get retrieves an item from the cache.  If it is not present, calls
// the fetch function, and if that succeeds, saves the item and
// returns it.  This should return an error only if the item is not
// present and the fetch function returns an error.
//
// fetch runs without the cache lock held, so concurrent misses fetch
// concurrently, and two misses on the same key may both call fetch.
func (lru *LRU[V]) Get(key string, fetch func(string) (V, error)) (V, error) {
	if value, present := lru.touch(key); present {
		return value, nil
	}
	value, err := fetch(key)
	if err != nil {
		return value, err
	}
	lru.Put(key, value)
	return value, nil
}

// touch returns a cached item and marks it most recently used.  This
// needs the writer lock, since it moves the item to the back of the
// list.
func (lru *LRU[V]) touch(key string) (V, bool) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[key]; present {
		lru.evictList.MoveToBack(element)
		return element.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Peek looks for an item in the cache.  This runs under a reader
// lock, and so can run concurrently with itself but not with calls
// to Put or with cache hits in Get.  This does not affect the recency of the item.
func (lru *LRU[V]) Peek(key string) (V, bool) {
	lru.lock.RLock()
	defer lru.lock.RUnlock()

	if element, present := lru.index[key]; present {
		return element.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Put adds an item to the cache, possibly evicting something.
func (lru *LRU[V]) Put(key string, value V) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	// Are we just updating an existing item?
	if element, present := lru.index[key]; present {
		element.Value.(*entry[V]).value = value
		lru.evictList.MoveToBack(element)
		return
	}
	lru.add(key, value)
}

// Remove takes an item out of the cache.  It does nothing if that
// key does not exist.
func (lru *LRU[V]) Remove(key string) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[key]; present {
		delete(lru.index, key)
		lru.evictList.Remove(element)
	}
}

// Purge empties the cache.
func (lru *LRU[V]) Purge() {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	lru.evictList.Init()
	lru.index = make(map[string]*list.Element)
}

// Len returns the number of cached items.
func (lru *LRU[V]) Len() int {
	lru.lock.RLock()
	defer lru.lock.RUnlock()
	return len(lru.index)
}

// add is an internal helper, running under the write lock, that adds a
// new item to the cache.  The key is known to not already exist.
func (lru *LRU[V]) add(key string, value V) {
	element := lru.evictList.PushBack(&entry[V]{key: key, value: value})
	lru.index[key] = element

	// If this caused the cache to go over size, start evicting items
	for len(lru.index) > lru.size && lru.evictList.Len() > 0 {
		head := lru.evictList.Front()
		delete(lru.index, head.Value.(*entry[V]).key)
		lru.evictList.Remove(head)
	}
}

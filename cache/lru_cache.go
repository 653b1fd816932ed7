// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package cache holds read-through caches for immutable registry data.
package cache

import (
	"fmt"
	"sync"

	"github.com/luxfi/geth/common/lru"
	"golang.org/x/sync/singleflight"
)

// LRUCache is a bounded read-through cache for values that never change once
// they exist. Fetch errors are not cached.
type LRUCache[K comparable, V any] struct {
	cache   *lru.Cache[K, V]
	lock    sync.RWMutex
	sfGroup singleflight.Group
}

func NewLRUCache[K comparable, V any](size int) *LRUCache[K, V] {
	return &LRUCache[K, V]{
		cache: lru.NewCache[K, V](size),
	}
}

// Get returns the cached value for key, otherwise fetches it using fetchFunc.
// Concurrent fetches for the same key are deduplicated.
// If [invalidate] is true, the value is cleared from the cache prior to fetching.
func (c *LRUCache[K, V]) Get(key K, fetchFunc func(K) (V, error), invalidate bool) (V, error) {
	if invalidate {
		c.lock.Lock()
		c.cache.Remove(key)
		c.lock.Unlock()
	} else {
		c.lock.RLock()
		if value, found := c.cache.Get(key); found {
			c.lock.RUnlock()
			return value, nil
		}
		c.lock.RUnlock()
	}

	v, err, _ := c.sfGroup.Do(keyToString(key), func() (interface{}, error) {
		newValue, fetchErr := fetchFunc(key)
		if fetchErr != nil {
			return *new(V), fetchErr
		}

		c.lock.Lock()
		c.cache.Add(key, newValue)
		c.lock.Unlock()

		return newValue, nil
	})
	if err != nil {
		return *new(V), err
	}
	return v.(V), nil
}

// Add stores a value without fetching it.
func (c *LRUCache[K, V]) Add(key K, value V) {
	c.lock.Lock()
	c.cache.Add(key, value)
	c.lock.Unlock()
}

// Len returns the number of cached entries.
func (c *LRUCache[K, V]) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.cache.Len()
}

// keyToString is defined to allow for both fmt.Stringer and primitive key types.
func keyToString[K comparable](key K) string {
	if s, ok := any(key).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", key)
}

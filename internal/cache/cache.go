// Package cache provides an in-memory TTL cache for fetched documents.
package cache

import (
	"sync"
	"time"
)

// Entry represents a cached value
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// IsExpired returns true if the entry has expired
func (e *Entry[V]) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// MemoryCache is an in-memory cache implementation with TTL support
type MemoryCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]*Entry[V]

	// For background cleanup
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once // Ensures Stop() is idempotent
}

// New creates a new in-memory cache and starts its cleanup loop.
// Call Stop to release the loop.
func New[V any]() *MemoryCache[V] {
	return NewWithInterval[V](time.Minute)
}

// NewWithInterval creates a cache that sweeps expired entries every interval.
func NewWithInterval[V any](interval time.Duration) *MemoryCache[V] {
	c := &MemoryCache[V]{
		entries:         make(map[string]*Entry[V]),
		cleanupInterval: interval,
		stopCleanup:     make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a value from the cache
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		var zero V
		return zero, false
	}

	if entry.IsExpired() {
		c.Invalidate(key)
		var zero V
		return zero, false
	}

	return entry.Value, true
}

// Set stores a value with the given TTL
func (c *MemoryCache[V]) Set(key string, v V, ttl time.Duration) {
	entry := &Entry[V]{
		Value:     v,
		ExpiresAt: time.Now().Add(ttl),
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Invalidate removes an entry from the cache
func (c *MemoryCache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll removes all entries from the cache
func (c *MemoryCache[V]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry[V])
	c.mu.Unlock()
}

func (c *MemoryCache[V]) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *MemoryCache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}
}

// Stop stops the background cleanup goroutine
// Safe to call multiple times
func (c *MemoryCache[V]) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCleanup)
	})
}

// Len returns the number of entries in the cache (for testing)
func (c *MemoryCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

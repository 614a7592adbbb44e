package data

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CacheEntry is one cached run result.
type CacheEntry[T any] struct {
	Value     T
	ExpiresAt time.Time
}

// ResultCache keeps routing results in memory so the API can serve follow-up
// requests (per-station series) without rerunning the engine.
type ResultCache[T any] struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry[T]
	ttl   time.Duration
	stop  chan struct{}
}

// DefaultCacheTTL applies when RESULT_CACHE_TTL is unset or invalid.
const DefaultCacheTTL = time.Hour

// CacheTTLFromEnv reads RESULT_CACHE_TTL as a Go duration.
func CacheTTLFromEnv() time.Duration {
	if ttlStr := os.Getenv("RESULT_CACHE_TTL"); ttlStr != "" {
		if parsed, err := time.ParseDuration(ttlStr); err == nil && parsed > 0 {
			return parsed
		}
	}
	return DefaultCacheTTL
}

// NewResultCache starts a cache with a background cleanup goroutine that runs
// every cleanupEvery until Close.
func NewResultCache[T any](ttl, cleanupEvery time.Duration) *ResultCache[T] {
	c := &ResultCache[T]{
		store: make(map[string]*CacheEntry[T]),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	go c.cleanup(cleanupEvery)
	return c
}

// Put stores v under a fresh run id and returns the id.
func (c *ResultCache[T]) Put(v T) string {
	id := uuid.New().String()
	c.Set(id, v)
	return id
}

// Get retrieves a cached value if available and not expired.
func (c *ResultCache[T]) Get(key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists {
		return zero, false
	}
	if time.Now().After(entry.ExpiresAt) {
		return zero, false
	}
	return entry.Value, true
}

func (c *ResultCache[T]) Set(key string, v T) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &CacheEntry[T]{
		Value:     v,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

// Len counts entries, expired ones included until the next cleanup.
func (c *ResultCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Clear removes all entries from the cache.
func (c *ResultCache[T]) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry[T])
}

// Close stops the cleanup goroutine.
func (c *ResultCache[T]) Close() {
	close(c.stop)
}

func (c *ResultCache[T]) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

func (c *ResultCache[T]) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, key)
		}
	}
}

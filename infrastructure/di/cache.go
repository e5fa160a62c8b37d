package di

import (
	"context"
	"sync"
	"time"

	"github.com/TomerAberbach/website/application/ports"
)

const cleanupInterval = time.Minute

// InMemoryCache holds query results between graph builds. The graph service
// clears it after every build.
type InMemoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	now   func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache and starts its cleanup loop
func NewInMemoryCache() *InMemoryCache {
	cache := &InMemoryCache{
		items: make(map[string]cacheItem),
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	go cache.cleanupExpired(cleanupInterval)

	return cache
}

// Get retrieves a value from cache
func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || c.now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

// Set stores a value in cache with TTL in seconds
func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem{
		value:     value,
		expiresAt: c.now().Add(time.Duration(ttl) * time.Second),
	}
	return nil
}

// Clear removes all values from cache
func (c *InMemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]cacheItem)
	return nil
}

// Len returns the number of stored items, expired or not
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup loop
func (c *InMemoryCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanupExpired periodically removes expired items
func (c *InMemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *InMemoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

// MemoryRenderCache is a process-lifetime render cache used when no render
// cache directory is configured
type MemoryRenderCache struct {
	mu      sync.RWMutex
	entries map[string]*ports.Rendered
}

// NewMemoryRenderCache creates an empty render cache
func NewMemoryRenderCache() *MemoryRenderCache {
	return &MemoryRenderCache{entries: make(map[string]*ports.Rendered)}
}

// Get implements ports.RenderCache
func (c *MemoryRenderCache) Get(_ context.Context, digest string) (*ports.Rendered, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rendered, ok := c.entries[digest]
	return rendered, ok, nil
}

// Put implements ports.RenderCache
func (c *MemoryRenderCache) Put(_ context.Context, digest string, rendered *ports.Rendered) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[digest] = rendered
	return nil
}

var (
	_ ports.Cache       = (*InMemoryCache)(nil)
	_ ports.RenderCache = (*MemoryRenderCache)(nil)
)

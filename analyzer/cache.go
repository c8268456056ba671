package analyzer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"sync"
	"time"
)

const (
	DefaultCacheTTL     = 30 * time.Minute
	DefaultMaxCacheSize = 1000
	cleanupInterval     = 5 * time.Minute
)

// Cache stores vitals-free analyses keyed by cacheKey.
type Cache interface {
	Name() string
	Get(ctx context.Context, key string) (Analysis, bool, error)
	Set(ctx context.Context, key string, a Analysis) error
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
	TTL() time.Duration
	SetTTL(ttl time.Duration)
	Close() error
}

// CacheStats describes the cache and how well it is doing.
type CacheStats struct {
	Backend    string        `json:"backend"`
	Entries    int           `json:"entries"`
	MaxEntries int           `json:"maxEntries,omitempty"`
	TTL        time.Duration `json:"ttl"`
	Hits       int64         `json:"hits"`
	Misses     int64         `json:"misses"`
}

func cacheKey(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

type cacheEntry struct {
	analysis  Analysis
	timestamp time.Time
}

// MemoryCache is a process-local cache with TTL expiry and oldest-first
// eviction once it grows past its size limit.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryCache returns a cache and starts its periodic cleanup.
// Non-positive arguments fall back to the defaults.
func NewMemoryCache(ttl time.Duration, maxSize int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxCacheSize
	}
	c := &MemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go c.periodicCleanup()
	return c
}

func (c *MemoryCache) Name() string { return "memory" }

func (c *MemoryCache) periodicCleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes expired entries, then the oldest ones while the cache is
// over its size limit.
func (c *MemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) >= c.ttl {
			delete(c.entries, key)
		}
	}
	if len(c.entries) <= c.maxSize {
		return
	}

	type aged struct {
		key       string
		timestamp time.Time
	}
	entries := make([]aged, 0, len(c.entries))
	for key, entry := range c.entries {
		entries = append(entries, aged{key, entry.timestamp})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].timestamp.Before(entries[j].timestamp)
	})
	for i := 0; i < len(entries)-c.maxSize; i++ {
		delete(c.entries, entries[i].key)
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Analysis, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.timestamp) >= c.ttl {
		return Analysis{}, false, nil
	}
	return entry.analysis, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, a Analysis) error {
	c.mu.Lock()
	c.entries[key] = cacheEntry{analysis: a, timestamp: c.now()}
	over := len(c.entries) > c.maxSize
	c.mu.Unlock()

	if over {
		c.cleanup()
	}
	return nil
}

func (c *MemoryCache) Clear(context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Len(context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// MaxSize is the entry limit enforced by eviction.
func (c *MemoryCache) MaxSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxSize
}

// SetMaxSize changes the entry limit and evicts down to it.
func (c *MemoryCache) SetMaxSize(size int) {
	if size <= 0 {
		return
	}
	c.mu.Lock()
	c.maxSize = size
	c.mu.Unlock()
	c.cleanup()
}

func (c *MemoryCache) TTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ttl
}

// SetTTL changes the TTL and drops entries already older than it.
func (c *MemoryCache) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.ttl = ttl
	c.mu.Unlock()
	c.cleanup()
}

// Close stops the periodic cleanup.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/bluele/gcache"
	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"
)

// DefaultCapacity bounds the number of entries before LRU eviction.
const DefaultCapacity = 1000

// Cache provides thread-safe in-memory caching with TTL on top of an LRU.
// Entries stay readable through GetWithMetadata for one extra TTL after they
// go stale, then the LRU drops them.
type Cache struct {
	lru gcache.Cache
}

// CacheEntry represents a cached item with metadata
type CacheEntry struct {
	Key       string        `json:"key"`
	Data      []byte        `json:"data"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	TTL       time.Duration `json:"ttl"`
	Source    string        `json:"source"`
}

// NewCache creates a new in-memory cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		lru: gcache.New(capacity).LRU().Build(),
	}
}

// Set stores data in cache for ttl
func (c *Cache) Set(key string, data interface{}, ttl time.Duration, source string) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data for cache: %w", err)
	}

	now := time.Now()
	entry := &CacheEntry{
		Key:       key,
		Data:      jsonData,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		TTL:       ttl,
		Source:    source,
	}

	return c.lru.SetWithExpire(key, entry, 2*ttl)
}

// Get retrieves data from cache if not stale
func (c *Cache) Get(key string, result interface{}) (bool, error) {
	entry, ok := c.entry(key)
	if !ok || time.Now().After(entry.ExpiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(entry.Data, result); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	return true, nil
}

// IsStale checks if cache entry is stale (past expiration)
func (c *Cache) IsStale(key string) bool {
	entry, ok := c.entry(key)
	if !ok {
		return true
	}
	return time.Now().After(entry.ExpiresAt)
}

// GetWithMetadata retrieves data and cache metadata
func (c *Cache) GetWithMetadata(key string, result interface{}) (*CacheEntry, bool, error) {
	entry, ok := c.entry(key)
	if !ok {
		return nil, false, nil
	}

	// Return metadata even if stale (caller decides how to handle)
	if result != nil {
		if err := json.Unmarshal(entry.Data, result); err != nil {
			return entry, true, fmt.Errorf("failed to unmarshal cached data: %w", err)
		}
	}

	return entry, true, nil
}

// Delete removes an entry from cache
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}

// Clear removes all entries from cache
func (c *Cache) Clear() {
	c.lru.Purge()
}

// Keys returns all live cache keys
func (c *Cache) Keys() []string {
	raw := c.lru.Keys(true)
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		if s, ok := k.(string); ok {
			keys = append(keys, s)
		}
	}
	return keys
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	now := time.Now()
	stats := CacheStats{
		HitCount:  c.lru.HitCount(),
		MissCount: c.lru.MissCount(),
	}

	for _, v := range c.lru.GetALL(true) {
		entry, ok := v.(*CacheEntry)
		if !ok {
			continue
		}
		stats.TotalEntries++
		if now.After(entry.ExpiresAt) {
			stats.StaleEntries++
		} else {
			stats.FreshEntries++
		}

		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
		if entry.CreatedAt.After(stats.NewestEntry) {
			stats.NewestEntry = entry.CreatedAt
		}
	}

	return stats
}

// CleanupStale removes entries that are past their stale window, one TTL
// after ExpiresAt. Stale entries inside the window are kept.
func (c *Cache) CleanupStale() int {
	now := time.Now()
	var removed int

	for k, v := range c.lru.GetALL(false) {
		entry, ok := v.(*CacheEntry)
		if !ok || now.After(entry.ExpiresAt.Add(entry.TTL)) {
			if c.lru.Remove(k) {
				removed++
			}
		}
	}

	return removed
}

// StartPeriodicCleanup starts a goroutine that periodically cleans up stale
// entries until ctx is done.
func (c *Cache) StartPeriodicCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				err, _ := errors.ParseStack(debug.Stack())
				skipFrames := 3
				numFrames := 5
				logging.Errorw(ctx, "Cache cleanup: recovered from panic",
					"error", r, "error.stack_trace", err.MinimalStack(skipFrames, numFrames))
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := c.CleanupStale(); removed > 0 {
					logging.Infow(ctx, "Cache cleanup: removed stale entries", "removed", removed)
				}
			}
		}
	}()
}

func (c *Cache) entry(key string) (*CacheEntry, bool) {
	v, err := c.lru.GetIFPresent(key)
	if err != nil {
		return nil, false
	}
	entry, ok := v.(*CacheEntry)
	return entry, ok
}

// CacheStats provides cache usage statistics
type CacheStats struct {
	TotalEntries int       `json:"total_entries"`
	FreshEntries int       `json:"fresh_entries"`
	StaleEntries int       `json:"stale_entries"`
	HitCount     uint64    `json:"hit_count"`
	MissCount    uint64    `json:"miss_count"`
	OldestEntry  time.Time `json:"oldest_entry"`
	NewestEntry  time.Time `json:"newest_entry"`
}

// Package cache provides the adaptive TTL+LRU cache that sits in front of
// the usage source and memoizes derived computations.
package cache

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/j-veylop/claude-quota-tui/internal/models"
)

// TTL adaptation: the base TTL widens while the rolling hit rate stays high,
// trading freshness for fewer source invocations under stable conditions.
const (
	hitRateWindow = 100

	widenThreshold = 0.70
	widenFactor    = 2.0
	midThreshold   = 0.40
	midFactor      = 1.5
)

type entry struct {
	value     any
	createdAt time.Time
}

// Stats describes the cache state for the info tab and logs.
type Stats struct {
	EffectiveTTL time.Duration
	Hits         int
	Misses       int
	Size         int
	Capacity     int
	HitRate      float64
}

// Cache is a TTL+LRU cache with a hit-rate-driven effective TTL. Operations
// never fail; a miss just means the caller recomputes. Safe for concurrent
// use: the poll goroutine, the watcher and the UI all share one instance.
type Cache struct {
	mu       sync.Mutex
	store    *lru.Cache[string, entry]
	nowFunc  func() time.Time
	recent   []bool
	baseTTL  time.Duration
	capacity int
	recentAt int
	recentN  int
	hits     int
	misses   int
}

// New creates a cache with the given entry capacity and base TTL. The
// capacity is a hard bound; the LRU store evicts before exceeding it.
func New(capacity int, baseTTL time.Duration) (*Cache, error) {
	if baseTTL <= 0 {
		return nil, fmt.Errorf("base TTL must be positive, got %v", baseTTL)
	}
	store, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}
	return &Cache{
		store:    store,
		nowFunc:  time.Now,
		recent:   make([]bool, hitRateWindow),
		baseTTL:  baseTTL,
		capacity: capacity,
	}, nil
}

// Get returns the value stored under key. An entry older than the current
// effective TTL counts as a miss and is purged.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store.Get(key)
	if !ok {
		c.recordLookup(false)
		return nil, false
	}

	if c.nowFunc().Sub(e.createdAt) > c.effectiveTTLLocked() {
		c.store.Remove(key)
		c.recordLookup(false)
		return nil, false
	}

	c.recordLookup(true)
	return e.value, true
}

// Set stores value under key, evicting the least-recently-used entry when
// the cache is full.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Add(key, entry{value: value, createdAt: c.nowFunc()})
}

// Purge drops every entry. Lookup statistics survive; a purge is about
// freshness, not accounting.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Purge()
}

// Stats returns a point-in-time view of the cache.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:         c.hits,
		Misses:       c.misses,
		Size:         c.store.Len(),
		Capacity:     c.capacity,
		HitRate:      c.rollingHitRateLocked(),
		EffectiveTTL: c.effectiveTTLLocked(),
	}
}

// EffectiveTTL returns the TTL currently applied to lookups.
func (c *Cache) EffectiveTTL() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveTTLLocked()
}

func (c *Cache) recordLookup(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.recent[c.recentAt] = hit
	c.recentAt = (c.recentAt + 1) % len(c.recent)
	if c.recentN < len(c.recent) {
		c.recentN++
	}
}

func (c *Cache) rollingHitRateLocked() float64 {
	if c.recentN == 0 {
		return 0
	}
	hits := 0
	for i := 0; i < c.recentN; i++ {
		if c.recent[i] {
			hits++
		}
	}
	return float64(hits) / float64(c.recentN)
}

func (c *Cache) effectiveTTLLocked() time.Duration {
	rate := c.rollingHitRateLocked()
	switch {
	case rate >= widenThreshold:
		return time.Duration(float64(c.baseTTL) * widenFactor)
	case rate >= midThreshold:
		return time.Duration(float64(c.baseTTL) * midFactor)
	default:
		return c.baseTTL
	}
}

// BlocksKey derives a cache key from block content so that identical inputs
// across ticks reuse a cached derived value even as wall-clock time advances.
// The key covers every field that can change the derived answer; fetch order
// does not matter.
func BlocksKey(prefix string, blocks []models.UsageBlock, parts ...string) string {
	sorted := make([]models.UsageBlock, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	h := sha256.New()
	for _, b := range sorted {
		end := "open"
		if b.EndTime != nil {
			end = fmt.Sprintf("%d", b.EndTime.UnixNano())
		}
		fmt.Fprintf(h, "%s|%d|%s|%t|%t|%d;", b.ID, b.StartTime.UnixNano(), end, b.IsActive, b.IsGap, b.TotalUnits)
	}
	for _, p := range parts {
		io.WriteString(h, p)
		io.WriteString(h, ";")
	}
	return fmt.Sprintf("%s_%x", prefix, h.Sum(nil)[:8])
}

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/menuinzicht/backend/internal/application/usecase/analytics"
)

type memoryEntry struct {
	slots     []analytics.SlotAggregate
	fetchedAt time.Time
}

// MemoryIntervalCache is an in-process interval cache used when Redis is not
// configured.
type MemoryIntervalCache struct {
	mu      sync.RWMutex
	entries map[string]map[analytics.SlotGrid]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryIntervalCache creates a new in-memory interval cache.
// A zero ttl keeps entries until the date is invalidated.
func NewMemoryIntervalCache(ttl time.Duration) *MemoryIntervalCache {
	return &MemoryIntervalCache{
		entries: make(map[string]map[analytics.SlotGrid]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached series of date on grid.
func (c *MemoryIntervalCache) Get(_ context.Context, date string, grid analytics.SlotGrid) ([]analytics.SlotAggregate, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[date][grid]
	if !ok {
		return nil, false, nil
	}
	if c.ttl > 0 && c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false, nil
	}
	return entry.slots, true, nil
}

// Set stores the series of date on grid.
func (c *MemoryIntervalCache) Set(_ context.Context, date string, grid analytics.SlotGrid, slots []analytics.SlotAggregate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	byInterval, ok := c.entries[date]
	if !ok {
		byInterval = make(map[analytics.SlotGrid]memoryEntry)
		c.entries[date] = byInterval
	}
	byInterval[grid] = memoryEntry{slots: slots, fetchedAt: c.now()}
	return nil
}

// Invalidate drops every cached series of date.
func (c *MemoryIntervalCache) Invalidate(_ context.Context, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, date)
	return nil
}

// Ensure MemoryIntervalCache implements analytics.IntervalCache.
var _ analytics.IntervalCache = (*MemoryIntervalCache)(nil)

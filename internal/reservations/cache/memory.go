package cache

import (
	"context"
	"sync"
	"time"

	"campsite/pkg/daterange"
)

// MemoryCache is the in-process AvailabilityCache. It backs tests and the
// single-instance deployment mode where no Redis address is configured.
type MemoryCache struct {
	mu          sync.RWMutex
	occupied    map[time.Time]struct{}
	initialized bool
	expiresAt   time.Time
	ttl         time.Duration
	now         func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return NewMemoryCacheWithClock(ttl, time.Now)
}

func NewMemoryCacheWithClock(ttl time.Duration, now func() time.Time) *MemoryCache {
	return &MemoryCache{
		occupied: make(map[time.Time]struct{}),
		ttl:      ttl,
		now:      now,
	}
}

func (c *MemoryCache) IsInitialized(_ context.Context) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.live(), nil
}

func (c *MemoryCache) Initialize(_ context.Context, dates []time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.occupied = make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		c.occupied[daterange.Normalize(d)] = struct{}{}
	}
	c.initialized = len(dates) > 0
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

func (c *MemoryCache) AddDates(_ context.Context, dates []time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.live() {
		c.occupied = make(map[time.Time]struct{}, len(dates))
		c.expiresAt = c.now().Add(c.ttl)
	}
	for _, d := range dates {
		c.occupied[daterange.Normalize(d)] = struct{}{}
	}
	if len(c.occupied) > 0 {
		c.initialized = true
	}
	return nil
}

func (c *MemoryCache) RemoveDates(_ context.Context, dates []time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.live() {
		return nil
	}
	for _, d := range dates {
		delete(c.occupied, daterange.Normalize(d))
	}
	return nil
}

func (c *MemoryCache) OccupiedDates(_ context.Context) (map[time.Time]struct{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[time.Time]struct{}, len(c.occupied))
	if !c.live() {
		return out, nil
	}
	for d := range c.occupied {
		out[d] = struct{}{}
	}
	return out, nil
}

// live reports whether the cache holds a non-expired occupied set. Callers
// must hold at least a read lock.
func (c *MemoryCache) live() bool {
	return c.initialized && c.now().Before(c.expiresAt)
}

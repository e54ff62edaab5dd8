package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/godilite/caseops/pkg/cache"
)

// TrackingCache stores JSON-encoded values in memory the way the Redis cache
// does, and counts calls.
type TrackingCache struct {
	mu       sync.Mutex
	getCalls int
	setCalls int
	data     map[string]CacheEntry
}

type CacheEntry struct {
	Value  []byte
	Expiry time.Time
}

func NewTrackingCache() *TrackingCache {
	return &TrackingCache{
		data: make(map[string]CacheEntry),
	}
}

func (c *TrackingCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.getCalls++
	entry, exists := c.data[key]
	if !exists || !time.Now().Before(entry.Expiry) {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(entry.Value, dest)
}

func (c *TrackingCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.setCalls++
	c.data[key] = CacheEntry{
		Value:  data,
		Expiry: time.Now().Add(exp),
	}
	return nil
}

func (c *TrackingCache) Close() error {
	return nil
}

func (c *TrackingCache) Calls() (gets, sets int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getCalls, c.setCalls
}

package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/sellerpulse/sellerpulse-backend/pkg/redis"
)

// AdvertiserCache stores resolved advertiser ids per seller. It replaces the
// module-level singleton the advertising lookups would otherwise grow; the
// cache object is passed in explicitly and entries expire after a TTL.
type AdvertiserCache interface {
	Get(ctx context.Context, sellerID string) (string, bool)
	Set(ctx context.Context, sellerID, advertiserID string)
}

type memoryEntry struct {
	advertiserID string
	expiresAt    time.Time
}

// MemoryAdvertiserCache is the in-process implementation used when Redis is
// not configured.
type MemoryAdvertiserCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryAdvertiserCache(ttl time.Duration) *MemoryAdvertiserCache {
	return &MemoryAdvertiserCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryAdvertiserCache) Get(_ context.Context, sellerID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[sellerID]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, sellerID)
		return "", false
	}
	return entry.advertiserID, true
}

func (c *MemoryAdvertiserCache) Set(_ context.Context, sellerID, advertiserID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sellerID] = memoryEntry{
		advertiserID: advertiserID,
		expiresAt:    c.now().Add(c.ttl),
	}
}

// RedisAdvertiserCache shares resolved advertiser ids across instances.
// Failures degrade to a cache miss; the next lookup re-runs discovery.
type RedisAdvertiserCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdvertiserCache(client *redis.Client, ttl time.Duration) *RedisAdvertiserCache {
	return &RedisAdvertiserCache{client: client, ttl: ttl}
}

func (c *RedisAdvertiserCache) Get(ctx context.Context, sellerID string) (string, bool) {
	value, ok, err := c.client.Get(ctx, c.client.Key("advertiser", sellerID))
	if err != nil || !ok {
		return "", false
	}
	return value, true
}

func (c *RedisAdvertiserCache) Set(ctx context.Context, sellerID, advertiserID string) {
	_ = c.client.Set(ctx, c.client.Key("advertiser", sellerID), advertiserID, c.ttl)
}

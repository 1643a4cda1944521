package repository

import (
	"context"
	"sync"
	"time"

	"lendshare/internal/models"
)

// SearchCache stores item search results under their normalized query.
// Implementations live here; services consume the failover wrapper via
// domain.ListingCache.
type SearchCache interface {
	Get(ctx context.Context, query string) ([]*models.Item, error)
	Set(ctx context.Context, query string, items []*models.Item) error
}

type memoryEntry struct {
	items     []*models.Item
	expiresAt time.Time
}

type MemorySearchCache struct {
	entries sync.Map
	ttl     time.Duration
}

func NewMemorySearchCache(ttl time.Duration) *MemorySearchCache {
	return &MemorySearchCache{ttl: ttl}
}

func (c *MemorySearchCache) Get(ctx context.Context, query string) ([]*models.Item, error) {
	val, ok := c.entries.Load(query)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(query)
		return nil, nil
	}
	return entry.items, nil
}

func (c *MemorySearchCache) Set(ctx context.Context, query string, items []*models.Item) error {
	c.entries.Store(query, &memoryEntry{
		items:     items,
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}

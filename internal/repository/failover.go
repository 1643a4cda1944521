package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"lendshare/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSearchCache fronts a primary cache (Redis) with an in-process
// fallback. After a primary failure it stops hitting the primary for a
// minute before probing again. It implements domain.ListingCache, so a
// total cache outage degrades to plain store reads, never to an error.
type FailoverSearchCache struct {
	primary  SearchCache
	fallback SearchCache
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverSearchCache(primary, fallback SearchCache, logger *zerolog.Logger) *FailoverSearchCache {
	return &FailoverSearchCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverSearchCache) GetSearch(ctx context.Context, query string) ([]*models.Item, bool) {
	if cache := c.active(); cache != nil {
		items, err := cache.Get(ctx, query)
		if err == nil {
			return items, items != nil
		}
		c.markDown(err)
	}

	if c.fallback == nil {
		return nil, false
	}
	items, err := c.fallback.Get(ctx, query)
	if err != nil || items == nil {
		return nil, false
	}
	return items, true
}

func (c *FailoverSearchCache) SetSearch(ctx context.Context, query string, items []*models.Item) {
	if cache := c.active(); cache != nil {
		if err := cache.Set(ctx, query, items); err == nil {
			return
		} else {
			c.markDown(err)
		}
	}

	if c.fallback != nil {
		_ = c.fallback.Set(ctx, query, items)
	}
}

// active returns the primary when it is usable, or nil to skip it.
func (c *FailoverSearchCache) active() SearchCache {
	if c.primary == nil {
		return nil
	}
	if !c.isDown.Load() {
		return c.primary
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastCheck) > time.Minute {
		c.lastCheck = time.Now()
		c.isDown.Store(false)
		return c.primary
	}
	return nil
}

func (c *FailoverSearchCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("primary search cache failed, falling back to memory")
	c.isDown.Store(true)
	c.mu.Lock()
	c.lastCheck = time.Now()
	c.mu.Unlock()
}

package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/staylink/concierge/internal/cache"
	"github.com/staylink/concierge/internal/models"
)

const fetchTimeout = 10 * time.Second

// Cached decorates an Inventory with a TTL cache keyed per tenant. Concurrent
// misses for one tenant share a single backend query.
type Cached struct {
	next   Inventory
	cache  cache.Cache
	ttl    time.Duration
	group  singleflight.Group
	logger zerolog.Logger
}

func NewCached(next Inventory, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *Cached {
	if c == nil {
		c = cache.Nop()
	}
	return &Cached{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger.With().Str("component", "inventory_cache").Logger(),
	}
}

func cacheKey(tenantID string) string {
	return "inventory:" + tenantID
}

func (c *Cached) ListProperties(ctx context.Context, tenantID string) ([]models.Property, error) {
	if c.ttl <= 0 {
		return c.next.ListProperties(ctx, tenantID)
	}

	key := cacheKey(tenantID)
	if b, ok := c.cache.Get(ctx, key); ok {
		var props []models.Property
		if err := json.Unmarshal(b, &props); err == nil {
			return props, nil
		}
		c.logger.Warn().Str("tenant", tenantID).Msg("dropping undecodable cache entry")
		c.cache.Delete(ctx, key)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		props, err := c.next.ListProperties(fetchCtx, tenantID)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(props); err == nil {
			c.cache.Set(fetchCtx, key, b, c.ttl)
		}
		return props, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared := res.Val.([]models.Property)
		out := make([]models.Property, len(shared))
		copy(out, shared)
		return out, nil
	}
}

func (c *Cached) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

// Invalidate drops the cached list for each tenant.
func (c *Cached) Invalidate(ctx context.Context, tenantIDs ...string) {
	for _, t := range tenantIDs {
		c.cache.Delete(ctx, cacheKey(t))
	}
}

// UpsertProperties writes through to the wrapped inventory when it is a Writer.
func (c *Cached) UpsertProperties(ctx context.Context, tenantID string, props []models.Property) error {
	w, ok := c.next.(Writer)
	if !ok {
		return errors.New("inventory is read-only")
	}
	if err := w.UpsertProperties(ctx, tenantID, props); err != nil {
		return err
	}
	c.Invalidate(ctx, tenantID)
	return nil
}

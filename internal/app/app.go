// Package app wires configuration into a ready concierge service. It is the
// composition root shared by the HTTP server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/staylink/concierge/internal/ai"
	"github.com/staylink/concierge/internal/availability"
	"github.com/staylink/concierge/internal/cache"
	"github.com/staylink/concierge/internal/concierge"
	"github.com/staylink/concierge/internal/config"
	"github.com/staylink/concierge/internal/inventory"
)

type closer interface {
	Close() error
}

// Container owns every long-lived dependency. Close releases them in reverse
// construction order.
type Container struct {
	Config    config.Config
	Store     inventory.Store
	Inventory *inventory.Cached
	Cache     cache.Cache
	Matcher   *availability.Matcher
	Generator ai.Generator
	Concierge *concierge.Service

	closers []closer
}

func Build(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Container, error) {
	c := &Container{Config: cfg}

	store, err := inventory.Open(ctx, cfg.Inventory, logger)
	if err != nil {
		return nil, err
	}
	c.Store = store
	c.closers = append(c.closers, store)

	c.Cache, err = c.buildCache(ctx, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Inventory = inventory.NewCached(store, c.Cache, cfg.InventoryCacheTTL, logger)
	c.Matcher = availability.NewMatcher(c.Inventory, cfg.BookingBaseURL)
	c.Generator = ai.New(cfg.OpenAI(), c.Cache, logger)
	c.Concierge = concierge.NewService(c.Matcher, c.Generator, logger, concierge.Options{
		GroundingTimeout:  cfg.GroundingTimeout,
		GenerationTimeout: cfg.GenerationTimeout,
	})

	logger.Info().
		Str("inventory_driver", cfg.Inventory.Driver).
		Dur("inventory_cache_ttl", cfg.InventoryCacheTTL).
		Bool("simulated", isSimulated(c.Generator)).
		Msg("concierge ready")
	return c, nil
}

func (c *Container) buildCache(ctx context.Context, logger zerolog.Logger) (cache.Cache, error) {
	if rc, ok := c.Config.Redis(); ok {
		r, err := cache.NewRedis(ctx, rc, logger)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		c.closers = append(c.closers, r)
		return r, nil
	}
	m := cache.NewMemory(time.Minute)
	c.closers = append(c.closers, m)
	return m, nil
}

// WatchInventory hot-reloads a file-backed inventory and drops cached entries
// for the tenants that changed. It is a no-op for SQL backends.
func (c *Container) WatchInventory(ctx context.Context) error {
	f, ok := c.Store.(*inventory.File)
	if !ok {
		return nil
	}
	return f.Watch(ctx, func(tenants []string) {
		c.Inventory.Invalidate(context.WithoutCancel(ctx), tenants...)
	})
}

func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func isSimulated(g ai.Generator) bool {
	_, ok := g.(ai.Simulated)
	return ok
}

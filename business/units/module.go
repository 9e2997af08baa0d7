// Package units implements the units bounded context: decimal-scale
// resolution and human/base-unit conversion.
package units

import (
	"context"
	"io"

	"github.com/fd1az/solquote/business/units/app"
	unitsDI "github.com/fd1az/solquote/business/units/di"
	"github.com/fd1az/solquote/business/units/infra/catalog"
	"github.com/fd1az/solquote/business/units/infra/memory"
	"github.com/fd1az/solquote/business/units/infra/redis"
	"github.com/fd1az/solquote/internal/asset"
	"github.com/fd1az/solquote/internal/config"
	"github.com/fd1az/solquote/internal/di"
	"github.com/fd1az/solquote/internal/logger"
	"github.com/fd1az/solquote/internal/monolith"
)

// Module implements the units bounded context.
type Module struct {
	cache app.ScaleCache
}

// RegisterServices registers all units services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register ScaleCache (private - memory or redis)
	di.RegisterToken(c, unitsDI.ScaleCache, func(sr di.ServiceRegistry) app.ScaleCache {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Cache.Backend == "redis" {
			return redis.NewScaleCache(redis.Config{
				Addr:     cfg.Cache.RedisAddr,
				Password: cfg.Cache.RedisPassword,
				DB:       cfg.Cache.RedisDB,
				Key:      cfg.Cache.RedisKey,
			}, log)
		}
		return memory.NewScaleCache()
	})

	// Register Catalog (private - nil when disabled)
	di.RegisterToken(c, unitsDI.Catalog, func(sr di.ServiceRegistry) app.Catalog {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if !cfg.Catalog.Enabled {
			return nil
		}
		cat, err := catalog.NewHTTPCatalog(catalog.Config{
			URL:     cfg.Catalog.URL,
			Timeout: cfg.Catalog.Timeout,
		}, log)
		if err != nil {
			panic("failed to create asset catalog: " + err.Error())
		}
		return cat
	})

	// Register Normalizer (public - exposed to other modules)
	di.RegisterToken(c, unitsDI.Normalizer, func(sr di.ServiceRegistry) *app.Normalizer {
		log := sr.Get("logger").(logger.LoggerInterface)
		static := sr.Get("assetRegistry").(*asset.Registry)
		return app.NewNormalizer(static, unitsDI.GetScaleCache(sr), unitsDI.GetCatalog(sr), log)
	})

	return nil
}

// Startup checks the shared cache is reachable when one is configured.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	m.cache = unitsDI.GetScaleCache(mono.Services())

	if p, ok := m.cache.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			// Lookups fall through to the catalog and default scale.
			log.Warn(ctx, "scale cache unreachable", "error", err)
		}
	}

	log.Info(ctx, "units module started", "cache", mono.Config().Cache.Backend)
	return nil
}

// Close releases the scale cache connection, if any.
func (m *Module) Close() error {
	if c, ok := m.cache.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

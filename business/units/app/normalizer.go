package app

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/internal/logger"
)

const tracerName = "github.com/fd1az/solquote/business/units/app"

// catalogLoadTimeout bounds the one-time catalog load.
const catalogLoadTimeout = 15 * time.Second

// Normalizer resolves decimal scales and converts between human and base
// units.
type Normalizer struct {
	static  StaticTable
	cache   ScaleCache
	catalog Catalog
	logger  logger.LoggerInterface
	tracer  trace.Tracer

	loadOnce sync.Once
}

// NewNormalizer creates a Normalizer. catalog may be nil, in which case
// unknown mints resolve to domain.DefaultScale.
func NewNormalizer(static StaticTable, cache ScaleCache, catalog Catalog, log logger.LoggerInterface) *Normalizer {
	return &Normalizer{
		static:  static,
		cache:   cache,
		catalog: catalog,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}
}

// ResolveScale returns the scale for mint. Lookup order is the static table,
// the cache, a one-time catalog load, then domain.DefaultScale. It never
// fails.
func (n *Normalizer) ResolveScale(ctx context.Context, mint string) domain.Scale {
	if d, ok := n.static.Decimals(mint); ok {
		return domain.Scale(d)
	}

	if s, ok := n.cached(ctx, mint); ok {
		return s
	}

	n.loadOnce.Do(func() { n.loadCatalog(ctx) })

	if s, ok := n.cached(ctx, mint); ok {
		return s
	}

	n.logger.Debug(ctx, "unknown mint, using default scale",
		"mint", mint, "scale", int(domain.DefaultScale))
	return domain.DefaultScale
}

// Remember records a scale learned elsewhere, e.g. from a mint account.
func (n *Normalizer) Remember(ctx context.Context, mint string, scale domain.Scale) {
	if err := n.cache.Put(ctx, mint, scale); err != nil {
		n.logger.Warn(ctx, "failed to cache scale", "mint", mint, "error", err)
	}
}

// ToBaseUnits converts a human amount of mint to base units.
func (n *Normalizer) ToBaseUnits(ctx context.Context, mint string, human decimal.Decimal) string {
	return domain.ToBaseUnits(human, n.ResolveScale(ctx, mint))
}

// FromBaseUnits converts a base-unit amount of mint to human units.
func (n *Normalizer) FromBaseUnits(ctx context.Context, mint, base string) decimal.Decimal {
	return domain.FromBaseUnits(base, n.ResolveScale(ctx, mint))
}

func (n *Normalizer) cached(ctx context.Context, mint string) (domain.Scale, bool) {
	s, ok, err := n.cache.Get(ctx, mint)
	if err != nil {
		n.logger.Warn(ctx, "scale cache read failed", "mint", mint, "error", err)
		return 0, false
	}
	return s, ok
}

// loadCatalog runs at most once per Normalizer, successful or not. Later
// callers share its result, so it ignores the first caller's cancellation.
func (n *Normalizer) loadCatalog(ctx context.Context) {
	if n.catalog == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogLoadTimeout)
	defer cancel()

	ctx, span := n.tracer.Start(ctx, "units.load_catalog")
	defer span.End()

	scales, err := n.catalog.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		n.logger.Warn(ctx, "asset catalog unavailable, unknown mints use default scale", "error", err)
		return
	}

	if err := n.cache.PutMany(ctx, scales); err != nil {
		span.RecordError(err)
		n.logger.Warn(ctx, "failed to cache catalog scales", "error", err)
	}

	span.SetAttributes(attribute.Int("entries", len(scales)))
	span.SetStatus(codes.Ok, "loaded")
	n.logger.Info(ctx, "asset catalog loaded", "entries", len(scales))
}

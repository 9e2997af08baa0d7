package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	unitsdomain "github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/business/venues/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/logger"
)

const (
	tracerName = "github.com/fd1az/solquote/business/venues/app"
	meterName  = "github.com/fd1az/solquote/business/venues/app"
)

type aggregatorMetrics struct {
	quotes        metric.Int64Counter
	quoteDuration metric.Float64Histogram
	opportunities metric.Int64Counter
}

// Aggregator fans a quote request out to every configured venue and ranks
// the answers.
type Aggregator struct {
	adapters []VenueAdapter
	scales   ScaleResolver
	logger   logger.LoggerInterface
	now      func() time.Time

	tracer  trace.Tracer
	metrics *aggregatorMetrics
}

// NewAggregator creates an Aggregator. Quotes keep the order of adapters.
func NewAggregator(adapters []VenueAdapter, scales ScaleResolver, log logger.LoggerInterface) (*Aggregator, error) {
	a := &Aggregator{
		adapters: adapters,
		scales:   scales,
		logger:   log,
		now:      time.Now,
		tracer:   otel.Tracer(tracerName),
	}

	if err := a.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return a, nil
}

func (a *Aggregator) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	a.metrics = &aggregatorMetrics{}

	a.metrics.quotes, err = meter.Int64Counter(
		"venue_quotes_total",
		metric.WithDescription("Venue quotes by venue and result"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		return err
	}

	a.metrics.quoteDuration, err = meter.Float64Histogram(
		"venue_quote_duration_seconds",
		metric.WithDescription("Venue quote latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return err
	}

	a.metrics.opportunities, err = meter.Int64Counter(
		"venue_arbitrage_opportunities_total",
		metric.WithDescription("Cross-venue spreads above the reporting threshold"),
		metric.WithUnit("{opportunity}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Venues returns the configured venue ids in quote order.
func (a *Aggregator) Venues() []string {
	ids := make([]string, len(a.adapters))
	for i, ad := range a.adapters {
		ids[i] = ad.ID()
	}
	return ids
}

// CompareVenues quotes every venue concurrently and never fails: a venue
// that errors, times out or returns no output becomes a tombstone.
func (a *Aggregator) CompareVenues(ctx context.Context, inputMint, outputMint string, amount decimal.Decimal) *domain.VenueComparison {
	ctx, span := a.tracer.Start(ctx, "venues.compare",
		trace.WithAttributes(
			attribute.String("input_mint", inputMint),
			attribute.String("output_mint", outputMint),
			attribute.String("amount", amount.String()),
			attribute.Int("venues", len(a.adapters)),
		),
	)
	defer span.End()

	inScale := a.scales.ResolveScale(ctx, inputMint)
	outScale := a.scales.ResolveScale(ctx, outputMint)
	req := QuoteRequest{
		InputMint:  inputMint,
		OutputMint: outputMint,
		Amount:     amount,
		AmountBase: unitsdomain.ToBaseUnits(amount, inScale),
		InScale:    inScale,
		OutScale:   outScale,
	}

	quotes := make([]domain.VenueQuote, len(a.adapters))
	var wg sync.WaitGroup
	for i, adapter := range a.adapters {
		wg.Add(1)
		go func(i int, adapter VenueAdapter) {
			defer wg.Done()
			quotes[i] = a.quoteOne(ctx, adapter, req)
		}(i, adapter)
	}
	wg.Wait()

	c := domain.NewVenueComparison(inputMint, outputMint, amount, quotes, a.now())

	healthy := len(c.Healthy())
	span.SetAttributes(
		attribute.Int("healthy", healthy),
		attribute.Int("opportunities", len(c.Opportunities)),
	)
	if c.Best != nil && !c.Best.IsTombstone() {
		span.SetAttributes(attribute.String("best_venue", c.Best.VenueID))
	}
	if healthy == 0 && len(quotes) > 0 {
		span.SetStatus(codes.Error, string(apperror.CodeNoVenueQuotes))
		a.logger.Warn(ctx, "no venue returned a quote",
			"input_mint", inputMint, "output_mint", outputMint, "venues", len(quotes))
	} else {
		span.SetStatus(codes.Ok, "compared")
	}
	if n := len(c.Opportunities); n > 0 {
		a.metrics.opportunities.Add(ctx, int64(n))
	}

	return c
}

func (a *Aggregator) quoteOne(ctx context.Context, adapter VenueAdapter, req QuoteRequest) (q domain.VenueQuote) {
	venue := adapter.ID()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			q = a.tombstone(ctx, venue, fmt.Errorf("adapter panic: %v", r))
		}
		elapsed := time.Since(start)

		result := "ok"
		if q.IsTombstone() {
			result = "tombstone"
		}
		attrs := metric.WithAttributes(attribute.String("venue", venue), attribute.String("result", result))
		a.metrics.quotes.Add(ctx, 1, attrs)
		a.metrics.quoteDuration.Record(ctx, elapsed.Seconds(), attrs)
	}()

	res, err := adapter.Quote(ctx, req)
	if err != nil {
		return a.tombstone(ctx, venue, err)
	}
	if res == nil || !res.OutAmount.IsPositive() {
		return a.tombstone(ctx, venue, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithContext("missing or zero output")))
	}

	out := *res
	out.VenueID = venue
	out.ErrorReason = ""
	if out.InAmount.IsZero() {
		out.InAmount = req.Amount
	}
	return out
}

func (a *Aggregator) tombstone(ctx context.Context, venue string, cause error) domain.VenueQuote {
	err := apperror.New(apperror.CodeVenueQuoteFailed,
		apperror.WithContext(venue),
		apperror.WithCause(cause))
	a.logger.Warn(ctx, "venue quote failed", "venue", venue, "error", cause)
	return domain.Tombstone(venue, err.Error())
}

// Package raydium quotes the Raydium trade API.
package raydium

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solquote/business/venues/app"
	"github.com/fd1az/solquote/business/venues/domain"
	"github.com/fd1az/solquote/business/venues/infra/venuehttp"
	"github.com/fd1az/solquote/internal/httpclient"
	"github.com/fd1az/solquote/internal/logger"
)

const (
	tracerName = "github.com/fd1az/solquote/business/venues/infra/raydium"

	// VenueID identifies Raydium quotes.
	VenueID = "raydium"

	// DefaultBaseURL is the Raydium trade API.
	DefaultBaseURL = "https://transaction-v1.raydium.io"

	swapBaseInEndpoint = "/compute/swap-base-in"
)

type routeStep struct {
	PoolID    string `json:"poolId"`
	FeeMint   string `json:"feeMint"`
	FeeAmount string `json:"feeAmount"`
}

type swapResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Data    *struct {
		InputMint      string          `json:"inputMint"`
		InputAmount    string          `json:"inputAmount"`
		OutputMint     string          `json:"outputMint"`
		OutputAmount   string          `json:"outputAmount"`
		PriceImpactPct decimal.Decimal `json:"priceImpactPct"` // percent
		RoutePlan      []routeStep     `json:"routePlan"`
	} `json:"data"`
}

// Adapter quotes Raydium.
type Adapter struct {
	venue  *venuehttp.Venue
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewAdapter creates a Raydium adapter.
func NewAdapter(cfg venuehttp.Config, log logger.LoggerInterface, opts ...httpclient.ClientOption) (*Adapter, error) {
	tracer := otel.Tracer(tracerName)
	venue, err := venuehttp.New(VenueID, DefaultBaseURL, cfg, tracer, opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{venue: venue, logger: log, tracer: tracer}, nil
}

func (a *Adapter) ID() string {
	return VenueID
}

// Quote asks for a swap-base-in quote with the amount in base units.
func (a *Adapter) Quote(ctx context.Context, req app.QuoteRequest) (*domain.VenueQuote, error) {
	ctx, span := a.tracer.Start(ctx, "venues.raydium.quote",
		trace.WithAttributes(attribute.String("amount_base", req.AmountBase)),
	)
	defer span.End()

	var resp swapResponse
	err := a.venue.Do(ctx, func(ctx context.Context) error {
		_, err := a.venue.Client.NewRequestWithOptions(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "swap-base-in")),
			httpclient.WithResponseErrorHandler(venuehttp.ErrorHandler),
		).
			SetQueryParams(map[string]string{
				"inputMint":   req.InputMint,
				"outputMint":  req.OutputMint,
				"amount":      req.AmountBase,
				"slippageBps": strconv.Itoa(a.venue.Config.SlippageBps),
				"txVersion":   "V0",
			}).
			SetResult(&resp).
			Get(ctx, swapBaseInEndpoint)
		if err != nil {
			return err
		}
		if !resp.Success {
			return fmt.Errorf("raydium: %s", resp.Msg)
		}
		if resp.Data == nil {
			return fmt.Errorf("raydium: empty data")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote failed")
		return nil, err
	}

	out, err := venuehttp.BaseToHuman(resp.Data.OutputAmount, req.OutScale)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad quote")
		return nil, fmt.Errorf("outputAmount: %w", err)
	}
	in := req.Amount
	if v, err := venuehttp.BaseToHuman(resp.Data.InputAmount, req.InScale); err == nil {
		in = v
	}

	q := &domain.VenueQuote{
		VenueID:     VenueID,
		InAmount:    in,
		OutAmount:   out,
		PriceImpact: resp.Data.PriceImpactPct.Abs(),
	}

	fee := decimal.Zero
	hasFee := false
	for _, step := range resp.Data.RoutePlan {
		q.Route = append(q.Route, step.PoolID)
		if q.PoolID == "" {
			q.PoolID = step.PoolID
		}
		scale := req.InScale
		switch step.FeeMint {
		case req.InputMint, "":
		case req.OutputMint:
			scale = req.OutScale
		default:
			continue
		}
		if v, err := venuehttp.BaseToHuman(step.FeeAmount, scale); err == nil {
			fee = fee.Add(v)
			hasFee = true
		}
	}
	if hasFee {
		q.Fee = &fee
	}

	span.SetStatus(codes.Ok, "quoted")
	return q, nil
}

var _ app.VenueAdapter = (*Adapter)(nil)

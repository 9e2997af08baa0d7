// Package jupiter quotes the Jupiter swap aggregator.
package jupiter

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
	tracerName = "github.com/fd1az/solquote/business/venues/infra/jupiter"

	// VenueID identifies Jupiter quotes.
	VenueID = "jupiter"

	// DefaultBaseURL is the public Jupiter swap API.
	DefaultBaseURL = "https://lite-api.jup.ag/swap/v1"

	quoteEndpoint = "/quote"
)

type swapInfo struct {
	AmmKey    string `json:"ammKey"`
	Label     string `json:"label"`
	InputMint string `json:"inputMint"`
	FeeAmount string `json:"feeAmount"`
	FeeMint   string `json:"feeMint"`
}

type quoteResponse struct {
	InputMint      string `json:"inputMint"`
	InAmount       string `json:"inAmount"`
	OutputMint     string `json:"outputMint"`
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"` // fraction, 0.01 = 1%
	RoutePlan      []struct {
		SwapInfo swapInfo `json:"swapInfo"`
		Percent  int      `json:"percent"`
	} `json:"routePlan"`
	Error string `json:"error"`
}

// Adapter quotes Jupiter.
type Adapter struct {
	venue  *venuehttp.Venue
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewAdapter creates a Jupiter adapter.
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

// Quote asks for an exact-in quote with the amount in base units.
func (a *Adapter) Quote(ctx context.Context, req app.QuoteRequest) (*domain.VenueQuote, error) {
	ctx, span := a.tracer.Start(ctx, "venues.jupiter.quote",
		trace.WithAttributes(attribute.String("amount_base", req.AmountBase)),
	)
	defer span.End()

	var resp quoteResponse
	err := a.venue.Do(ctx, func(ctx context.Context) error {
		_, err := a.venue.Client.NewRequestWithOptions(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "quote")),
			httpclient.WithResponseErrorHandler(venuehttp.ErrorHandler),
		).
			SetQueryParams(map[string]string{
				"inputMint":   req.InputMint,
				"outputMint":  req.OutputMint,
				"amount":      req.AmountBase,
				"slippageBps": strconv.Itoa(a.venue.Config.SlippageBps),
			}).
			SetResult(&resp).
			Get(ctx, quoteEndpoint)
		if err != nil {
			return err
		}
		if resp.Error != "" {
			return fmt.Errorf("jupiter: %s", resp.Error)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote failed")
		return nil, err
	}

	q, err := a.normalize(req, &resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad quote")
		return nil, err
	}
	span.SetStatus(codes.Ok, "quoted")
	return q, nil
}

func (a *Adapter) normalize(req app.QuoteRequest, resp *quoteResponse) (*domain.VenueQuote, error) {
	out, err := venuehttp.BaseToHuman(resp.OutAmount, req.OutScale)
	if err != nil {
		return nil, fmt.Errorf("outAmount: %w", err)
	}
	in := req.Amount
	if resp.InAmount != "" {
		if v, err := venuehttp.BaseToHuman(resp.InAmount, req.InScale); err == nil {
			in = v
		}
	}

	q := &domain.VenueQuote{
		VenueID:     VenueID,
		InAmount:    in,
		OutAmount:   out,
		PriceImpact: venuehttp.ParsePercent(resp.PriceImpactPct).Mul(decimal.NewFromInt(100)),
	}

	fee := decimal.Zero
	hasFee := false
	for _, step := range resp.RoutePlan {
		info := step.SwapInfo
		q.Route = append(q.Route, info.Label)
		if q.PoolID == "" {
			q.PoolID = info.AmmKey
		}
		scale := req.InScale
		switch info.FeeMint {
		case req.InputMint:
		case req.OutputMint:
			scale = req.OutScale
		default:
			continue
		}
		if v, err := venuehttp.BaseToHuman(info.FeeAmount, scale); err == nil {
			fee = fee.Add(v)
			hasFee = true
		}
	}
	if hasFee {
		q.Fee = &fee
	}
	return q, nil
}

var _ app.VenueAdapter = (*Adapter)(nil)

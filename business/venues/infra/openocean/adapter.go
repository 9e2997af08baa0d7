// Package openocean quotes the OpenOcean aggregator.
package openocean

import (
	"context"
	"fmt"

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
	tracerName = "github.com/fd1az/solquote/business/venues/infra/openocean"

	// VenueID identifies OpenOcean quotes.
	VenueID = "openocean"

	// DefaultBaseURL is the OpenOcean open API.
	DefaultBaseURL = "https://open-api.openocean.finance"

	quoteEndpoint = "/v4/solana/quote"
)

type quoteResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"error"`
	Data *struct {
		InAmount    string `json:"inAmount"`  // base units
		OutAmount   string `json:"outAmount"` // base units
		PriceImpact string `json:"price_impact"`
		Dexes       []struct {
			DexCode    string `json:"dexCode"`
			SwapAmount string `json:"swapAmount"`
		} `json:"dexes"`
	} `json:"data"`
}

// Adapter quotes OpenOcean. Unlike the others it takes the amount in human
// units.
type Adapter struct {
	venue  *venuehttp.Venue
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewAdapter creates an OpenOcean adapter.
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

// Quote asks for a quote with the amount in human units.
func (a *Adapter) Quote(ctx context.Context, req app.QuoteRequest) (*domain.VenueQuote, error) {
	ctx, span := a.tracer.Start(ctx, "venues.openocean.quote",
		trace.WithAttributes(attribute.String("amount", req.Amount.String())),
	)
	defer span.End()

	slippagePct := decimal.NewFromInt(int64(a.venue.Config.SlippageBps)).Div(decimal.NewFromInt(100))

	var resp quoteResponse
	err := a.venue.Do(ctx, func(ctx context.Context) error {
		_, err := a.venue.Client.NewRequestWithOptions(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "quote")),
			httpclient.WithResponseErrorHandler(venuehttp.ErrorHandler),
		).
			SetQueryParams(map[string]string{
				"inTokenAddress":  req.InputMint,
				"outTokenAddress": req.OutputMint,
				"amount":          req.Amount.String(),
				"gasPrice":        "1",
				"slippage":        slippagePct.String(),
			}).
			SetResult(&resp).
			Get(ctx, quoteEndpoint)
		if err != nil {
			return err
		}
		if resp.Code != 200 {
			return fmt.Errorf("openocean: code %d: %s", resp.Code, resp.Msg)
		}
		if resp.Data == nil {
			return fmt.Errorf("openocean: empty data")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote failed")
		return nil, err
	}

	out, err := venuehttp.BaseToHuman(resp.Data.OutAmount, req.OutScale)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad quote")
		return nil, fmt.Errorf("outAmount: %w", err)
	}
	in := req.Amount
	if v, err := venuehttp.BaseToHuman(resp.Data.InAmount, req.InScale); err == nil {
		in = v
	}

	q := &domain.VenueQuote{
		VenueID:     VenueID,
		InAmount:    in,
		OutAmount:   out,
		PriceImpact: venuehttp.ParsePercent(resp.Data.PriceImpact),
	}
	for _, d := range resp.Data.Dexes {
		if d.DexCode != "" {
			q.Route = append(q.Route, d.DexCode)
		}
	}

	span.SetStatus(codes.Ok, "quoted")
	return q, nil
}

var _ app.VenueAdapter = (*Adapter)(nil)

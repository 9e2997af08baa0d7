// Package okx quotes the OKX DEX aggregator.
package okx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

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
	tracerName = "github.com/fd1az/solquote/business/venues/infra/okx"

	// VenueID identifies OKX quotes.
	VenueID = "okx"

	// DefaultBaseURL is the OKX web3 API host.
	DefaultBaseURL = "https://www.okx.com"

	quoteEndpoint = "/api/v5/dex/aggregator/quote"

	// solanaChainID is OKX's chain index for Solana.
	solanaChainID = "501"
)

// Credentials enable signed requests. All of APIKey, SecretKey and
// Passphrase must be set for signing.
type Credentials struct {
	APIKey     string
	SecretKey  string
	Passphrase string
	ProjectID  string
}

func (c Credentials) complete() bool {
	return c.APIKey != "" && c.SecretKey != "" && c.Passphrase != ""
}

type dexProtocol struct {
	DexName string `json:"dexName"`
	Percent string `json:"percent"`
}

type quoteData struct {
	FromTokenAmount       string `json:"fromTokenAmount"`
	ToTokenAmount         string `json:"toTokenAmount"`
	PriceImpactPercentage string `json:"priceImpactPercentage"`
	TradeFee              string `json:"tradeFee"`
	DexRouterList         []struct {
		SubRouterList []struct {
			DexProtocol []dexProtocol `json:"dexProtocol"`
		} `json:"subRouterList"`
	} `json:"dexRouterList"`
}

type quoteResponse struct {
	Code string      `json:"code"`
	Msg  string      `json:"msg"`
	Data []quoteData `json:"data"`
}

// Adapter quotes OKX.
type Adapter struct {
	venue  *venuehttp.Venue
	creds  Credentials
	logger logger.LoggerInterface
	tracer trace.Tracer
	now    func() time.Time
}

// NewAdapter creates an OKX adapter. Requests are signed when creds are
// complete.
func NewAdapter(cfg venuehttp.Config, creds Credentials, log logger.LoggerInterface, opts ...httpclient.ClientOption) (*Adapter, error) {
	tracer := otel.Tracer(tracerName)
	venue, err := venuehttp.New(VenueID, DefaultBaseURL, cfg, tracer, opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		venue:  venue,
		creds:  creds,
		logger: log,
		tracer: tracer,
		now:    time.Now,
	}, nil
}

func (a *Adapter) ID() string {
	return VenueID
}

// Quote asks for a quote with the amount in base units.
func (a *Adapter) Quote(ctx context.Context, req app.QuoteRequest) (*domain.VenueQuote, error) {
	ctx, span := a.tracer.Start(ctx, "venues.okx.quote",
		trace.WithAttributes(
			attribute.String("amount_base", req.AmountBase),
			attribute.Bool("signed", a.creds.complete()),
		),
	)
	defer span.End()

	slippage := decimal.NewFromInt(int64(a.venue.Config.SlippageBps)).Div(decimal.NewFromInt(10000))
	params := map[string]string{
		"chainId":          solanaChainID,
		"fromTokenAddress": req.InputMint,
		"toTokenAddress":   req.OutputMint,
		"amount":           req.AmountBase,
		"slippage":         slippage.String(),
	}

	var resp quoteResponse
	err := a.venue.Do(ctx, func(ctx context.Context) error {
		r := a.venue.Client.NewRequestWithOptions(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "quote")),
			httpclient.WithResponseErrorHandler(venuehttp.ErrorHandler),
		).
			SetQueryParams(params).
			SetResult(&resp)
		for k, v := range a.authHeaders(params) {
			r.SetHeader(k, v)
		}

		if _, err := r.Get(ctx, quoteEndpoint); err != nil {
			return err
		}
		if resp.Code != "0" {
			return fmt.Errorf("okx: code %s: %s", resp.Code, resp.Msg)
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("okx: empty data")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote failed")
		return nil, err
	}

	d := resp.Data[0]
	out, err := venuehttp.BaseToHuman(d.ToTokenAmount, req.OutScale)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad quote")
		return nil, fmt.Errorf("toTokenAmount: %w", err)
	}
	in := req.Amount
	if v, err := venuehttp.BaseToHuman(d.FromTokenAmount, req.InScale); err == nil {
		in = v
	}

	q := &domain.VenueQuote{
		VenueID:     VenueID,
		InAmount:    in,
		OutAmount:   out,
		PriceImpact: venuehttp.ParsePercent(d.PriceImpactPercentage),
	}
	for _, route := range d.DexRouterList {
		for _, sub := range route.SubRouterList {
			for _, p := range sub.DexProtocol {
				q.Route = append(q.Route, p.DexName)
			}
		}
	}

	span.SetStatus(codes.Ok, "quoted")
	return q, nil
}

// authHeaders signs timestamp + method + path?query with HMAC-SHA256.
func (a *Adapter) authHeaders(params map[string]string) map[string]string {
	if !a.creds.complete() {
		return nil
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	ts := a.now().UTC().Format("2006-01-02T15:04:05.000Z")

	headers := map[string]string{
		"OK-ACCESS-KEY":        a.creds.APIKey,
		"OK-ACCESS-SIGN":       sign(a.creds.SecretKey, ts+"GET"+quoteEndpoint+"?"+q.Encode()),
		"OK-ACCESS-TIMESTAMP":  ts,
		"OK-ACCESS-PASSPHRASE": a.creds.Passphrase,
	}
	if a.creds.ProjectID != "" {
		headers["OK-ACCESS-PROJECT"] = a.creds.ProjectID
	}
	return headers
}

func sign(secret, prehash string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(prehash))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

var _ app.VenueAdapter = (*Adapter)(nil)

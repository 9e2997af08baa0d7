// Package venuehttp holds what the venue adapters share: client setup, the
// per-venue breaker and amount parsing.
package venuehttp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	unitsdomain "github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/circuitbreaker"
	"github.com/fd1az/solquote/internal/httpclient"
	"github.com/fd1az/solquote/internal/ratelimit"
)

// DefaultTimeout bounds every quote request.
const DefaultTimeout = 10 * time.Second

// Config is shared by every venue adapter.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	SlippageBps       int
	Headers           map[string]string
}

// Venue bundles an instrumented client with its breaker.
type Venue struct {
	ID     string
	Client httpclient.Client
	Config Config

	cb *circuitbreaker.CircuitBreaker[struct{}]
}

// New builds the client for venue id. defaultURL is used when cfg has none.
func New(id, defaultURL string, cfg Config, tracer trace.Tracer, opts ...httpclient.ClientOption) (*Venue, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SlippageBps <= 0 {
		cfg.SlippageBps = 50
	}

	headers := map[string]string{"Accept": "application/json"}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	options := append([]httpclient.ClientOption{
		httpclient.WithProviderName(id),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithRateLimiter(ratelimit.New(cfg.RequestsPerMinute)),
		httpclient.WithTraceOptions(tracer),
		httpclient.WithHeaders(headers),
	}, opts...)

	client, err := httpclient.NewInstrumentedClient(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Venue{
		ID:     id,
		Client: client,
		Config: cfg,
		cb:     circuitbreaker.New[struct{}](circuitbreaker.DefaultConfig(id)),
	}, nil
}

// Do runs fn through the venue's breaker with the request timeout applied,
// wrapping any failure as VENUE_QUOTE_FAILED.
func (v *Venue) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, v.Config.Timeout)
	defer cancel()

	_, err := v.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	if err == nil {
		return nil
	}
	if circuitbreaker.IsOpen(err) {
		return apperror.New(apperror.CodeCircuitOpen, apperror.WithContext(v.ID), apperror.WithCause(err))
	}
	return apperror.External(apperror.CodeVenueQuoteFailed, v.ID, err)
}

// ErrorHandler turns HTTP error statuses into errors carrying the body.
func ErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		return fmt.Errorf("HTTP %d: %s", statusCode, Truncate(string(body), 200))
	}
	return nil
}

// BaseToHuman parses a base-unit integer string at scale.
func BaseToHuman(base string, scale unitsdomain.Scale) (decimal.Decimal, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return decimal.Zero, fmt.Errorf("missing amount")
	}
	if _, err := decimal.NewFromString(base); err != nil {
		return decimal.Zero, fmt.Errorf("amount %q: %w", base, err)
	}
	return unitsdomain.FromBaseUnits(base, scale), nil
}

// ParsePercent parses "0.12", "0.12%" or "-0.12%" as an absolute percent.
func ParsePercent(s string) decimal.Decimal {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}

func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

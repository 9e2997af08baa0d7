// Package catalog fetches the bulk token list used to learn decimals for
// mints outside the static table.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solquote/business/units/app"
	"github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/circuitbreaker"
	"github.com/fd1az/solquote/internal/httpclient"
	"github.com/fd1az/solquote/internal/logger"
)

const (
	tracerName = "github.com/fd1az/solquote/business/units/infra/catalog"

	DefaultURL  = "https://token.jup.ag/strict"
	httpTimeout = 15 * time.Second
)

// Config holds configuration for the catalog client.
type Config struct {
	URL     string
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{URL: DefaultURL, Timeout: httpTimeout}
}

// entry is one token of the list. Only address and decimals matter.
type entry struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals *int   `json:"decimals"`
}

// HTTPCatalog reads a JSON array of tokens from a single URL.
type HTTPCatalog struct {
	client httpclient.Client
	config Config
	logger logger.LoggerInterface
	tracer trace.Tracer
	cb     *circuitbreaker.CircuitBreaker[map[string]domain.Scale]
}

// NewHTTPCatalog creates a catalog client.
func NewHTTPCatalog(cfg Config, log logger.LoggerInterface) (*HTTPCatalog, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("asset-catalog"),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &HTTPCatalog{
		client: client,
		config: cfg,
		logger: log,
		tracer: tracer,
		cb:     circuitbreaker.New[map[string]domain.Scale](circuitbreaker.DefaultConfig("asset-catalog")),
	}, nil
}

// Fetch downloads the list and returns mint -> scale. Entries without an
// address or with decimals outside 0..255 are skipped.
func (c *HTTPCatalog) Fetch(ctx context.Context) (map[string]domain.Scale, error) {
	ctx, span := c.tracer.Start(ctx, "catalog.fetch",
		trace.WithAttributes(attribute.String("url", c.config.URL)),
	)
	defer span.End()

	scales, err := c.cb.Execute(func() (map[string]domain.Scale, error) {
		var tokens []entry
		_, err := c.client.NewRequestWithOptions(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "catalog")),
			httpclient.WithResponseErrorHandler(catalogErrorHandler),
		).
			SetResult(&tokens).
			Get(ctx, c.config.URL)
		if err != nil {
			return nil, err
		}

		out := make(map[string]domain.Scale, len(tokens))
		for _, t := range tokens {
			if t.Address == "" || t.Decimals == nil || *t.Decimals < 0 || *t.Decimals > 255 {
				continue
			}
			out[t.Address] = domain.Scale(*t.Decimals)
		}
		return out, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, apperror.External(apperror.CodeCatalogFetchFailed, c.config.URL, err)
	}

	span.SetAttributes(attribute.Int("entries", len(scales)))
	c.logger.Debug(ctx, "fetched asset catalog", "entries", len(scales))
	return scales, nil
}

func catalogErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var msg struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &msg); err == nil && msg.Error != "" {
			return fmt.Errorf("HTTP %d: %s", statusCode, msg.Error)
		}
		return fmt.Errorf("HTTP %d", statusCode)
	}
	return nil
}

var _ app.Catalog = (*HTTPCatalog)(nil)
